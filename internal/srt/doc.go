// Package srt converts timed transcript segments into SRT subtitle documents
// and provides the parsing and validation helpers the delivery stage uses
// before sending a document to a chat.
//
// The formatter is a pure transformation over an in-memory segment sequence:
// it performs no I/O and is safe for concurrent callers with disjoint inputs.
package srt
