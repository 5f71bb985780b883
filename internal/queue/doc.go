// Package queue persists transcription jobs in SQLite and exposes the
// lifecycle operations the workflow manager and CLI rely on. Jobs move
// through pending, extracting, transcribing, delivering, and terminal
// statuses; heartbeats mark in-flight work so stale jobs can be reclaimed.
package queue
