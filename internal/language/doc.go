// Package language resolves user-supplied language codes and names to ISO
// 639-1 codes and English display names.
package language
