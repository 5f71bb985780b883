// Package services provides the shared error taxonomy and context annotation
// helpers used by workflow stages and their collaborators.
package services
