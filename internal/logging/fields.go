// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Configuration fields.
	FieldFlavor     = "flavor"
	FieldRenderer   = "renderer"
	FieldHighlight  = "highlight"
	FieldFlushEvery = "flush_every"
	FieldJobs       = "jobs"

	// Math span fields.
	FieldStyle   = "style"
	FieldBody    = "body"
	FieldDisplay = "display"
	FieldSpans   = "spans"
	FieldFailed  = "failed"

	// Stream fields.
	FieldSession  = "session"
	FieldSeq      = "seq"
	FieldReason   = "reason"
	FieldPosition = "position"
	FieldElapsed  = "elapsed"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesRendered   = "files_rendered"
	FieldFilesUnchanged  = "files_unchanged"
	FieldBytesWritten    = "bytes_written"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"

	// Macro fields.
	FieldName  = "name"
	FieldCount = "count"
)
