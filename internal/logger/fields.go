package logger

// Standard field names for consistent structured logging across veneer.
// Use these constants instead of raw strings.
const (
	// Identity
	FieldRunID   = "run_id"
	FieldPackage = "package"

	// Pipeline
	FieldType      = "type"
	FieldMember    = "member"
	FieldMarker    = "marker"
	FieldComponent = "component"

	// Timing
	FieldDurationMS = "duration_ms"

	// Files
	FieldFile = "file"

	// Counts
	FieldCount = "count"
)
