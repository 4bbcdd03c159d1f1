package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldVersion is the standardized structured logging key for dataset versions.
	FieldVersion = "dataset_version"
	// FieldRunID is the standardized structured logging key for build run identifiers.
	FieldRunID = "run_id"
	// FieldPhase is the standardized structured logging key for pipeline phase names.
	FieldPhase = "phase"
)
