// Package transfer moves decisions in and out of the store as files.
//
// Imports are YAML documents with a top-level "decisions" list. Each entry
// is decoded strictly (unknown keys are rejected), normalised the same way
// the add command normalises flags, and then checked against the embedded
// CUE schema in decision.cue before anything is written. Exports write the
// full records, id and timestamp included, as YAML or JSON.
//
// An exported YAML file can be imported again: id and timestamp are
// accepted and ignored, since the store assigns both.
package transfer
