package pipeline

import "fmt"

// ConfigurationError is run-fatal: the pipeline refuses to start with a bad
// config. Param names the offending option.
type ConfigurationError struct {
	Param  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Param, e.Reason)
}

// StateError is run-fatal and indicates an orchestration bug: a stage was
// invoked out of its required predecessor state.
type StateError struct {
	Stage string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("stage %s invoked in state %q", e.Stage, e.State)
}

// StageError wraps an unrecoverable failure with the originating stage name.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
