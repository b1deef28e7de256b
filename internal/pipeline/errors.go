package pipeline

import (
	"errors"
	"fmt"
)

// Stage names a pipeline step.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageSelect  Stage = "select"
	StageVerify  Stage = "verify"
	StageCompute Stage = "compute"
	StageDeliver Stage = "deliver"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitConfig  = 1
	ExitFetch   = 2
	ExitSelect  = 3
	ExitVerify  = 4
	ExitCompute = 5
	ExitDeliver = 6
)

var stageExitCodes = map[Stage]int{
	StageFetch:   ExitFetch,
	StageSelect:  ExitSelect,
	StageVerify:  ExitVerify,
	StageCompute: ExitCompute,
	StageDeliver: ExitDeliver,
}

// StageError records which step of a run failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ExitCode maps a run error to the process exit code. Errors that did not come from a
// stage are configuration or usage errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		if code, ok := stageExitCodes[stageErr.Stage]; ok {
			return code
		}
	}
	return ExitConfig
}
