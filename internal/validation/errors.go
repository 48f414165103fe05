package validation

import (
	"errors"
	"fmt"
)

// ErrInsufficientData means a window or period holds fewer records than the
// configured minimum. Fatal to that window, never to the run.
var ErrInsufficientData = errors.New("insufficient data in window")

// ErrInsufficientWindows means fewer usable windows than the configured
// minimum could be generated. Fatal to the run.
var ErrInsufficientWindows = errors.New("insufficient walk-forward windows")

// ErrMisalignedPeriods means compared strategies were evaluated over
// different period sets. Fatal; the caller must re-run with aligned periods.
var ErrMisalignedPeriods = errors.New("strategies evaluated over misaligned periods")

// ErrLeakage means a window pair violates temporal causality. It indicates a
// bug in schedule generation and is checked again wherever windows are used.
var ErrLeakage = errors.New("train window overlaps test window")

// CycleTrainingError records a single walk-forward cycle whose training call
// failed. The cycle is skipped and the run continues.
type CycleTrainingError struct {
	Cycle int
	Err   error
}

func (e *CycleTrainingError) Error() string {
	return fmt.Sprintf("cycle %d: training failed: %v", e.Cycle, e.Err)
}

func (e *CycleTrainingError) Unwrap() error { return e.Err }
