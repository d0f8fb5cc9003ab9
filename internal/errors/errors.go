// Package errors defines the stage error taxonomy of a kikitori run.
// Translation failures are absorbed by the translation client and never
// appear here.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Code identifies the pipeline stage that failed.
type Code string

const (
	ErrAcquisition   Code = "ACQUISITION"   // every source strategy exhausted
	ErrTranscription Code = "TRANSCRIPTION" // engine failure or missing/empty audio
	ErrExtraction    Code = "EXTRACTION"    // tokenizer could not run
	ErrAssembly      Code = "ASSEMBLY"      // packaging I/O failure
)

// StageError is a fatal failure of one stage together with its cause chain.
type StageError struct {
	Code    Code
	Message string
	Causes  []error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(e.Code)))
	b.WriteString(" failed")
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Causes) == 1 && e.Code != ErrAcquisition {
		b.WriteString(": ")
		b.WriteString(e.Causes[0].Error())
	}
	return b.String()
}

// Unwrap exposes the causes to errors.Is and errors.As.
func (e *StageError) Unwrap() []error {
	return e.Causes
}

// StrategyFailure records why one acquisition strategy failed.
type StrategyFailure struct {
	Index    int // 1-based position in the chain
	Strategy string
	Err      error
}

func (f *StrategyFailure) Error() string {
	return fmt.Sprintf("[%d] %s: %v", f.Index, f.Strategy, f.Err)
}

func (f *StrategyFailure) Unwrap() error {
	return f.Err
}

// NewAcquisition creates an error for an exhausted strategy chain. The
// message lists every failure in chain order.
func NewAcquisition(failures ...*StrategyFailure) *StageError {
	causes := make([]error, 0, len(failures))
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		causes = append(causes, f)
		parts = append(parts, f.Error())
	}
	msg := fmt.Sprintf("all %d strategies failed", len(failures))
	if len(parts) > 0 {
		msg += ": " + strings.Join(parts, "; ")
	}
	return &StageError{Code: ErrAcquisition, Message: msg, Causes: causes}
}

// NewTranscription creates an error for a failed transcription.
func NewTranscription(msg string, cause error) *StageError {
	return newStageError(ErrTranscription, msg, cause)
}

// NewExtraction creates an error for a tokenizer that cannot run.
func NewExtraction(msg string, cause error) *StageError {
	return newStageError(ErrExtraction, msg, cause)
}

// NewAssembly creates an error for an unrecoverable packaging failure.
func NewAssembly(msg string, cause error) *StageError {
	return newStageError(ErrAssembly, msg, cause)
}

func newStageError(code Code, msg string, cause error) *StageError {
	e := &StageError{Code: code, Message: msg}
	if cause != nil {
		e.Causes = []error{cause}
	}
	return e
}

// Is reports whether err, or anything it wraps, is a StageError with code.
func Is(err error, code Code) bool {
	var se *StageError
	if stderrors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// Failures returns the per-strategy failures of an acquisition error.
func Failures(err error) []*StrategyFailure {
	var se *StageError
	if !stderrors.As(err, &se) {
		return nil
	}
	var out []*StrategyFailure
	for _, c := range se.Causes {
		var f *StrategyFailure
		if stderrors.As(c, &f) {
			out = append(out, f)
		}
	}
	return out
}
