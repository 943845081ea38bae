// Package ilerrors defines the error taxonomy shared by the analysis
// pipeline. Kinds are sentinel values rather than types, matched with
// errors.Is/errors.As from driver code that needs to decide between
// "Failed" (per-method, keep going) and "abort the run".
package ilerrors

import "fmt"

// Kind classifies why an analysis step could not complete.
type Kind int

const (
	// UnknownOpcode: an opcode's numeric code exceeds the family table.
	UnknownOpcode Kind = iota
	// FamilyMismatch: an operand decoder was applied to the wrong family.
	FamilyMismatch
	// UnsupportedFlow: Phi or an unrecognized Meta opcode during CFG build.
	UnsupportedFlow
	// UnsupportedFamily: the stack simulator hit a family it doesn't model.
	UnsupportedFamily
	// StackUnderflow: the simulator popped from an empty stack or a
	// mismatched slot size.
	StackUnderflow
	// AssemblyIOError: reading or writing the container failed.
	AssemblyIOError
	// ArgumentError: CLI misuse.
	ArgumentError
)

func (k Kind) String() string {
	switch k {
	case UnknownOpcode:
		return "UnknownOpcode"
	case FamilyMismatch:
		return "FamilyMismatch"
	case UnsupportedFlow:
		return "UnsupportedFlow"
	case UnsupportedFamily:
		return "UnsupportedFamily"
	case StackUnderflow:
		return "StackUnderflow"
	case AssemblyIOError:
		return "AssemblyIOError"
	case ArgumentError:
		return "ArgumentError"
	default:
		return "Unknown"
	}
}

// AnalysisError is the error type raised throughout the core. It carries
// a Kind so driver code can decide whether a method should be reported
// Failed or whether the whole run should abort.
type AnalysisError struct {
	Kind    Kind
	Message string
	Wrapped error
}

func (e *AnalysisError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("💥 %s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("💥 %s: %s", e.Kind, e.Message)
}

func (e *AnalysisError) Unwrap() error { return e.Wrapped }

// New builds an *AnalysisError with no wrapped cause.
func New(kind Kind, format string, args ...any) *AnalysisError {
	return &AnalysisError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *AnalysisError around an existing error.
func Wrap(kind Kind, err error, format string, args ...any) *AnalysisError {
	return &AnalysisError{Kind: kind, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// IsMethodFatal reports whether the error should only fail the current
// method (vs. abort the whole run). AssemblyIOError and ArgumentError are
// always run-fatal; everything else is confined to the method in progress.
func IsMethodFatal(err error) bool {
	var ae *AnalysisError
	if !asAnalysisError(err, &ae) {
		return true
	}
	switch ae.Kind {
	case AssemblyIOError, ArgumentError:
		return false
	default:
		return true
	}
}

func asAnalysisError(err error, target **AnalysisError) bool {
	for err != nil {
		if ae, ok := err.(*AnalysisError); ok {
			*target = ae
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
