package models

import (
	"errors"
	"fmt"
)

// Error kinds used across the engine. Wrap with fmt.Errorf("...: %w", kind)
// and test with errors.Is.
var (
	// ErrRuntime marks an unexpected failure in a subsystem call
	ErrRuntime = errors.New("runtime error")
	// ErrInvalidOperation marks API misuse, e.g. an unknown instruction index
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrParse marks XML or attribute parsing failures
	ErrParse = errors.New("parse error")
	// ErrProcedureSetup marks a failed procedure setup
	ErrProcedureSetup = errors.New("procedure setup failed")
	// ErrInstructionSetup marks a failed instruction setup
	ErrInstructionSetup = errors.New("instruction setup failed")
	// ErrVariableSetup marks a failed variable setup
	ErrVariableSetup = errors.New("variable setup failed")
)

// InstructionSetupError carries the failing instruction's identity and its
// failed constraints. It matches ErrInstructionSetup under errors.Is.
type InstructionSetupError struct {
	InstructionName   string
	InstructionType   string
	FailedConstraints []string
	Reason            string
}

func (e *InstructionSetupError) Error() string {
	msg := fmt.Sprintf("setup of instruction %q (type %s) failed",
		e.InstructionName, e.InstructionType)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	for _, c := range e.FailedConstraints {
		msg += "\n  failed constraint: " + c
	}
	return msg
}

func (e *InstructionSetupError) Unwrap() error {
	return ErrInstructionSetup
}

// VariableSetupError carries the failing variable's identity. It matches
// ErrVariableSetup under errors.Is.
type VariableSetupError struct {
	VariableName string
	VariableType string
	Reason       string
}

func (e *VariableSetupError) Error() string {
	return fmt.Sprintf("setup of variable %q (type %s) failed: %s",
		e.VariableName, e.VariableType, e.Reason)
}

func (e *VariableSetupError) Unwrap() error {
	return ErrVariableSetup
}
