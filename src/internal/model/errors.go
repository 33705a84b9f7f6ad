package model

import (
	"fmt"
	"strings"
)

// ParseError wraps a failure of the external parser for one file.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.File, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// UnknownTypeError is returned when a type node has none of the four known shapes.
type UnknownTypeError struct {
	NodeType string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type node %q", e.NodeType)
}

// NamePathError is returned when a user-defined type name cannot be resolved
// to a struct for ABI generation.
type NamePathError struct {
	NamePath string
	Reason   string
}

func (e *NamePathError) Error() string {
	return fmt.Sprintf("cannot resolve name path %q: %s", e.NamePath, e.Reason)
}

// InheritanceCycleError names the contracts of an inheritance cycle,
// starting and ending with the same contract.
type InheritanceCycleError struct {
	Cycle []string
}

func (e *InheritanceCycleError) Error() string {
	return "inheritance cycle: " + strings.Join(e.Cycle, " -> ")
}

// BuildError ties a failure to the contract and file being built.
type BuildError struct {
	File     string
	Contract string
	Err      error
}

func (e *BuildError) Error() string {
	if e.Contract == "" {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s: contract %s: %v", e.File, e.Contract, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
