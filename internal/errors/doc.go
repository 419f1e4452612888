// Package errors defines error types for the Selenium grid supervisor.
//
// This package provides structured error types for the different ways a grid
// start can fail: a child that cannot be launched, unexpected startup output,
// a child that exits before it is ready, or a missing binary. All error types
// support error unwrapping and can be checked using errors.Is, errors.As, and
// errors.AsType.
package errors
