// Package errors provides the structured error and warning types raised by
// the reopenml pipeline, built on cockroachdb/errors so every error carries a
// stacktrace, with zerolog marshalers for structured logging.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("reopenml-warning: %v\n", w)
	}
)

// SetWarningHandler sets the process-wide warning handler. Warnings are
// non-fatal conditions (e.g. an iterative solver stopping at max_iter) that
// the caller may want to surface without aborting the run.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// Warn dispatches a warning to the registered handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ConvergenceWarning is raised when an iterative solver stops at its
// iteration budget before reaching its tolerance.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
}

func (w *ConvergenceWarning) Error() string {
	return fmt.Sprintf("%s did not converge within %d iterations. Consider increasing max_iter or loosening tol.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a new ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations}
}

// ===========================================================================
//
//	Estimator errors
//
// ===========================================================================

// NotFittedError is returned when Predict or Score is called on an estimator
// whose Fit has not completed.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("reopenml: %s: this estimator is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stacktrace attached.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError is returned when the shape of an input matrix does not match
// what the operation expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("reopenml: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stacktrace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError is returned when a hyperparameter fails validation, e.g. a
// grid candidate an estimator cannot accept.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("reopenml: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stacktrace attached.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError is returned when an argument value is out of range or otherwise
// unusable for the operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("reopenml: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stacktrace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Dataset errors
//
// ===========================================================================

// MissingColumnError is returned by the loader when a required column
// (the identifier or the label) is absent from the source table.
type MissingColumnError struct {
	Column string
	Path   string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("reopenml: required column %q not found in %s", e.Column, e.Path)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *MissingColumnError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Str("path", e.Path).
		Str("type", "MissingColumnError")
}

// NewMissingColumnError creates a MissingColumnError with a stacktrace attached.
func NewMissingColumnError(column, path string) error {
	err := &MissingColumnError{Column: column, Path: path}
	return errors.WithStack(err)
}

// LabelDomainError is returned by the loader when a label value falls outside
// the binary {0, 1} domain the downstream aggregation assumes. The results
// aggregation marks absent predictions with the sentinel 8, so labels at or
// above that value would be indistinguishable from missing cells.
type LabelDomainError struct {
	Row   int
	Value float64
}

func (e *LabelDomainError) Error() string {
	return fmt.Sprintf("reopenml: label at row %d is %v; labels must be 0 or 1", e.Row, e.Value)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *LabelDomainError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("row", e.Row).
		Float64("value", e.Value).
		Str("type", "LabelDomainError")
}

// NewLabelDomainError creates a LabelDomainError with a stacktrace attached.
func NewLabelDomainError(row int, value float64) error {
	err := &LabelDomainError{Row: row, Value: value}
	return errors.WithStack(err)
}

// DuplicateIDError is returned by the loader when the identifier column
// contains a repeated value after row cleaning.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("reopenml: identifier %q appears more than once after cleaning", e.ID)
}

// NewDuplicateIDError creates a DuplicateIDError with a stacktrace attached.
func NewDuplicateIDError(id string) error {
	err := &DuplicateIDError{ID: id}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stacktrace.
func New(message string) error {
	return errors.New(message)
}

// WithStack attaches a stacktrace to an existing error.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common sentinel errors
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an operation receives an empty dataset.
	ErrEmptyData = New("empty data")

	// ErrEmptyGrid is returned when a grid search is given no candidates.
	ErrEmptyGrid = New("empty parameter grid")
)
