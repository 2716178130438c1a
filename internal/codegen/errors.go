package codegen

import (
	"errors"
	"fmt"

	"github.com/mark3labs/smokegen/internal/binding"
	"github.com/mark3labs/smokegen/internal/config"
	"github.com/mark3labs/smokegen/internal/output"
)

var (
	// ErrModelConsistency matches errors caused by a model that cannot be
	// generated safely.
	ErrModelConsistency = errors.New("model consistency error")
	// ErrIO matches errors writing the output tree.
	ErrIO = errors.New("io error")
	// ErrRender matches template execution failures.
	ErrRender = errors.New("render error")
)

// ErrorKind classifies a GenerationError.
type ErrorKind string

const (
	ConfigurationError    ErrorKind = "ConfigurationError"
	ModelConsistencyError ErrorKind = "ModelConsistencyError"
	IOError               ErrorKind = "IOError"
	RenderError           ErrorKind = "RenderError"
)

// GenerationError is returned by Generate. Every kind is fatal.
type GenerationError struct {
	Kind      ErrorKind
	Operation string
	Message   string
	Err       error
}

func (e *GenerationError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Operation != "" {
		return fmt.Sprintf("%s: operation %s: %s", e.Kind, e.Operation, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool {
	switch e.Kind {
	case ConfigurationError:
		return target == config.ErrConfiguration
	case ModelConsistencyError:
		return target == ErrModelConsistency
	case IOError:
		return target == ErrIO
	case RenderError:
		return target == ErrRender
	default:
		return false
	}
}

func configurationError(format string, args ...any) error {
	return &GenerationError{Kind: ConfigurationError, Message: fmt.Sprintf(format, args...)}
}

func inconsistent(operation, format string, args ...any) error {
	return &GenerationError{Kind: ModelConsistencyError, Operation: operation, Message: fmt.Sprintf(format, args...)}
}

func renderError(relPath string, err error) error {
	return &GenerationError{Kind: RenderError, Message: fmt.Sprintf("render %s: %v", relPath, err), Err: err}
}

// classify wraps errors from the binding and output packages.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var gerr *GenerationError
	if errors.As(err, &gerr) {
		return err
	}
	var cerr *binding.ConsistencyError
	switch {
	case errors.As(err, &cerr):
		return &GenerationError{Kind: ModelConsistencyError, Operation: cerr.Operation, Message: cerr.Message, Err: err}
	case errors.Is(err, output.ErrIO):
		return &GenerationError{Kind: IOError, Message: err.Error(), Err: err}
	case errors.Is(err, config.ErrConfiguration):
		return &GenerationError{Kind: ConfigurationError, Message: err.Error(), Err: err}
	default:
		return err
	}
}
