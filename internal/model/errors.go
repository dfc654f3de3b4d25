package model

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("not authorized")
	ErrNotFound     = errors.New("not found")
	ErrTransient    = errors.New("transient failure")
	ErrInFlight     = errors.New("mutation already in flight")

	// ErrAlreadyDeleted - повторное удаление; errors.Is(err, ErrNotFound) == true
	ErrAlreadyDeleted = fmt.Errorf("already deleted: %w", ErrNotFound)
)

type Kind int

const (
	KindTransient Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindInFlight
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindInFlight:
		return "in_flight"
	}
	return "transient"
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindAuthorization:
		return ErrUnauthorized
	case KindNotFound:
		return ErrNotFound
	case KindInFlight:
		return ErrInFlight
	}
	return ErrTransient
}

// Error - классифицированная ошибка операции. Исходная ошибка и её текст сохраняются.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf классифицирует произвольную ошибку. Неизвестные ошибки считаются временными.
func KindOf(err error) Kind {
	var classified *Error
	switch {
	case errors.As(err, &classified):
		return classified.Kind
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnauthorized):
		return KindAuthorization
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInFlight):
		return KindInFlight
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindTransient
	}
	return KindTransient
}

// Classify оборачивает err в *Error с операцией op. nil остаётся nil.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindOf(err), Op: op, Err: err}
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
