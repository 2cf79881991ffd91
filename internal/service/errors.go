package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrGoalNotFound       = fmt.Errorf("goal %w", ErrNotFound)
	ErrGroupNotFound      = fmt.Errorf("group %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrInviteCodeNotFound = fmt.Errorf("invite code %w", ErrNotFound)
	// ErrChatNotLinked is returned when a Telegram chat has no savings group
	ErrChatNotLinked = fmt.Errorf("linked group %w", ErrNotFound)

	ErrAlreadyMember      = errors.New("already a member of this group")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
)

// ValidationError reports every invalid field of a request at once
type ValidationError struct {
	errs *multierror.Error
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems(), "; ")
}

// Problems returns one message per invalid field
func (e *ValidationError) Problems() []string {
	out := make([]string, 0, len(e.errs.Errors))
	for _, err := range e.errs.Errors {
		out = append(out, err.Error())
	}
	return out
}

// IsValidation reports whether err is a *ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// validator collects field problems
type validator struct {
	errs *multierror.Error
}

func (v *validator) check(ok bool, format string, args ...any) {
	if !ok {
		v.errs = multierror.Append(v.errs, fmt.Errorf(format, args...))
	}
}

// err returns nil when every check passed
func (v *validator) err() error {
	if v.errs.ErrorOrNil() == nil {
		return nil
	}
	return &ValidationError{errs: v.errs}
}
