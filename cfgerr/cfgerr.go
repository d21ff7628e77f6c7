// Package cfgerr defines the errors that a SoC configuration can run into.
// Every error is detected while the SoC is being composed, never while it
// runs, and every error stops the composition.
package cfgerr

import (
	"errors"
	"fmt"
)

// The kinds of configuration errors.
var (
	ErrDuplicateDescriptorName = errors.New("duplicate descriptor name")
	ErrZeroWidthRegister       = errors.New("zero-width register")
	ErrZeroReplication         = errors.New("zero replication count")
	ErrOverlappingRegion       = errors.New("overlapping region")
	ErrZeroSizeRegion          = errors.New("zero-size region")
	ErrDuplicateRegion         = errors.New("duplicate region name")
	ErrInvalidPortIndex        = errors.New("invalid port index")
	ErrFinalized               = errors.New("configuration already finalized")
	ErrUnmirrorableRegion      = errors.New("region cannot be mirrored")
	ErrUnknownName             = errors.New("unknown name")
	ErrRegisterKind            = errors.New("wrong register kind")
	ErrDuplicateConstant       = errors.New("duplicate constant")
	ErrInvalidConstant         = errors.New("invalid constant")
)

// A ConfigurationError reports a problem found while building the SoC. Kind
// is one of the sentinel errors of this package and Subject names the
// descriptor, region, or port that caused it.
type ConfigurationError struct {
	Kind    error
	Subject string
	Detail  string
}

// New creates a ConfigurationError.
func New(kind error, subject string) *ConfigurationError {
	return &ConfigurationError{Kind: kind, Subject: subject}
}

// Newf creates a ConfigurationError with a formatted detail message.
func Newf(
	kind error,
	subject string,
	format string,
	args ...any,
) *ConfigurationError {
	return &ConfigurationError{
		Kind:    kind,
		Subject: subject,
		Detail:  fmt.Sprintf(format, args...),
	}
}

func (e *ConfigurationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Kind, e.Subject)
	}

	return fmt.Sprintf("configuration error: %s: %s: %s",
		e.Kind, e.Subject, e.Detail)
}

// Unwrap returns the kind so that errors.Is matches the sentinels.
func (e *ConfigurationError) Unwrap() error {
	return e.Kind
}
