package services

import (
	"errors"
	"strings"
)

// Markers classify failures. Every error built by Wrap matches exactly one.
var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Error is a classified failure annotated with where it happened.
type Error struct {
	Marker error
	Stage  string
	Op     string
	Msg    string
	Err    error
}

// Wrap tags err with marker and the stage/operation it came from. A nil
// marker is treated as ErrTransient; err may be nil.
func Wrap(marker error, stage, op, msg string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &Error{
		Marker: marker,
		Stage:  strings.TrimSpace(stage),
		Op:     strings.TrimSpace(op),
		Msg:    strings.TrimSpace(msg),
		Err:    err,
	}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Marker.Error())
	wrote := false
	for _, part := range [...]string{e.Stage, e.Op, e.Msg} {
		if part == "" {
			continue
		}
		b.WriteString(": ")
		b.WriteString(part)
		wrote = true
	}
	if !wrote {
		b.WriteString(": service failure")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the marker and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

// IsRejection reports whether err marks a request that can never succeed as
// submitted: a malformed request, an impossible policy or a missing input.
func IsRejection(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrConfiguration) || errors.Is(err, ErrNotFound)
}
