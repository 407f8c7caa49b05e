// Package apperr is the error taxonomy of the HTTP API and the single place where error kinds
// are mapped to transport status codes and wire messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindKeyLoad
	KindToken
	KindAuthorizationDenied
	KindFormat
	KindNotFound
	KindStorageIO
	KindBadRequest
	KindConflict
	KindInvalidCredentials
)

// Kinds lists every Kind; the mapping table must cover all of them.
var Kinds = []Kind{
	KindInternal,
	KindKeyLoad,
	KindToken,
	KindAuthorizationDenied,
	KindFormat,
	KindNotFound,
	KindStorageIO,
	KindBadRequest,
	KindConflict,
	KindInvalidCredentials,
}

type mapping struct {
	status int
	// message is what the client sees; empty means the error's own message is safe to show.
	message string
}

var table = map[Kind]mapping{
	KindInternal:            {http.StatusInternalServerError, "internal server error"},
	KindKeyLoad:             {http.StatusInternalServerError, "internal server error"},
	KindToken:               {http.StatusForbidden, "not authorized"},
	KindAuthorizationDenied: {http.StatusForbidden, "permission denied"},
	KindFormat:              {http.StatusNotFound, "not found"},
	KindNotFound:            {http.StatusNotFound, "not found"},
	KindStorageIO:           {http.StatusInternalServerError, "internal server error"},
	KindBadRequest:          {http.StatusBadRequest, ""},
	KindConflict:            {http.StatusConflict, ""},
	KindInvalidCredentials:  {http.StatusUnauthorized, "invalid credentials"},
}

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindKeyLoad:
		return "key_load"
	case KindToken:
		return "token"
	case KindAuthorizationDenied:
		return "authorization_denied"
	case KindFormat:
		return "format"
	case KindNotFound:
		return "not_found"
	case KindStorageIO:
		return "storage_io"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	case KindInvalidCredentials:
		return "invalid_credentials"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified error. Msg is the log-level description; Err is the optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of kind with a log-level message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error of kind with cause err. Returns nil if err is nil.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of the outermost *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status returns the HTTP status for err.
func Status(err error) int {
	return lookup(KindOf(err)).status
}

// PublicMessage returns the message safe to send to the client for err. Kinds without a fixed
// message expose Msg, or the cause when Msg is empty.
func PublicMessage(err error) string {
	m := lookup(KindOf(err))
	if m.message != "" {
		return m.message
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Msg != "" {
			return e.Msg
		}
		if e.Err != nil {
			return e.Err.Error()
		}
	}
	return http.StatusText(m.status)
}

func lookup(k Kind) mapping {
	if m, ok := table[k]; ok {
		return m
	}
	return table[KindInternal]
}
