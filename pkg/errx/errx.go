package errx

import (
	"fmt"
	"net/http"
	"sync"
)

// Type classifies an error for propagation and HTTP mapping purposes
type Type string

const (
	TypeValidation    Type = "VALIDATION"
	TypeNotFound      Type = "NOT_FOUND"
	TypeConflict      Type = "CONFLICT"
	TypeAuthorization Type = "AUTHORIZATION"
	TypeBusiness      Type = "BUSINESS"
	TypeInternal      Type = "INTERNAL"
	TypeExternal      Type = "EXTERNAL"
)

// Code is a fully-qualified error code ("PREFIX_CODE") issued by a Registry
type Code string

// Error is the canonical error carried across layer boundaries
type Error struct {
	Code       Code           `json:"code"`
	Type       Type           `json:"type"`
	HTTPStatus int            `json:"-"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetail attaches a single key/value to the error and returns it
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails attaches a map of values to the error and returns it
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithCause records the underlying error without changing the code
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// ToHTTPResponse renders the wire shape consumed by API clients
func (e *Error) ToHTTPResponse() map[string]any {
	resp := map[string]any{
		"code":    e.Code,
		"type":    e.Type,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		resp["details"] = e.Details
	}
	return resp
}

// registration is the immutable template a Registry stamps errors from
type registration struct {
	typ        Type
	httpStatus int
	message    string
}

// Registry issues namespaced error codes for one package/bounded context
type Registry struct {
	prefix string

	mu      sync.RWMutex
	entries map[Code]registration
}

// NewRegistry creates a registry whose codes are prefixed with the given namespace
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix:  prefix,
		entries: make(map[Code]registration),
	}
}

// Register declares an error code and returns its fully-qualified Code
func (r *Registry) Register(code string, typ Type, httpStatus int, message string) Code {
	full := Code(r.prefix + "_" + code)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[full] = registration{
		typ:        typ,
		httpStatus: httpStatus,
		message:    message,
	}
	return full
}

// New stamps a fresh *Error for a previously registered code
func (r *Registry) New(code Code) *Error {
	r.mu.RLock()
	reg, ok := r.entries[code]
	r.mu.RUnlock()

	if !ok {
		return &Error{
			Code:       code,
			Type:       TypeInternal,
			HTTPStatus: http.StatusInternalServerError,
			Message:    "Unregistered error code",
		}
	}

	return &Error{
		Code:       code,
		Type:       reg.typ,
		HTTPStatus: reg.httpStatus,
		Message:    reg.message,
	}
}

// Wrap converts an arbitrary error into an *Error of the given type.
// Already-typed errors pass through untouched so codes survive layering.
func Wrap(err error, message string, typ Type) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{
		Code:       Code(typ),
		Type:       typ,
		HTTPStatus: httpStatusFor(typ),
		Message:    message,
		cause:      err,
	}
}

// IsType reports whether err is an *Error of the given type
func IsType(err error, typ Type) bool {
	e, ok := err.(*Error)
	return ok && e.Type == typ
}

// IsCode reports whether err is an *Error with the given code
func IsCode(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}

func httpStatusFor(typ Type) int {
	switch typ {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeAuthorization:
		return http.StatusForbidden
	case TypeBusiness:
		return http.StatusUnprocessableEntity
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
