package errx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIssuesPrefixedCodes(t *testing.T) {
	reg := NewRegistry("WIDGET")
	code := reg.Register("NOT_FOUND", TypeNotFound, http.StatusNotFound, "Widget not found")

	assert.Equal(t, Code("WIDGET_NOT_FOUND"), code)

	err := reg.New(code)
	assert.Equal(t, TypeNotFound, err.Type)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
	assert.Equal(t, "Widget not found", err.Message)
}

func TestUnregisteredCodeFallsBackToInternal(t *testing.T) {
	reg := NewRegistry("WIDGET")
	err := reg.New(Code("WIDGET_MYSTERY"))

	assert.Equal(t, TypeInternal, err.Type)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
}

func TestWrapPassesThroughTypedErrors(t *testing.T) {
	reg := NewRegistry("WIDGET")
	code := reg.Register("BROKEN", TypeBusiness, http.StatusUnprocessableEntity, "Widget broke")
	original := reg.New(code)

	wrapped := Wrap(original, "outer layer", TypeInternal)
	assert.Same(t, original, wrapped)

	assert.Nil(t, Wrap(nil, "nothing", TypeInternal))
}

func TestWrapConvertsPlainErrors(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, "could not save", TypeExternal)

	assert.Equal(t, TypeExternal, err.Type)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
	assert.ErrorIs(t, err, cause)
}

func TestDetailsAndHTTPResponse(t *testing.T) {
	reg := NewRegistry("WIDGET")
	code := reg.Register("INVALID", TypeValidation, http.StatusBadRequest, "Bad widget")

	err := reg.New(code).
		WithDetail("field", "name").
		WithDetails(map[string]any{"max": 10})

	resp := err.ToHTTPResponse()
	assert.Equal(t, Code("WIDGET_INVALID"), resp["code"])

	details, ok := resp["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "name", details["field"])
	assert.Equal(t, 10, details["max"])
}

func TestTypeAndCodePredicates(t *testing.T) {
	reg := NewRegistry("WIDGET")
	code := reg.Register("GONE", TypeNotFound, http.StatusNotFound, "Gone")
	err := reg.New(code)

	assert.True(t, IsType(err, TypeNotFound))
	assert.False(t, IsType(err, TypeConflict))
	assert.True(t, IsCode(err, code))
	assert.False(t, IsType(errors.New("plain"), TypeNotFound))
}
