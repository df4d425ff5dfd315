package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusCode(t *testing.T) {
	for code, want := range map[ErrorCode]int{
		ErrorCodeNotFound:        http.StatusNotFound,
		ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
		ErrorCodeDuplicateKey:    http.StatusConflict,
		ErrorCodeValidation:      http.StatusBadRequest,
		ErrorCodeJSON:            http.StatusBadRequest,
		ErrorCodeTooManyRequests: http.StatusTooManyRequests,
		ErrorCodeUnavailable:     http.StatusServiceUnavailable,
		ErrorCodeNotConfigured:   http.StatusServiceUnavailable,
		ErrorCodeDB:              http.StatusInternalServerError,
		ErrorCodePanic:           http.StatusInternalServerError,
		9999:                     http.StatusInternalServerError,
	} {
		assert.Equal(t, want, HTTPStatusCode(code), "code %d", code)
	}
}

func TestWrapAndWire(t *testing.T) {
	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())

	cause := stderrs.New("connection reset")
	err := Wrapf(cause, ErrorCodeUnavailable, "llm %s", "openai")
	assert.Equal(t, "llm openai: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, Root(fmt.Errorf("score: %w", err)))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(fmt.Errorf("score: %w", err)))

	assert.Equal(t, Wire{Code: ErrorCodeUnavailable, Message: "llm openai"}, WireFrom(err))
	assert.Equal(t, Wire{Code: ErrorCodeUnknown, Message: "connection reset"}, WireFrom(cause))
	assert.Equal(t, Wire{}, WireFrom(nil))
	assert.Nil(t, Root(nil))
}

func TestWithFieldCopies(t *testing.T) {
	orig := InvalidArgf("limit must be positive")
	withField := WithField(orig, "limit")

	e, ok := As(withField)
	require.True(t, ok)
	assert.Equal(t, "limit", e.Field())
	assert.Equal(t, ErrorCodeInvalidArgument, e.Code())

	o, _ := As(orig)
	assert.Empty(t, o.Field())

	foreign := stderrs.New("plain")
	assert.Equal(t, foreign, WithField(foreign, "x"))
}

func TestConstructors(t *testing.T) {
	assert.True(t, IsCode(NotFoundf("tx %s", "TX-1"), ErrorCodeNotFound))
	assert.True(t, IsCode(InvalidArgf("x"), ErrorCodeInvalidArgument))
	assert.True(t, IsCode(JSONErrf("x"), ErrorCodeJSON))
	assert.True(t, IsCode(PanicErrf("x"), ErrorCodePanic))
	assert.True(t, IsCode(NotConfiguredf("x"), ErrorCodeNotConfigured))
	assert.True(t, IsCode(New(ErrorCodeValidation, "x"), ErrorCodeValidation))
	assert.Equal(t, ErrorCodeUnknown, CodeOf(stderrs.New("x")))
}
