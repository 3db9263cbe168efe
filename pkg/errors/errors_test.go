package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsWrapKinds(t *testing.T) {
	assert.ErrorIs(t, NotFoundError("project p1"), ErrNotFound)
	assert.Equal(t, "project p1 not found", NotFoundError("project p1").Error())

	assert.ErrorIs(t, InvalidInputError("image", "unsupported type"), ErrInvalidInput)
	assert.ErrorIs(t, ConflictError("project p1"), ErrConflict)
	assert.ErrorIs(t, ReadOnlyError("delete project"), ErrReadOnly)
	assert.ErrorIs(t, UnavailableError("image storage"), ErrUnavailable)
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(NotFoundError("project")))
	assert.True(t, IsPermanent(fmt.Errorf("save: %w", ReadOnlyError("upsert"))))
	assert.True(t, IsPermanent(ConflictError("project")))
	assert.False(t, IsPermanent(UnavailableError("storage")))
	assert.False(t, IsPermanent(errors.New("connection reset")))
	assert.False(t, IsPermanent(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{NotFoundError("project"), http.StatusNotFound},
		{InvalidInputError("id", "empty"), http.StatusBadRequest},
		{fmt.Errorf("login: %w", ErrUnauthorized), http.StatusUnauthorized},
		{ConflictError("project"), http.StatusConflict},
		{ReadOnlyError("upsert"), http.StatusConflict},
		{UnavailableError("storage"), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err), "%v", tt.err)
	}
}
