package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
	assert.Equal(t, 400, err.HTTPStatus)
}

func TestWrap(t *testing.T) {
	originalErr := fmt.Errorf("original error")
	wrappedErr := Wrap(originalErr, DatabaseError, "database operation failed")

	assert.Equal(t, DatabaseError, wrappedErr.Type)
	assert.Equal(t, "database operation failed", wrappedErr.Message)
	assert.Equal(t, originalErr.Error(), wrappedErr.Detail)
	assert.Equal(t, 500, wrappedErr.HTTPStatus)
	assert.Equal(t, originalErr, wrappedErr.Raw)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, DatabaseError, "should be nil"))
}

func TestNotFound(t *testing.T) {
	err := NotFound("Project", 123)
	assert.Equal(t, NotFoundError, err.Type)
	assert.Equal(t, "Project not found", err.Message)
	assert.Equal(t, "ID: 123", err.Detail)
	assert.Equal(t, 404, err.HTTPStatus)
}

func TestUnknownCheck(t *testing.T) {
	err := UnknownCheck("warp-core")
	assert.Equal(t, UnknownCheckError, err.Type)
	assert.Equal(t, "Unknown health check", err.Message)
	assert.Equal(t, "Check name: warp-core", err.Detail)
	assert.Equal(t, 404, err.HTTPStatus)
}

func TestErrorString(t *testing.T) {
	err := New(ServerError, "something broke", "")
	assert.Equal(t, "SERVER_ERROR: something broke", err.Error())

	withDetail := New(ServerError, "something broke", "disk on fire")
	assert.Equal(t, "SERVER_ERROR: something broke (disk on fire)", withDetail.Error())
}

func TestGetHTTPStatusDefault(t *testing.T) {
	err := &AppError{Type: ServerError, Message: "boom"}
	assert.Equal(t, 500, err.GetHTTPStatus())
}
