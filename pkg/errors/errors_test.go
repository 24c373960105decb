package errors

import (
	"database/sql"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	err := fmt.Errorf("handler: %w", Clone(ErrNotFound, "tutorial not found"))

	appErr := FromError(err)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "tutorial not found", appErr.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.True(t, stdErrors.Is(appErr, sql.ErrConnDone))
}

func TestClonedSentinelsMatchWithIs(t *testing.T) {
	err := Clone(ErrConflict, "slug already exists")
	assert.True(t, stdErrors.Is(err, ErrConflict))
	assert.False(t, stdErrors.Is(err, ErrNotFound))
}

func TestWrapAsDefaultsMessage(t *testing.T) {
	cause := stdErrors.New("dial tcp: refused")
	err := WrapAs(ErrStoreUnavailable, cause, "")
	assert.Equal(t, ErrStoreUnavailable.Message, err.Message)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Contains(t, err.Error(), "dial tcp")
}
