package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = errors.New("sentinel")

func TestWrappedSentinelSurvivesConversion(t *testing.T) {
	err := fmt.Errorf("solve: %w", NewConflictCode("ALREADY_SOLVED", "already solved", errSentinel, nil))

	de := ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "ALREADY_SOLVED", de.Code)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.ErrorIs(t, err, errSentinel)
}

func TestToDomainErrorFallbacks(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	nf := ToDomainError(sql.ErrNoRows)
	assert.Equal(t, http.StatusNotFound, nf.HTTPStatus)

	boom := errors.New("boom")
	de := ToDomainError(boom)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.ErrorIs(t, de, boom)
	assert.Equal(t, de, NewInternalError(boom))
}

func TestCodeForStatus(t *testing.T) {
	assert.Equal(t, "UNAUTHORIZED", CodeForStatus(http.StatusUnauthorized))
	assert.Equal(t, "INTERNAL_ERROR", CodeForStatus(http.StatusBadGateway))
	assert.Equal(t, "REQUEST_FAILED", CodeForStatus(http.StatusTeapot))
}
