package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryErrorMatchesSentinel(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := QueryError("TRACTOR_QUERY_FAILED", ErrTractorQueryFailed, cause)

	assert.ErrorIs(t, err, ErrTractorQueryFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrTrailerQueryFailed)
}

func TestQueryErrorSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("asset/assignment fetch failed: %w",
		QueryError("TRAILER_QUERY_FAILED", ErrTrailerQueryFailed, stderrors.New("timeout")))

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TRAILER_QUERY_FAILED", appErr.Code)
	assert.Equal(t, ErrTrailerQueryFailed.Error(), appErr.Message)
	assert.ErrorIs(t, err, ErrTrailerQueryFailed)
}

func TestAppErrorMessage(t *testing.T) {
	assert.Equal(t, "live state query failed: timeout",
		NewAppError("LIVE_STATE_QUERY_FAILED", "live state query failed", stderrors.New("timeout")).Error())
	assert.Equal(t, "live state query failed",
		NewAppError("LIVE_STATE_QUERY_FAILED", "live state query failed", nil).Error())
}
