package booking

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearby-app/marketplace-api/pkg/domain"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	bk, err := NewBooking(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "please ring the bell")
	require.NoError(t, err)
	return bk
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestNewBooking(t *testing.T) {
	bk := newTestBooking(t)

	assert.Equal(t, StatusPending, bk.Status())
	assert.Equal(t, int64(1), bk.Version())
	assert.NotEqual(t, uuid.Nil, bk.ID())
}

func TestNewBooking_RequiresIDs(t *testing.T) {
	_, err := NewBooking(uuid.Nil, uuid.New(), uuid.New(), uuid.New(), "")
	assert.Error(t, err)

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), uuid.Nil, "")
	assert.Error(t, err)
}

func TestBooking_Confirm(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Confirm(bk.ProviderID()))
	assert.Equal(t, StatusConfirmed, bk.Status())

	// Confirming twice is an invalid transition.
	err := bk.Confirm(bk.ProviderID())
	assertAppErrorCode(t, err, "INVALID_STATUS")
}

func TestBooking_Confirm_WrongProvider(t *testing.T) {
	bk := newTestBooking(t)

	err := bk.Confirm(uuid.New())
	require.Error(t, err)
	assert.Equal(t, StatusPending, bk.Status())
}

func TestBooking_Reject(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Reject(bk.ProviderID()))
	assert.Equal(t, StatusRejected, bk.Status())

	// REJECTED is terminal.
	err := bk.Cancel(bk.ClientID())
	assertAppErrorCode(t, err, "INVALID_STATUS")
}

func TestBooking_Reject_AfterConfirm(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Confirm(bk.ProviderID()))

	err := bk.Reject(bk.ProviderID())
	assertAppErrorCode(t, err, "INVALID_STATUS")
}

func TestBooking_Cancel(t *testing.T) {
	t.Run("from pending", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.Cancel(bk.ClientID()))
		assert.Equal(t, StatusCancelled, bk.Status())
	})

	t.Run("from confirmed", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.Confirm(bk.ProviderID()))
		require.NoError(t, bk.Cancel(bk.ClientID()))
		assert.Equal(t, StatusCancelled, bk.Status())
	})

	t.Run("wrong client", func(t *testing.T) {
		bk := newTestBooking(t)
		err := bk.Cancel(uuid.New())
		require.Error(t, err)
		assert.Equal(t, StatusPending, bk.Status())
	})

	t.Run("already cancelled", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.Cancel(bk.ClientID()))
		err := bk.Cancel(bk.ClientID())
		assertAppErrorCode(t, err, "INVALID_STATUS")
	})
}

func TestBooking_IncrementVersion(t *testing.T) {
	bk := newTestBooking(t)
	before := bk.Version()

	bk.IncrementVersion()
	assert.Equal(t, before+1, bk.Version())
}
