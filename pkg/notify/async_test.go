package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, n Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func TestAsyncSend(t *testing.T) {
	t.Run("Delivers notification", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		dispatcher := new(mockDispatcher)
		dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(n Notification) bool {
			return n.Kind == KindBookingConfirmed && n.CorrelatedEntityID == "booking-1" && !n.CreatedAt.IsZero()
		})).Return(nil).Once()

		async := NewAsync(dispatcher, logger, time.Second)
		async.Send(Notification{RecipientID: "customer-1", Kind: KindBookingConfirmed, CorrelatedEntityID: "booking-1"})
		async.Wait()

		dispatcher.AssertExpectations(t)
		assert.Empty(t, hook.AllEntries())
	})

	t.Run("Logs delivery failure", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		dispatcher := new(mockDispatcher)
		dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		async := NewAsync(dispatcher, logger, time.Second)
		async.Send(Notification{RecipientID: "customer-1", Kind: KindBookingConfirmed, CorrelatedEntityID: "booking-1"})
		async.Wait()

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, "dependency_unavailable", entry.Data["error_kind"])
	})

	t.Run("Recovers from panicking dispatcher", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		dispatcher := new(mockDispatcher)
		dispatcher.On("Dispatch", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			panic("boom")
		}).Return(nil).Once()

		async := NewAsync(dispatcher, logger, time.Second)
		async.Send(Notification{Kind: KindRentalStatusChanged})
		async.Wait()

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.ErrorLevel, entry.Level)
	})
}

func TestLogDispatcher(t *testing.T) {
	logger, hook := test.NewNullLogger()
	d := NewLogDispatcher(logger)

	err := d.Dispatch(context.Background(), Notification{RecipientID: "r", Kind: KindContractStatus, CorrelatedEntityID: "c"})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "c", entry.Data["entity_id"])
}
