package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/folio/internal/interfaces"
)

func TestPublishSync_DeliversToAllSubscribers(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	var count atomic.Int32
	handler := func(ctx context.Context, event interfaces.Event) error {
		count.Add(1)
		return nil
	}

	require.NoError(t, svc.Subscribe(interfaces.EventContentAdded, handler))
	require.NoError(t, svc.Subscribe(interfaces.EventContentAdded, handler))

	err := svc.PublishSync(context.Background(), interfaces.Event{
		Type:    interfaces.EventContentAdded,
		Payload: map[string]interface{}{"slug": "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), count.Load())
}

func TestPublishSync_NoSubscribersIsNoop(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	err := svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventScanStarted})
	assert.NoError(t, err)
}

func TestPublishSync_HandlerErrorSurfaces(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	require.NoError(t, svc.Subscribe(interfaces.EventScanCompleted, func(ctx context.Context, event interfaces.Event) error {
		return errors.New("boom")
	}))

	err := svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventScanCompleted})
	assert.Error(t, err)
}

func TestPublish_IsAsynchronous(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, svc.Subscribe(interfaces.EventContentUpdated, func(ctx context.Context, event interfaces.Event) error {
		defer wg.Done()
		return nil
	}))

	require.NoError(t, svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventContentUpdated}))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
}

func TestSubscribe_NilHandlerRejected(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	assert.Error(t, svc.Subscribe(interfaces.EventScanStarted, nil))
}

func TestUnsubscribe_RemovesHandler(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	var count atomic.Int32
	handler := func(ctx context.Context, event interfaces.Event) error {
		count.Add(1)
		return nil
	}

	require.NoError(t, svc.Subscribe(interfaces.EventContentRemoved, handler))
	require.NoError(t, svc.Unsubscribe(interfaces.EventContentRemoved, handler))

	require.NoError(t, svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventContentRemoved}))
	assert.Zero(t, count.Load())
}

func TestUnsubscribe_UnknownHandler(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	err := svc.Unsubscribe(interfaces.EventContentRemoved, func(ctx context.Context, event interfaces.Event) error {
		return nil
	})
	assert.Error(t, err)
}

func TestClose_DropsSubscribers(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	var count atomic.Int32
	require.NoError(t, svc.Subscribe(interfaces.EventScanStarted, func(ctx context.Context, event interfaces.Event) error {
		count.Add(1)
		return nil
	}))

	require.NoError(t, svc.Close())
	require.NoError(t, svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventScanStarted}))
	assert.Zero(t, count.Load())
}
