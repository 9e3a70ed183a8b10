package libbus_test

import (
	"context"
	"testing"
	"time"

	libbus "github.com/modernweb/assist/libbus"
	"github.com/stretchr/testify/require"
)

func TestUnit_InMemStream(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ps := libbus.NewInMem()
	defer ps.Close()

	streamCh := make(chan []byte, 1)
	sub, err := ps.Stream(ctx, "chat.snapshot", streamCh)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, ps.Publish(ctx, "chat.snapshot", []byte("snapshot")))

	select {
	case received := <-streamCh:
		require.Equal(t, []byte("snapshot"), received)
	case <-ctx.Done():
		t.Fatal("timed out waiting for streamed message")
	}
}

func TestUnit_InMemSubjectIsolation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ps := libbus.NewInMem()
	defer ps.Close()

	streamCh := make(chan []byte, 1)
	_, err := ps.Stream(ctx, "chat.snapshot", streamCh)
	require.NoError(t, err)

	require.NoError(t, ps.Publish(ctx, "chat.other", []byte("elsewhere")))

	select {
	case <-streamCh:
		t.Fatal("received message for a different subject")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnit_InMemClosed(t *testing.T) {
	ctx := context.Background()

	ps := libbus.NewInMem()
	require.NoError(t, ps.Close())

	err := ps.Publish(ctx, "chat.snapshot", []byte("data"))
	require.Equal(t, libbus.ErrConnectionClosed, err)

	_, err = ps.Stream(ctx, "chat.snapshot", make(chan []byte, 1))
	require.Equal(t, libbus.ErrConnectionClosed, err)
}

func TestUnit_InMemUnsubscribe(t *testing.T) {
	ctx := context.Background()

	ps := libbus.NewInMem()
	defer ps.Close()

	streamCh := make(chan []byte, 1)
	sub, err := ps.Stream(ctx, "chat.snapshot", streamCh)
	require.NoError(t, err)
	require.NoError(t, sub.Unsubscribe())

	require.NoError(t, ps.Publish(ctx, "chat.snapshot", []byte("dropped")))

	select {
	case <-streamCh:
		t.Fatal("received message after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}
