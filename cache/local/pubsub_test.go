package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubSubBasic(t *testing.T) {
	ps := NewPubSub(16)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "events:s1")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "events:s1", `{"action":"relic.add"}`))
	require.NoError(t, ps.Publish(ctx, "events:s2", "other"))

	select {
	case msg := <-ch:
		assert.Equal(t, "events:s1", msg.Channel)
		assert.Equal(t, `{"action":"relic.add"}`, msg.Payload)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
	assert.Empty(t, ch)
}

func TestPubSubUnsubscribe(t *testing.T) {
	ps := NewPubSub(16)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "a", "b")
	require.NoError(t, err)
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	require.NoError(t, ps.Publish(ctx, "a", "after"))
	assert.Empty(t, ps.subscribers)
}

func TestPubSubDropsWhenFull(t *testing.T) {
	ps := NewPubSub(1)
	ctx := context.Background()
	ch, cancel, err := ps.Subscribe(ctx, "c")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "c", "1"))
	require.NoError(t, ps.Publish(ctx, "c", "2"))
	msg := <-ch
	assert.Equal(t, "1", msg.Payload)
	assert.Empty(t, ch)
}
