package notify

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skynolimit/topscores/internal/config"
	"github.com/skynolimit/topscores/internal/match"
	"github.com/skynolimit/topscores/internal/profile"
)

type fakeTransport struct {
	mu     sync.Mutex
	sent   []Notification
	tokens []string
	result Result
}

func (f *fakeTransport) Send(_ context.Context, token string, n Notification) Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	f.tokens = append(f.tokens, token)
	return f.result
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDispatcher(t *testing.T, transport *fakeTransport) (*Dispatcher, *profile.Cache, *MemoryEnvelopeStore) {
	t.Helper()
	profiles := profile.NewCache(nil, nil)
	envelopes := NewMemoryEnvelopeStore()
	cfg := &config.Config{
		APNBundleID:     "com.example.topscores",
		NotificationTTL: time.Hour,
	}
	d := NewDispatcher(profiles, envelopes, transport, cfg, discardLogger())
	d.jitter = func() time.Duration { return 0 }
	t.Cleanup(d.Stop)
	return d, profiles, envelopes
}

func subscriber(deviceID string) *profile.Profile {
	return &profile.Profile{
		DeviceID:  deviceID,
		PushToken: "token-" + deviceID,
		NotificationTypes: map[string]bool{
			TypeKickOff:      true,
			TypeScoreUpdates: true,
		},
		NotificationSpeed: "supersonic",
	}
}

func TestDispatchFiltersRecipients(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{result: Result{Succeeded: true}}
	d, profiles, _ := newTestDispatcher(t, transport)

	require.NoError(t, profiles.Put(ctx, subscriber("d1")))

	noToken := subscriber("d2")
	noToken.PushToken = ""
	require.NoError(t, profiles.Put(ctx, noToken))

	optedOut := subscriber("d3")
	optedOut.NotificationTypes = map[string]bool{TypeKickOff: false}
	require.NoError(t, profiles.Put(ctx, optedOut))

	m := &match.Match{ID: "m1", InterestedUsers: []string{"d1", "d2", "d3", "unknown"}}
	d.Dispatch(ctx, m, Message{Title: "Kick off!", Type: TypeKickOff})

	require.Eventually(t, func() bool { return transport.count() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"token-d1"}, transport.tokens)
	assert.Equal(t, "m1", transport.sent[0].ThreadID)
	assert.Equal(t, "com.example.topscores", transport.sent[0].Topic)
	assert.Equal(t, "default", transport.sent[0].Sound)
}

func TestDispatchSuppressesDuplicates(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{result: Result{Succeeded: true}}
	d, profiles, _ := newTestDispatcher(t, transport)

	require.NoError(t, profiles.Put(ctx, subscriber("d1")))

	m := &match.Match{ID: "m1", InterestedUsers: []string{"d1"}}
	msg := Message{Title: "Goal update: France", Type: TypeScoreUpdates}

	d.Dispatch(ctx, m, msg)
	require.Eventually(t, func() bool { return transport.count() == 1 },
		time.Second, 5*time.Millisecond)

	// Identical content to the same device and thread collapses.
	d.Dispatch(ctx, m, msg)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, transport.count())

	// Different content is a new delivery.
	d.Dispatch(ctx, m, Message{Title: "Goal update: Brazil", Type: TypeScoreUpdates})
	require.Eventually(t, func() bool { return transport.count() == 2 },
		time.Second, 5*time.Millisecond)
}

func TestDispatchFailedSendRecordedNotRetried(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{result: Result{Succeeded: false, FailureDetail: "bad device token"}}
	d, profiles, envelopes := newTestDispatcher(t, transport)

	require.NoError(t, profiles.Put(ctx, subscriber("d1")))

	m := &match.Match{ID: "m1", InterestedUsers: []string{"d1"}}
	msg := Message{Title: "Kick off!", Type: TypeKickOff}
	d.Dispatch(ctx, m, msg)
	require.Eventually(t, func() bool { return transport.count() == 1 },
		time.Second, 5*time.Millisecond)

	env, err := envelopes.Get(ctx, DedupKey("d1", "m1", msg))
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.False(t, env.Sent)
	assert.Equal(t, "bad device token", env.Result)
	assert.NotEmpty(t, env.AttemptID)

	// No retry timer exists for the failed attempt.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, transport.count())
}

func TestDispatchDistinctMessagesScheduleIndependently(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{result: Result{Succeeded: true}}
	d, profiles, _ := newTestDispatcher(t, transport)

	slow := subscriber("d1")
	slow.NotificationSpeed = "slow"
	slow.NotificationTypes[TypeHalfTime] = true
	require.NoError(t, profiles.Put(ctx, slow))

	m := &match.Match{ID: "m1", InterestedUsers: []string{"d1"}}
	d.Dispatch(ctx, m, Message{Title: "Goal update: France", Type: TypeScoreUpdates})
	d.Dispatch(ctx, m, Message{Title: "🕒 Half time: France  1 - 0  Brazil", Type: TypeHalfTime})

	// Both stay pending; the half-time message must not cancel the goal.
	assert.Equal(t, 2, d.timers.Len())

	// Re-dispatching identical content replaces its own pending task only.
	d.Dispatch(ctx, m, Message{Title: "Goal update: France", Type: TypeScoreUpdates})
	assert.Equal(t, 2, d.timers.Len())
}

func TestDispatchGoalBeforeHalfTimeBothDeliver(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{result: Result{Succeeded: true}}
	d, profiles, _ := newTestDispatcher(t, transport)

	p := subscriber("d1")
	p.NotificationTypes[TypeHalfTime] = true
	require.NoError(t, profiles.Put(ctx, p))

	m := &match.Match{ID: "m1", InterestedUsers: []string{"d1"}}
	d.Dispatch(ctx, m, Message{Title: "Goal update: France", Type: TypeScoreUpdates})
	d.Dispatch(ctx, m, Message{Title: "🕒 Half time: France  1 - 0  Brazil", Type: TypeHalfTime})

	require.Eventually(t, func() bool { return transport.count() == 2 },
		time.Second, 5*time.Millisecond)
	titles := []string{transport.sent[0].Message.Title, transport.sent[1].Message.Title}
	assert.Contains(t, titles, "Goal update: France")
	assert.Contains(t, titles, "🕒 Half time: France  1 - 0  Brazil")
}

func TestSendTest(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{result: Result{Succeeded: true}}
	d, profiles, _ := newTestDispatcher(t, transport)

	assert.False(t, d.SendTest(ctx, "unknown"))

	require.NoError(t, profiles.Put(ctx, subscriber("d1")))
	assert.True(t, d.SendTest(ctx, "d1"))
	require.Equal(t, 1, transport.count())
	assert.Equal(t, "Test notification", transport.sent[0].Message.Title)
	assert.Equal(t, TypeTest, transport.sent[0].ThreadID)
}

func TestDedupKeyStability(t *testing.T) {
	msg := Message{Title: "Kick off!", Body: "Match started: A vs B", Type: TypeKickOff}

	assert.Equal(t, DedupKey("d1", "m1", msg), DedupKey("d1", "m1", msg))
	assert.NotEqual(t, DedupKey("d1", "m1", msg), DedupKey("d2", "m1", msg))
	assert.NotEqual(t, DedupKey("d1", "m1", msg), DedupKey("d1", "m2", msg))
}
