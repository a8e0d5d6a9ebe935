// Package notify turns match change events into typed push messages and
// delivers them to interested devices.
//
// Pipeline: change events → classify → resolve recipients → per-recipient
// delayed delivery → dedup check → reserve envelope → transport send →
// finalize envelope. Envelopes are persisted through a collaborator store so
// duplicate suppression survives restarts; the reserve-then-finalize
// sequence narrows but does not eliminate the duplicate-send race across
// instances, which is an accepted trade-off.
package notify

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Message types. Users enable each independently in their preferences.
const (
	TypeKickOff      = "kick_off"
	TypeScoreUpdates = "score_updates"
	TypeHalfTime     = "half_time"
	TypeFullTime     = "full_time"
	TypeTest         = "test_notification"
)

// Message is a classified, user-facing notification payload.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Type  string `json:"type"`
}

// Notification is the unit handed to the push transport. ThreadID groups
// notifications for client-side display; for match updates it is the match ID.
type Notification struct {
	Message  Message       `json:"message"`
	ThreadID string        `json:"threadId"`
	Sound    string        `json:"sound"`
	Topic    string        `json:"topic"`
	TTL      time.Duration `json:"-"`
}

// Result is the outcome of a transport send.
type Result struct {
	Succeeded     bool
	FailureDetail string
}

// PushTransport is the delivery collaborator.
type PushTransport interface {
	Send(ctx context.Context, token string, n Notification) Result
}

// Envelope records one delivery attempt, keyed by dedup key. Persisted
// before and after the transport call (reserve, then finalize).
type Envelope struct {
	Key         string    `json:"key"`
	DeviceID    string    `json:"deviceId"`
	ThreadID    string    `json:"threadId"`
	Token       string    `json:"token"`
	Message     Message   `json:"message"`
	Sent        bool      `json:"sent"`
	AttemptID   string    `json:"attemptId"`
	AttemptedAt time.Time `json:"attemptedAt"`
	Result      string    `json:"result,omitempty"`
	TTLSeconds  int       `json:"ttlSeconds"`
}

// EnvelopeStore is the dedup persistence collaborator.
type EnvelopeStore interface {
	Get(ctx context.Context, key string) (*Envelope, error)
	Set(ctx context.Context, e *Envelope) error
	List(ctx context.Context, limit int) ([]*Envelope, error)
}

// DedupKey derives the envelope key from the recipient, the thread and the
// message content, so identical notifications to the same device collapse.
func DedupKey(deviceID, threadID string, msg Message) string {
	payload, _ := json.Marshal(msg)
	sum := md5.Sum([]byte(deviceID + "|" + threadID + "|" + string(payload)))
	return hex.EncodeToString(sum[:])
}
