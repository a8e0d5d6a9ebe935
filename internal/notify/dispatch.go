package notify

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/skynolimit/topscores/internal/config"
	"github.com/skynolimit/topscores/internal/match"
	"github.com/skynolimit/topscores/internal/profile"
	"github.com/skynolimit/topscores/internal/sched"
)

const defaultSound = "default"

// Dispatcher resolves recipients for a classified message and delivers to
// each after their preferred delay. Delivery is at-most-once per dedup key:
// a failed transport call is recorded on the envelope and never retried.
type Dispatcher struct {
	profiles  *profile.Cache
	envelopes EnvelopeStore
	transport PushTransport
	timers    *sched.Timers
	topic     string
	sound     string
	ttl       time.Duration
	logger    *slog.Logger

	jitter func() time.Duration
}

func NewDispatcher(profiles *profile.Cache, envelopes EnvelopeStore, transport PushTransport, cfg *config.Config, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		profiles:  profiles,
		envelopes: envelopes,
		transport: transport,
		timers:    sched.New(),
		topic:     cfg.APNBundleID,
		sound:     defaultSound,
		ttl:       cfg.NotificationTTL,
		logger:    logger,
		// Jitter spreads sends for users on the same speed setting so a
		// popular goal does not hit the transport as a single burst.
		jitter: func() time.Duration {
			return time.Duration(rand.Int64N(int64(config.DefaultDispatchJitterRange)))
		},
	}
}

// Dispatch fans a message out to every interested device that carries a
// push token and has the message type enabled. Each (message, recipient)
// pair gets its own cancellable delayed task, keyed by the dedup key:
// re-dispatching identical content replaces the still-pending task, while
// distinct messages for the same match deliver independently, so a goal
// scored just before half time keeps its own notification.
func (d *Dispatcher) Dispatch(ctx context.Context, m *match.Match, msg Message) {
	for _, deviceID := range m.InterestedUsers {
		p := d.profiles.Get(deviceID)
		if p == nil || !p.HasPushToken() || !p.WantsType(msg.Type) {
			continue
		}
		delay := config.SendDelayFor(p.NotificationSpeed) + d.jitter()
		deviceID, token := deviceID, p.PushToken
		d.timers.Schedule(DedupKey(deviceID, m.ID, msg), delay, func() {
			d.deliver(ctx, deviceID, token, m.ID, msg)
		})
	}
}

// SendTest pushes an immediate test notification, bypassing delay and
// recipient resolution but not deduplication.
func (d *Dispatcher) SendTest(ctx context.Context, deviceID string) bool {
	p := d.profiles.Get(deviceID)
	if p == nil || !p.HasPushToken() {
		d.logger.Warn("Test notification skipped, no push token", "deviceId", deviceID)
		return false
	}
	msg := Message{
		Title: "Test notification",
		Body:  "If you can read this, push notifications are working.",
		Type:  TypeTest,
	}
	return d.deliver(ctx, deviceID, p.PushToken, TypeTest, msg)
}

// Stop cancels all pending delayed deliveries.
func (d *Dispatcher) Stop() {
	d.timers.Stop()
}

func (d *Dispatcher) deliver(ctx context.Context, deviceID, token, threadID string, msg Message) bool {
	key := DedupKey(deviceID, threadID, msg)
	log := d.logger.With("deviceId", deviceID, "threadId", threadID, "type", msg.Type)

	prior, err := d.envelopes.Get(ctx, key)
	if err != nil {
		log.Error("Envelope lookup failed", "error", err)
		return false
	}
	if prior != nil && prior.Sent {
		log.Debug("Duplicate notification suppressed", "key", key)
		return false
	}

	env := &Envelope{
		Key:         key,
		DeviceID:    deviceID,
		ThreadID:    threadID,
		Token:       token,
		Message:     msg,
		AttemptID:   uuid.NewString(),
		AttemptedAt: time.Now().UTC(),
		TTLSeconds:  int(d.ttl.Seconds()),
	}
	if err := d.envelopes.Set(ctx, env); err != nil {
		log.Error("Envelope reserve failed", "error", err)
		return false
	}

	res := d.transport.Send(ctx, token, Notification{
		Message:  msg,
		ThreadID: threadID,
		Sound:    d.sound,
		Topic:    d.topic,
		TTL:      d.ttl,
	})
	env.Sent = res.Succeeded
	env.Result = "ok"
	if !res.Succeeded {
		env.Result = res.FailureDetail
		log.Warn("Push send failed", "detail", res.FailureDetail)
	} else {
		log.Info("Push sent", "title", msg.Title)
	}
	if err := d.envelopes.Set(ctx, env); err != nil {
		log.Error("Envelope finalize failed", "error", err)
	}
	return res.Succeeded
}
