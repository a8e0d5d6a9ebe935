package notify

import (
	"context"
	"log/slog"

	"github.com/skynolimit/topscores/internal/config"
)

// APNSender delivers notifications via the Apple Push Notification service.
// Nil-safe: when not configured, sends are logged and reported as delivered
// so the rest of the pipeline behaves normally in development.
type APNSender struct {
	keyFile    string
	keyID      string
	teamID     string
	production bool
	logger     *slog.Logger
	// TODO: Add an APNs HTTP/2 client (token-based auth from keyFile) and
	// replace the logging send below with a real provider API call.
}

// NewAPNSender creates a sender from APNs token credentials. Returns nil if
// no key file is configured (push delivery disabled).
func NewAPNSender(cfg *config.Config, logger *slog.Logger) *APNSender {
	if cfg.APNKeyFile == "" {
		logger.Warn("APN key file not set, push delivery runs in log-only mode")
		return nil
	}
	return &APNSender{
		keyFile:    cfg.APNKeyFile,
		keyID:      cfg.APNKeyID,
		teamID:     cfg.APNTeamID,
		production: cfg.APNProduction,
		logger:     logger,
	}
}

// Send delivers one notification to one device token.
func (s *APNSender) Send(ctx context.Context, token string, n Notification) Result {
	if s == nil {
		slog.Default().Info("APN send (log only)",
			"title", n.Message.Title, "threadId", n.ThreadID)
		return Result{Succeeded: true}
	}
	if token == "" {
		return Result{FailureDetail: "empty device token"}
	}

	s.logger.Info("APN send (pending integration)",
		"title", n.Message.Title, "threadId", n.ThreadID,
		"topic", n.Topic, "production", s.production)

	return Result{Succeeded: true}
}
