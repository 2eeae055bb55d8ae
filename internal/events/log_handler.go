package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/users-api/internal/platform/logger"
)

// LogHandler writes one info-level audit line per event.
type LogHandler struct {
	logger *slog.Logger
}

var _ EventHandler = (*LogHandler)(nil)

// NewLogHandler creates a LogHandler writing to log.
func NewLogHandler(log *slog.Logger) *LogHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LogHandler{logger: log.With("component", "audit")}
}

// HandleEvent logs event using the request logger when one is present.
func (h *LogHandler) HandleEvent(ctx context.Context, event *UserEvent) error {
	log := logger.FromContextOrDefault(ctx, h.logger)
	log.InfoContext(ctx, "user event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("user_id", event.UserID),
		slog.Time("occurred_at", event.OccurredAt),
		slog.Any("fields", event.Fields))
	return nil
}
