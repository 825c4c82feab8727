package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger emits structured audit records for security-relevant actions.
// Audit lines never contain passwords, hashes, or token strings.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, userID, action, resource, resourceID, status string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogRegistration(ctx context.Context, userID, status string) {
	al.LogAction(ctx, userID, "register", "user", userID, status)
}

func (al *Logger) LogLogin(ctx context.Context, userID, status string) {
	al.LogAction(ctx, userID, "login", "user", userID, status)
}

func (al *Logger) LogItemMutation(ctx context.Context, userID, action, itemID, status string) {
	al.LogAction(ctx, userID, action, "item", itemID, status)
}
