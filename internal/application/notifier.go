package application

import (
	"context"
	"errors"
	"log/slog"

	"smartthingies/internal/domain"
)

// Notifier shows a user-facing notice.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ string) error {
	return nil
}

// FanoutNotifier delivers each notice to every notifier, returning the first error.
type FanoutNotifier []Notifier

func (f FanoutNotifier) Notify(ctx context.Context, message string) error {
	var first error
	for _, n := range f {
		if err := n.Notify(ctx, message); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func notify(ctx context.Context, n Notifier, logger *slog.Logger, message string) {
	if err := n.Notify(ctx, message); err != nil {
		logger.Error("notifying user", "error", err)
	}
}

// userMessage picks the text to show for err.
func userMessage(err error) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return err.Error()
}
