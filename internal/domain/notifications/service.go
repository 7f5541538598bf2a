package notifications

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Queue runs work off the request path.
type Queue interface {
	Enqueue(jobType string, run func(context.Context) error)
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	Queue       Queue
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer, queue Queue) *Service {
	return &Service{store: store, Mailer: mailer, Queue: queue, DefaultFrom: "no-reply@example.com"}
}

// Notify delivers evt without blocking the caller. Failures are logged and
// never reach the workflow that raised the event.
func (s *Service) Notify(ctx context.Context, evt Event) {
	if s == nil || evt.UserID == "" {
		return
	}
	deliver := func(ctx context.Context) error {
		return s.Create(ctx, evt.UserID, evt.Type, evt.Title, evt.Body)
	}
	if s.Queue == nil {
		if err := deliver(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("notification delivery failed", "type", evt.Type, "userId", evt.UserID, "err", err)
		}
		return
	}
	s.Queue.Enqueue("notify", deliver)
}

func (s *Service) Create(ctx context.Context, userID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, userID, ntype, title, body); err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}

	email, err := s.store.UserEmail(ctx, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, email, title, body); err != nil {
		slog.Warn("notification email send failed", "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.store.CountNotifications(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}
