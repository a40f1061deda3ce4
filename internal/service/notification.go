package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/sunu-rekolt/marketplace/internal/models"
	"github.com/sunu-rekolt/marketplace/internal/repo"
	"github.com/sunu-rekolt/marketplace/pkg/logging"
	"github.com/sunu-rekolt/marketplace/pkg/pushclient"
)

const (
	DefaultAlertLimit = 20
	MaxAlertLimit     = 100
)

type Pusher interface {
	Send(ctx context.Context, msg pushclient.Message) (*pushclient.Ticket, error)
}

// AlertStream delivers stored alerts to connected clients.
type AlertStream interface {
	Publish(userID uuid.UUID, v any) (int, error)
}

type NotificationService struct {
	Repo   *repo.GormRepo
	Push   Pusher
	Stream AlertStream
}

// Emit stores alerts, then streams and pushes each one. Only the insert can
// fail the call; delivery problems are logged.
func (s *NotificationService) Emit(ctx context.Context, alerts ...models.Alert) error {
	l := logging.FromContext(ctx).With("svc", "notification.emit")
	if len(alerts) == 0 {
		return nil
	}
	if err := s.Repo.CreateAlerts(ctx, alerts); err != nil {
		l.Error("emit_error", "reason", "cannot store alerts", "error", err)
		return err
	}

	for _, a := range alerts {
		if s.Stream != nil {
			if _, err := s.Stream.Publish(a.UserID, a); err != nil {
				l.Warn("stream_error", "user_id", a.UserID, "error", err)
			}
		}
		if s.Push != nil {
			data := map[string]any{"type": a.Type, "alert_id": a.ID.String()}
			if a.RelatedOrderID != nil {
				data["order_id"] = a.RelatedOrderID.String()
			}
			if a.RelatedProductID != nil {
				data["product_id"] = a.RelatedProductID.String()
			}
			if _, err := s.SendPush(ctx, PushInput{UserID: a.UserID.String(), Title: a.Title, Message: a.Message, Data: data}); err != nil {
				l.Warn("push_error", "user_id", a.UserID, "error", err)
			}
		}
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = DefaultAlertLimit
	}
	if limit > MaxAlertLimit {
		limit = MaxAlertLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListAlerts(ctx, userID, limit, offset)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.Repo.CountUnreadAlerts(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, alertID uuid.UUID) error {
	return fromRepo(s.Repo.MarkAlertRead(ctx, alertID, userID), "Notification introuvable")
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.Repo.MarkAllAlertsRead(ctx, userID)
}

type PushInput struct {
	UserID  string         `json:"user_id"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type PushResult struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Ticket  *pushclient.Ticket `json:"data,omitempty"`
}

const noPushToken = "No push token for user"

// SendPush relays one message to the user's registered device. A token the
// gateway reports as DeviceNotRegistered is cleared.
func (s *NotificationService) SendPush(ctx context.Context, in PushInput) (*PushResult, error) {
	l := logging.FromContext(ctx).With("svc", "notification.push")

	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Message) == "" {
		return nil, fail(ErrValidation, "Missing user_id, title, or message")
	}
	userID, err := uuid.Parse(in.UserID)
	if err != nil {
		return nil, failWrap(ErrValidation, "user_id invalide", err)
	}

	p, err := s.Repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return &PushResult{Message: noPushToken}, nil
		}
		l.Error("push_error", "reason", "cannot load profile", "error", err)
		return nil, err
	}
	if p.ExpoPushToken == nil || *p.ExpoPushToken == "" {
		l.Debug("push_skipped", "user_id", userID, "reason", "no token")
		return &PushResult{Message: noPushToken}, nil
	}
	if s.Push == nil {
		return &PushResult{Message: "push disabled"}, nil
	}

	ticket, err := s.Push.Send(ctx, pushclient.Message{
		To:    *p.ExpoPushToken,
		Title: in.Title,
		Body:  in.Message,
		Data:  in.Data,
	})
	if err != nil {
		if errors.Is(err, pushclient.ErrDeviceNotRegistered) {
			if cerr := s.Repo.SetPushToken(ctx, userID, nil); cerr != nil {
				l.Error("push_error", "reason", "cannot clear token", "error", cerr)
			} else {
				l.Info("push_token_cleared", "user_id", userID)
			}
		}
		return nil, err
	}
	return &PushResult{Success: true, Ticket: ticket}, nil
}
