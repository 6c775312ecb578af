package services

import (
	"context"
	"strings"

	"mediation_flow_go/models"
	"mediation_flow_go/repository"
)

type NotificationService struct {
	store repository.Store
	now   Clock
}

func NewNotificationService(store repository.Store, now Clock) *NotificationService {
	return &NotificationService{store: store, now: now.orDefault()}
}

func (s *NotificationService) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if err := s.store.Notifications().Create(ctx, notification); err != nil {
		return NewInternalError("create notification", err)
	}
	return nil
}

func (s *NotificationService) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	notifications, err := s.store.Notifications().ListForRecipient(ctx, recipientID, unreadOnly)
	if err != nil {
		return nil, NewInternalError("list notifications", err)
	}
	return notifications, nil
}

// MarkAsRead stamps a notification owned by recipientID
func (s *NotificationService) MarkAsRead(ctx context.Context, id, recipientID string) error {
	if strings.TrimSpace(id) == "" {
		return NewValidationError("Notification ID is required")
	}
	err := s.store.Notifications().MarkRead(ctx, id, recipientID, s.now())
	return storeError(err, "Notification", id, "mark notification read")
}
