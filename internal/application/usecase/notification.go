package usecase

import (
	"context"

	"lmsplatform/internal/domain"
)

type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	FindAll(ctx context.Context) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type NotificationUseCase struct {
	store NotificationStore
}

func NewNotificationUseCase(store NotificationStore) *NotificationUseCase {
	return &NotificationUseCase{store: store}
}

// Record пишет side-effect нотификации из course/order флоу
func (uc *NotificationUseCase) Record(ctx context.Context, userID, title, message string) error {
	return uc.store.Create(ctx, &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Status:  domain.NotificationUnread,
	})
}

func (uc *NotificationUseCase) GetAll(ctx context.Context) ([]domain.Notification, error) {
	return uc.store.FindAll(ctx)
}

// MarkRead помечает нотификацию прочитанной и возвращает свежий список
func (uc *NotificationUseCase) MarkRead(ctx context.Context, id string) ([]domain.Notification, error) {
	if err := uc.store.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	return uc.store.FindAll(ctx)
}
