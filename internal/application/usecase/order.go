package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lmsplatform/internal/domain"
	"lmsplatform/internal/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	FindAll(ctx context.Context) ([]domain.Order, error)
}

type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, id string, avatar domain.Thumbnail) error
	AppendCourse(ctx context.Context, userID, courseID string) error
}

type OrderMailer interface {
	SendOrderConfirmation(toEmail string, receipt domain.OrderReceipt) error
}

type OrderUseCase struct {
	orders   OrderStore
	users    UserStore
	courses  CourseStore
	mailer   OrderMailer
	notifier NotificationSink
	log      *logger.Logger
}

func NewOrderUseCase(
	orders OrderStore,
	users UserStore,
	courses CourseStore,
	mailer OrderMailer,
	notifier NotificationSink,
	log *logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orders:   orders,
		users:    users,
		courses:  courses,
		mailer:   mailer,
		notifier: notifier,
		log:      log,
	}
}

type CreateOrderInput struct {
	CourseID string          `json:"courseId" binding:"required"`
	Payment  json.RawMessage `json:"payment_info"`
}

func (uc *OrderUseCase) Create(ctx context.Context, user *domain.User, in CreateOrderInput) (*domain.Order, error) {
	if user.Owns(in.CourseID) {
		return nil, domain.ErrAlreadyPurchased
	}

	course, err := uc.courses.FindByID(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:       uuid.New(),
		UserID:   user.ID.Hex(),
		CourseID: in.CourseID,
		Payment:  datatypes.JSON(in.Payment),
	}
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	// Заказ уже записан; упавшее письмо отдаем как ошибку запроса
	receipt := domain.OrderReceipt{
		OrderID:    order.ID.String(),
		CourseName: course.Name,
		Price:      course.Price,
		Date:       time.Now(),
	}
	if err := uc.mailer.SendOrderConfirmation(user.Email, receipt); err != nil {
		uc.log.Error("order confirmation mail failed", "orderId", order.ID.String(), "err", err)
		return nil, err
	}

	if err := uc.users.AppendCourse(ctx, user.ID.Hex(), in.CourseID); err != nil {
		return nil, err
	}
	if err := uc.courses.IncrementPurchased(ctx, in.CourseID); err != nil {
		return nil, err
	}

	if err := uc.notifier.Record(ctx, user.ID.Hex(), "New Order",
		fmt.Sprintf("You have a new order from %s", course.Name)); err != nil {
		return nil, err
	}

	return order, nil
}

func (uc *OrderUseCase) GetAll(ctx context.Context) ([]domain.Order, error) {
	return uc.orders.FindAll(ctx)
}
