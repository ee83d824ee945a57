package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrAlreadyPurchased = errors.New("you have already purchased this course")

// Заказ живет в Postgres отдельным агрегатом (append-only)
type Order struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"size:24;index" json:"userId"`
	CourseID  string         `gorm:"size:24;index" json:"courseId"`
	Payment   datatypes.JSON `gorm:"column:payment_info;type:jsonb" json:"payment_info"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Данные для письма-подтверждения
type OrderReceipt struct {
	OrderID    string
	CourseName string
	Price      float64
	Date       time.Time
}
