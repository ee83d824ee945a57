package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type OwnedCourse struct {
	CourseID string `bson:"courseId" json:"courseId"`
}

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"`
	Role       string             `bson:"role" json:"role"`
	IsVerified bool               `bson:"isVerified" json:"isVerified"`
	Avatar     Thumbnail          `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Courses    []OwnedCourse      `bson:"courses" json:"courses"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Owns проверяет, куплен ли курс (список покупок лежит в самом документе юзера)
func (u *User) Owns(courseID string) bool {
	for _, c := range u.Courses {
		if c.CourseID == courseID {
			return true
		}
	}
	return false
}

// Ref дает снимок для встраивания в агрегат курса
func (u *User) Ref() UserRef {
	return UserRef{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar.URL,
	}
}
