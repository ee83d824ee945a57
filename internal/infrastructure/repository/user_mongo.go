package repository

import (
	"context"
	"errors"
	"time"

	"lmsplatform/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	// Проверка на дубль по email (уникальный индекс ставится при старте)
	err := r.col.FindOne(ctx, bson.M{"email": user.Email}).Err()
	if err == nil {
		return domain.ErrUserAlreadyExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if user.Courses == nil {
		user.Courses = []domain.OwnedCourse{}
	}
	_, err = r.col.InsertOne(ctx, user)
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	var user domain.User
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id string, avatar domain.Thumbnail) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	_, err = r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"avatar":    avatar,
		"updatedAt": time.Now(),
	}})
	return err
}

// AppendCourse добавляет курс в список покупок юзера
func (r *UserRepository) AppendCourse(ctx context.Context, userID, courseID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	_, err = r.col.UpdateByID(ctx, oid, bson.M{
		"$push": bson.M{"courses": domain.OwnedCourse{CourseID: courseID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	return err
}
