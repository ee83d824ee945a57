package repository

import (
	"context"
	"errors"
	"time"

	"lmsplatform/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Поля, которые вырезаются из публичных выборок
var sanitizedProjection = bson.M{
	"courseData.videoUrl":   0,
	"courseData.suggestion": 0,
	"courseData.questions":  0,
	"courseData.links":      0,
}

type CourseRepository struct {
	col *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{col: db.Collection("courses")}
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*domain.Course, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCourseNotFound
	}

	var course domain.Course
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&course)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindByIDSanitized(ctx context.Context, id string) (*domain.Course, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCourseNotFound
	}

	var course domain.Course
	err = r.col.FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(sanitizedProjection)).Decode(&course)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindAllSanitized(ctx context.Context) ([]domain.Course, error) {
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetProjection(sanitizedProjection))
	if err != nil {
		return nil, err
	}
	var courses []domain.Course
	if err := cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// FindAll отдает полную выборку для админки, свежие сверху
func (r *CourseRepository) FindAll(ctx context.Context) ([]domain.Course, error) {
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var courses []domain.Course
	if err := cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	if course.ID.IsZero() {
		course.ID = primitive.NewObjectID()
	}
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, course)
	return err
}

// UpdateByID делает частичный $set и возвращает обновленный документ
func (r *CourseRepository) UpdateByID(ctx context.Context, id string, upd domain.CourseUpdate) (*domain.Course, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCourseNotFound
	}

	set := bson.M{"updatedAt": time.Now()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.EstimatedPrice != nil {
		set["estimatedPrice"] = *upd.EstimatedPrice
	}
	if upd.Tags != nil {
		set["tags"] = *upd.Tags
	}
	if upd.Level != nil {
		set["level"] = *upd.Level
	}
	if upd.DemoURL != nil {
		set["demoUrl"] = *upd.DemoURL
	}
	if upd.Thumbnail != nil {
		set["thumbnail"] = *upd.Thumbnail
	}
	if upd.CourseData != nil {
		set["courseData"] = upd.CourseData
	}

	var course domain.Course
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&course)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Save атомарно заменяет весь документ после мутации вложенных массивов
func (r *CourseRepository) Save(ctx context.Context, course *domain.Course) error {
	course.UpdatedAt = time.Now()
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": course.ID}, course)
	return err
}

func (r *CourseRepository) IncrementPurchased(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrCourseNotFound
	}
	_, err = r.col.UpdateByID(ctx, oid, bson.M{"$inc": bson.M{"purchased": 1}})
	return err
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrCourseNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}
