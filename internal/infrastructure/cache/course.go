package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lmsplatform/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	// Ключ-сентинел для списка всех курсов
	KeyAllCourses = "allCourses"

	// Одиночный курс живет долго, список коротко (чаще меняется)
	SingleCourseTTL = 7 * 24 * time.Hour
	CourseListTTL   = 5 * time.Minute
)

// CourseCache хранит сериализованные снимки курсов с TTL.
// Истечение отдано Redis, сервис его не перепроверяет.
type CourseCache struct {
	client *redis.Client
}

func NewCourseCache(client *redis.Client) *CourseCache {
	return &CourseCache{client: client}
}

func (c *CourseCache) GetCourse(ctx context.Context, key string) (*domain.Course, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var course domain.Course
	if err := json.Unmarshal([]byte(val), &course); err != nil {
		return nil, false, err
	}
	return &course, true, nil
}

func (c *CourseCache) SetCourse(ctx context.Context, key string, course *domain.Course, ttl time.Duration) error {
	data, err := json.Marshal(course)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *CourseCache) GetCourseList(ctx context.Context, key string) ([]domain.Course, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var courses []domain.Course
	if err := json.Unmarshal([]byte(val), &courses); err != nil {
		return nil, false, err
	}
	return courses, true, nil
}

func (c *CourseCache) SetCourseList(ctx context.Context, key string, courses []domain.Course, ttl time.Duration) error {
	data, err := json.Marshal(courses)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *CourseCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
