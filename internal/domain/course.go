package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrReviewNotFound    = errors.New("review not found")
	ErrInvalidContentID  = errors.New("invalid content id")
	ErrInvalidQuestionID = errors.New("invalid question id")
	ErrNotEligible       = errors.New("you are not eligible to access this course")
)

// Снимок автора, встраивается в вопросы/ответы/отзывы вместо ссылки на users
type UserRef struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	Name   string             `bson:"name" json:"name"`
	Email  string             `bson:"email" json:"email"`
	Avatar string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

type Thumbnail struct {
	PublicID string `bson:"public_id,omitempty" json:"public_id,omitempty"`
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
}

type Link struct {
	Title string `bson:"title" json:"title"`
	URL   string `bson:"url" json:"url"`
}

type Answer struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	User      UserRef            `bson:"user" json:"user"`
	Answer    string             `bson:"answer" json:"answer"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Question struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	User     UserRef            `bson:"user" json:"user"`
	Question string             `bson:"question" json:"question"`
	Replies  []Answer           `bson:"questionReplies" json:"questionReplies"`
}

type ReviewReply struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	User      UserRef            `bson:"user" json:"user"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Review struct {
	ID      primitive.ObjectID `bson:"_id" json:"_id"`
	User    UserRef            `bson:"user" json:"user"`
	Rating  float64            `bson:"rating" json:"rating"`
	Comment string             `bson:"comment" json:"comment"`
	Replies []ReviewReply      `bson:"commentReplies,omitempty" json:"commentReplies,omitempty"`
}

type ContentItem struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	VideoURL     string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	VideoSection string             `bson:"videoSection" json:"videoSection"`
	VideoLength  int                `bson:"videoLength" json:"videoLength"`
	Links        []Link             `bson:"links,omitempty" json:"links,omitempty"`
	Suggestion   string             `bson:"suggestion,omitempty" json:"suggestion,omitempty"`
	Questions    []Question         `bson:"questions,omitempty" json:"questions,omitempty"`
}

// Корневой агрегат курса. Контент, вопросы, ответы и отзывы живут внутри
// документа и сохраняются одной записью (last-writer-wins на уровне save).
type Course struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description" json:"description"`
	Price          float64            `bson:"price" json:"price"`
	EstimatedPrice float64            `bson:"estimatedPrice,omitempty" json:"estimatedPrice,omitempty"`
	Thumbnail      Thumbnail          `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Tags           string             `bson:"tags" json:"tags"`
	Level          string             `bson:"level" json:"level"`
	DemoURL        string             `bson:"demoUrl" json:"demoUrl"`
	CourseData     []ContentItem      `bson:"courseData" json:"courseData"`
	Reviews        []Review           `bson:"reviews" json:"reviews"`
	Ratings        float64            `bson:"ratings" json:"ratings"`
	Purchased      int                `bson:"purchased" json:"purchased"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *Course) FindContent(contentID string) *ContentItem {
	for i := range c.CourseData {
		if c.CourseData[i].ID.Hex() == contentID {
			return &c.CourseData[i]
		}
	}
	return nil
}

func (c *Course) FindReview(reviewID string) *Review {
	for i := range c.Reviews {
		if c.Reviews[i].ID.Hex() == reviewID {
			return &c.Reviews[i]
		}
	}
	return nil
}

func (ci *ContentItem) FindQuestion(questionID string) *Question {
	for i := range ci.Questions {
		if ci.Questions[i].ID.Hex() == questionID {
			return &ci.Questions[i]
		}
	}
	return nil
}

// RecalcRating пересчитывает средний рейтинг по всем отзывам
func (c *Course) RecalcRating() {
	if len(c.Reviews) == 0 {
		c.Ratings = 0
		return
	}
	var sum float64
	for _, r := range c.Reviews {
		sum += r.Rating
	}
	c.Ratings = sum / float64(len(c.Reviews))
}

// Sanitized возвращает копию курса без полей, которые не должны уходить
// неоплатившим пользователям: ссылки на видео, подсказки, вопросы, ссылки.
func (c *Course) Sanitized() *Course {
	out := *c
	out.CourseData = make([]ContentItem, len(c.CourseData))
	for i, item := range c.CourseData {
		item.VideoURL = ""
		item.Suggestion = ""
		item.Questions = nil
		item.Links = nil
		out.CourseData[i] = item
	}
	return &out
}

// Частичное обновление курса (nil = поле не трогаем)
type CourseUpdate struct {
	Name           *string
	Description    *string
	Price          *float64
	EstimatedPrice *float64
	Tags           *string
	Level          *string
	DemoURL        *string
	Thumbnail      *Thumbnail
	CourseData     []ContentItem
}
