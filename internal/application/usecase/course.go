package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lmsplatform/internal/domain"
	"lmsplatform/internal/infrastructure/cache"
	"lmsplatform/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Контракты потребляемых зависимостей. Реализации: mongo/redis/sendgrid/
// cloudinary/vdocipher, в тестах подставляются фейки.

type CourseStore interface {
	FindByID(ctx context.Context, id string) (*domain.Course, error)
	FindByIDSanitized(ctx context.Context, id string) (*domain.Course, error)
	FindAllSanitized(ctx context.Context) ([]domain.Course, error)
	FindAll(ctx context.Context) ([]domain.Course, error)
	Create(ctx context.Context, course *domain.Course) error
	UpdateByID(ctx context.Context, id string, upd domain.CourseUpdate) (*domain.Course, error)
	Save(ctx context.Context, course *domain.Course) error
	IncrementPurchased(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type CourseCache interface {
	GetCourse(ctx context.Context, key string) (*domain.Course, bool, error)
	SetCourse(ctx context.Context, key string, course *domain.Course, ttl time.Duration) error
	GetCourseList(ctx context.Context, key string) ([]domain.Course, bool, error)
	SetCourseList(ctx context.Context, key string, courses []domain.Course, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type NotificationSink interface {
	Record(ctx context.Context, userID, title, message string) error
}

type Mailer interface {
	SendQuestionReply(toEmail, name, contentTitle string) error
}

type MediaHost interface {
	Upload(ctx context.Context, folder, file string) (domain.Thumbnail, error)
	Destroy(ctx context.Context, publicID string) error
}

type VideoHost interface {
	GenerateOTP(ctx context.Context, videoID string) (map[string]interface{}, error)
}

type CourseUseCase struct {
	store    CourseStore
	cache    CourseCache
	notifier NotificationSink
	mailer   Mailer
	media    MediaHost
	video    VideoHost
	log      *logger.Logger
}

func NewCourseUseCase(
	store CourseStore,
	cc CourseCache,
	notifier NotificationSink,
	mailer Mailer,
	media MediaHost,
	video VideoHost,
	log *logger.Logger,
) *CourseUseCase {
	return &CourseUseCase{
		store:    store,
		cache:    cc,
		notifier: notifier,
		mailer:   mailer,
		media:    media,
		video:    video,
		log:      log,
	}
}

// cachedCourse сводит cache-aside для одиночного курса в одну точку:
// промах -> загрузка -> запись в кеш. Порядок никогда не обходится вручную.
func (uc *CourseUseCase) cachedCourse(
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(context.Context) (*domain.Course, error),
) (*domain.Course, error) {
	if course, ok, err := uc.cache.GetCourse(ctx, key); err != nil {
		return nil, err
	} else if ok {
		return course, nil
	}

	course, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetCourse(ctx, key, course, ttl); err != nil {
		return nil, err
	}
	return course, nil
}

// recache делает write-through после мутации: сначала save, потом свежий
// (очищенный) снимок в кеш на 7 дней.
func (uc *CourseUseCase) recache(ctx context.Context, course *domain.Course) error {
	if err := uc.store.Save(ctx, course); err != nil {
		return err
	}
	return uc.cache.SetCourse(ctx, course.ID.Hex(), course.Sanitized(), cache.SingleCourseTTL)
}

// GetCourse отдает публичную карточку курса без видео/вопросов/подсказок
func (uc *CourseUseCase) GetCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	return uc.cachedCourse(ctx, courseID, cache.SingleCourseTTL, func(ctx context.Context) (*domain.Course, error) {
		return uc.store.FindByIDSanitized(ctx, courseID)
	})
}

// GetCourses отдает публичный список, кешируется коротко: меняется чаще
func (uc *CourseUseCase) GetCourses(ctx context.Context) ([]domain.Course, error) {
	if courses, ok, err := uc.cache.GetCourseList(ctx, cache.KeyAllCourses); err != nil {
		return nil, err
	} else if ok {
		return courses, nil
	}

	courses, err := uc.store.FindAllSanitized(ctx)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetCourseList(ctx, cache.KeyAllCourses, courses, cache.CourseListTTL); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetCourseContent отдает полный контент купившему. Кеш не используется:
// путь редкий и должен видеть самый свежий контент.
func (uc *CourseUseCase) GetCourseContent(ctx context.Context, courseID string, user *domain.User) ([]domain.ContentItem, error) {
	if !user.Owns(courseID) {
		return nil, domain.ErrNotEligible
	}
	course, err := uc.store.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return course.CourseData, nil
}

type AddQuestionInput struct {
	Question  string `json:"question" binding:"required"`
	CourseID  string `json:"courseId" binding:"required"`
	ContentID string `json:"contentId" binding:"required"`
}

func (uc *CourseUseCase) AddQuestion(ctx context.Context, user *domain.User, in AddQuestionInput) (*domain.Course, error) {
	if !primitive.IsValidObjectID(in.ContentID) {
		return nil, domain.ErrInvalidContentID
	}

	course, err := uc.store.FindByID(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}

	content := course.FindContent(in.ContentID)
	if content == nil {
		return nil, domain.ErrInvalidContentID
	}

	content.Questions = append(content.Questions, domain.Question{
		ID:       primitive.NewObjectID(),
		User:     user.Ref(),
		Question: in.Question,
		Replies:  []domain.Answer{},
	})

	if err := uc.notifier.Record(ctx, user.ID.Hex(), "New Question Received",
		fmt.Sprintf("You have a new question in %s", content.Title)); err != nil {
		return nil, err
	}

	if err := uc.recache(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

type AddAnswerInput struct {
	Answer     string `json:"answer" binding:"required"`
	CourseID   string `json:"courseId" binding:"required"`
	ContentID  string `json:"contentId" binding:"required"`
	QuestionID string `json:"questionId" binding:"required"`
}

func (uc *CourseUseCase) AddAnswer(ctx context.Context, user *domain.User, in AddAnswerInput) (*domain.Course, error) {
	if !primitive.IsValidObjectID(in.CourseID) || !primitive.IsValidObjectID(in.ContentID) {
		return nil, domain.ErrInvalidContentID
	}

	course, err := uc.store.FindByID(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}

	content := course.FindContent(in.ContentID)
	if content == nil {
		return nil, domain.ErrInvalidContentID
	}

	question := content.FindQuestion(in.QuestionID)
	if question == nil {
		return nil, domain.ErrInvalidQuestionID
	}

	now := time.Now()
	question.Replies = append(question.Replies, domain.Answer{
		ID:        primitive.NewObjectID(),
		User:      user.Ref(),
		Answer:    in.Answer,
		CreatedAt: now,
		UpdatedAt: now,
	})

	if err := uc.recache(ctx, course); err != nil {
		return nil, err
	}

	if user.ID == question.User.ID {
		// Сам себе ответил, только нотификация
		if err := uc.notifier.Record(ctx, user.ID.Hex(), "New Question Reply Received",
			fmt.Sprintf("You have a new question reply in %s", content.Title)); err != nil {
			return nil, err
		}
	} else {
		// Документ уже сохранен; упавшее письмо все равно отдаем как ошибку запроса
		if err := uc.mailer.SendQuestionReply(question.User.Email, question.User.Name, content.Title); err != nil {
			uc.log.Error("question reply mail failed", "courseId", in.CourseID, "err", err)
			return nil, err
		}
	}

	return course, nil
}

type AddReviewInput struct {
	Review string  `json:"review" binding:"required"`
	Rating float64 `json:"rating" binding:"required"`
}

func (uc *CourseUseCase) AddReview(ctx context.Context, user *domain.User, courseID string, in AddReviewInput) (*domain.Course, error) {
	if !user.Owns(courseID) {
		return nil, domain.ErrNotEligible
	}

	course, err := uc.store.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	course.Reviews = append(course.Reviews, domain.Review{
		ID:      primitive.NewObjectID(),
		User:    user.Ref(),
		Rating:  in.Rating,
		Comment: in.Review,
	})
	course.RecalcRating()

	if err := uc.recache(ctx, course); err != nil {
		return nil, err
	}

	if err := uc.notifier.Record(ctx, user.ID.Hex(), "New Review Received",
		fmt.Sprintf("%s has given a review in %s", user.Name, course.Name)); err != nil {
		return nil, err
	}
	return course, nil
}

type AddReviewReplyInput struct {
	Comment  string `json:"comment" binding:"required"`
	CourseID string `json:"courseId" binding:"required"`
	ReviewID string `json:"reviewId" binding:"required"`
}

// AddReviewReply добавляет ответ админа на отзыв. Нотификация здесь не создается.
func (uc *CourseUseCase) AddReviewReply(ctx context.Context, user *domain.User, in AddReviewReplyInput) (*domain.Course, error) {
	course, err := uc.store.FindByID(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}

	review := course.FindReview(in.ReviewID)
	if review == nil {
		return nil, domain.ErrReviewNotFound
	}

	if review.Replies == nil {
		review.Replies = []domain.ReviewReply{}
	}
	now := time.Now()
	review.Replies = append(review.Replies, domain.ReviewReply{
		ID:        primitive.NewObjectID(),
		User:      user.Ref(),
		Comment:   in.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	})

	if err := uc.recache(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

type ContentItemInput struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	VideoURL     string        `json:"videoUrl"`
	VideoSection string        `json:"videoSection"`
	VideoLength  int           `json:"videoLength"`
	Links        []domain.Link `json:"links"`
	Suggestion   string        `json:"suggestion"`
}

type CourseInput struct {
	Name           string             `json:"name" binding:"required"`
	Description    string             `json:"description" binding:"required"`
	Price          float64            `json:"price" binding:"required"`
	EstimatedPrice float64            `json:"estimatedPrice"`
	Thumbnail      string             `json:"thumbnail"`
	Tags           string             `json:"tags"`
	Level          string             `json:"level"`
	DemoURL        string             `json:"demoUrl"`
	CourseData     []ContentItemInput `json:"courseData"`
}

func (in CourseInput) contentItems() []domain.ContentItem {
	items := make([]domain.ContentItem, 0, len(in.CourseData))
	for _, ci := range in.CourseData {
		items = append(items, domain.ContentItem{
			ID:           primitive.NewObjectID(),
			Title:        ci.Title,
			Description:  ci.Description,
			VideoURL:     ci.VideoURL,
			VideoSection: ci.VideoSection,
			VideoLength:  ci.VideoLength,
			Links:        ci.Links,
			Suggestion:   ci.Suggestion,
			Questions:    []domain.Question{},
		})
	}
	return items
}

// Create создает новый курс. Кеш не трогаем: список доживет свой TTL.
func (uc *CourseUseCase) Create(ctx context.Context, in CourseInput) (*domain.Course, error) {
	course := &domain.Course{
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		EstimatedPrice: in.EstimatedPrice,
		Tags:           in.Tags,
		Level:          in.Level,
		DemoURL:        in.DemoURL,
		CourseData:     in.contentItems(),
		Reviews:        []domain.Review{},
	}

	if in.Thumbnail != "" {
		thumb, err := uc.media.Upload(ctx, "courses", in.Thumbnail)
		if err != nil {
			return nil, err
		}
		course.Thumbnail = thumb
	}

	if err := uc.store.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// Edit делает частичное обновление. Инвалидация кеша ВСЕГДА до мутации;
// write-through здесь нет, следующий read заполнит кеш сам.
func (uc *CourseUseCase) Edit(ctx context.Context, courseID string, in CourseInput) (*domain.Course, error) {
	if err := uc.cache.Del(ctx, courseID); err != nil {
		return nil, err
	}

	current, err := uc.store.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	upd := domain.CourseUpdate{}
	if in.Name != "" {
		upd.Name = &in.Name
	}
	if in.Description != "" {
		upd.Description = &in.Description
	}
	if in.Price != 0 {
		upd.Price = &in.Price
	}
	if in.EstimatedPrice != 0 {
		upd.EstimatedPrice = &in.EstimatedPrice
	}
	if in.Tags != "" {
		upd.Tags = &in.Tags
	}
	if in.Level != "" {
		upd.Level = &in.Level
	}
	if in.DemoURL != "" {
		upd.DemoURL = &in.DemoURL
	}
	if len(in.CourseData) > 0 {
		upd.CourseData = in.contentItems()
	}

	switch {
	case in.Thumbnail == "":
		// Обложку не присылали, не трогаем
	case strings.HasPrefix(in.Thumbnail, "https"):
		// Уже захощенная ссылка, оставляем текущую запись как есть
		thumb := current.Thumbnail
		upd.Thumbnail = &thumb
	default:
		// Новая картинка: сносим старую, заливаем свежую
		if current.Thumbnail.PublicID != "" {
			if err := uc.media.Destroy(ctx, current.Thumbnail.PublicID); err != nil {
				return nil, err
			}
		}
		thumb, err := uc.media.Upload(ctx, "courses", in.Thumbnail)
		if err != nil {
			return nil, err
		}
		upd.Thumbnail = &thumb
	}

	return uc.store.UpdateByID(ctx, courseID, upd)
}

func (uc *CourseUseCase) Delete(ctx context.Context, courseID string) error {
	// Проверяем существование до каких-либо побочных действий:
	// на несуществующий id кеш не трогаем вообще
	if _, err := uc.store.FindByID(ctx, courseID); err != nil {
		return err
	}
	if err := uc.store.Delete(ctx, courseID); err != nil {
		return err
	}
	return uc.cache.Del(ctx, courseID)
}

// GetAdminCourses отдает полный список без кеша и без вырезания полей
func (uc *CourseUseCase) GetAdminCourses(ctx context.Context) ([]domain.Course, error) {
	return uc.store.FindAll(ctx)
}

func (uc *CourseUseCase) GenerateVideoOTP(ctx context.Context, videoID string) (map[string]interface{}, error) {
	return uc.video.GenerateOTP(ctx, videoID)
}
