package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"lmsplatform/internal/domain"
	"lmsplatform/internal/infrastructure/cache"
	"lmsplatform/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- фейки зависимостей ---

type fakeStore struct {
	courses   map[string]*domain.Course
	saveCalls int
	lastSaved *domain.Course
	created   []*domain.Course
	updates   []domain.CourseUpdate
	deleted   []string
	ops       *[]string
}

func newFakeStore(courses ...*domain.Course) *fakeStore {
	s := &fakeStore{courses: map[string]*domain.Course{}}
	for _, c := range courses {
		s.courses[c.ID.Hex()] = c
	}
	return s
}

func (s *fakeStore) trace(op string) {
	if s.ops != nil {
		*s.ops = append(*s.ops, op)
	}
}

func (s *fakeStore) FindByID(ctx context.Context, id string) (*domain.Course, error) {
	s.trace("store.find")
	c, ok := s.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	return c, nil
}

func (s *fakeStore) FindByIDSanitized(ctx context.Context, id string) (*domain.Course, error) {
	c, ok := s.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	return c.Sanitized(), nil
}

func (s *fakeStore) FindAllSanitized(ctx context.Context) ([]domain.Course, error) {
	out := make([]domain.Course, 0, len(s.courses))
	for _, c := range s.courses {
		out = append(out, *c.Sanitized())
	}
	return out, nil
}

func (s *fakeStore) FindAll(ctx context.Context) ([]domain.Course, error) {
	out := make([]domain.Course, 0, len(s.courses))
	for _, c := range s.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (s *fakeStore) Create(ctx context.Context, course *domain.Course) error {
	course.ID = primitive.NewObjectID()
	s.courses[course.ID.Hex()] = course
	s.created = append(s.created, course)
	return nil
}

func (s *fakeStore) UpdateByID(ctx context.Context, id string, upd domain.CourseUpdate) (*domain.Course, error) {
	c, ok := s.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	s.updates = append(s.updates, upd)
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Thumbnail != nil {
		c.Thumbnail = *upd.Thumbnail
	}
	return c, nil
}

func (s *fakeStore) Save(ctx context.Context, course *domain.Course) error {
	s.saveCalls++
	s.lastSaved = course
	s.courses[course.ID.Hex()] = course
	return nil
}

func (s *fakeStore) IncrementPurchased(ctx context.Context, id string) error {
	c, ok := s.courses[id]
	if !ok {
		return domain.ErrCourseNotFound
	}
	c.Purchased++
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.courses[id]; !ok {
		return domain.ErrCourseNotFound
	}
	delete(s.courses, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type cacheEntry struct {
	course *domain.Course
	ttl    time.Duration
}

type fakeCache struct {
	single  map[string]cacheEntry
	lists   map[string][]domain.Course
	listTTL map[string]time.Duration
	delKeys []string
	ops     *[]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		single:  map[string]cacheEntry{},
		lists:   map[string][]domain.Course{},
		listTTL: map[string]time.Duration{},
	}
}

func (f *fakeCache) GetCourse(ctx context.Context, key string) (*domain.Course, bool, error) {
	e, ok := f.single[key]
	if !ok {
		return nil, false, nil
	}
	return e.course, true, nil
}

func (f *fakeCache) SetCourse(ctx context.Context, key string, course *domain.Course, ttl time.Duration) error {
	f.single[key] = cacheEntry{course: course, ttl: ttl}
	return nil
}

func (f *fakeCache) GetCourseList(ctx context.Context, key string) ([]domain.Course, bool, error) {
	l, ok := f.lists[key]
	return l, ok, nil
}

func (f *fakeCache) SetCourseList(ctx context.Context, key string, courses []domain.Course, ttl time.Duration) error {
	f.lists[key] = courses
	f.listTTL[key] = ttl
	return nil
}

func (f *fakeCache) Del(ctx context.Context, key string) error {
	if f.ops != nil {
		*f.ops = append(*f.ops, "cache.del")
	}
	f.delKeys = append(f.delKeys, key)
	delete(f.single, key)
	return nil
}

type notice struct {
	userID, title, message string
}

type fakeNotifier struct {
	notices []notice
}

func (f *fakeNotifier) Record(ctx context.Context, userID, title, message string) error {
	f.notices = append(f.notices, notice{userID, title, message})
	return nil
}

type mailCall struct {
	to, name, contentTitle string
}

type fakeMailer struct {
	sent []mailCall
	err  error
}

func (f *fakeMailer) SendQuestionReply(toEmail, name, contentTitle string) error {
	f.sent = append(f.sent, mailCall{toEmail, name, contentTitle})
	return f.err
}

type fakeMedia struct {
	uploads   []string
	destroyed []string
	thumb     domain.Thumbnail
}

func (f *fakeMedia) Upload(ctx context.Context, folder, file string) (domain.Thumbnail, error) {
	f.uploads = append(f.uploads, file)
	return f.thumb, nil
}

func (f *fakeMedia) Destroy(ctx context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

type fakeVideo struct {
	resp map[string]interface{}
	err  error
}

func (f *fakeVideo) GenerateOTP(ctx context.Context, videoID string) (map[string]interface{}, error) {
	return f.resp, f.err
}

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

type ucFakes struct {
	store    *fakeStore
	cache    *fakeCache
	notifier *fakeNotifier
	mailer   *fakeMailer
	media    *fakeMedia
	video    *fakeVideo
}

func newTestCourseUC(courses ...*domain.Course) (*CourseUseCase, *ucFakes) {
	f := &ucFakes{
		store:    newFakeStore(courses...),
		cache:    newFakeCache(),
		notifier: &fakeNotifier{},
		mailer:   &fakeMailer{},
		media:    &fakeMedia{thumb: domain.Thumbnail{PublicID: "courses/new", URL: "https://cdn/new.png"}},
		video:    &fakeVideo{resp: map[string]interface{}{"otp": "x", "playbackInfo": "y"}},
	}
	uc := NewCourseUseCase(f.store, f.cache, f.notifier, f.mailer, f.media, f.video, testLogger())
	return uc, f
}

func sampleCourse() *domain.Course {
	return &domain.Course{
		ID:    primitive.NewObjectID(),
		Name:  "Go with MongoDB",
		Price: 29,
		Thumbnail: domain.Thumbnail{
			PublicID: "courses/old",
			URL:      "https://cdn/old.png",
		},
		CourseData: []domain.ContentItem{
			{
				ID:         primitive.NewObjectID(),
				Title:      "Intro",
				VideoURL:   "https://video/intro",
				Suggestion: "watch twice",
				Links:      []domain.Link{{Title: "docs", URL: "https://docs"}},
				Questions:  []domain.Question{},
			},
		},
		Reviews: []domain.Review{},
	}
}

func sampleUser(ownedCourseIDs ...string) *domain.User {
	u := &domain.User{
		ID:    primitive.NewObjectID(),
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  domain.RoleUser,
	}
	for _, id := range ownedCourseIDs {
		u.Courses = append(u.Courses, domain.OwnedCourse{CourseID: id})
	}
	return u
}

// --- чтение ---

func TestGetCourse_CacheMissThenHit(t *testing.T) {
	course := sampleCourse()
	uc, f := newTestCourseUC(course)

	got, err := uc.GetCourse(context.Background(), course.ID.Hex())
	require.NoError(t, err)

	// Промах заполнил кеш очищенным снимком на 7 дней
	entry, ok := f.cache.single[course.ID.Hex()]
	require.True(t, ok)
	assert.Equal(t, cache.SingleCourseTTL, entry.ttl)
	assert.Empty(t, got.CourseData[0].VideoURL)
	assert.Empty(t, got.CourseData[0].Suggestion)
	assert.Nil(t, got.CourseData[0].Questions)
	assert.Nil(t, got.CourseData[0].Links)

	// Второй запрос идет мимо стора
	delete(f.store.courses, course.ID.Hex())
	again, err := uc.GetCourse(context.Background(), course.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, got.Name, again.Name)
}

func TestGetCourse_NotFound(t *testing.T) {
	uc, f := newTestCourseUC()

	_, err := uc.GetCourse(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
	assert.Empty(t, f.cache.single)
}

func TestGetCourses_ListCachedShortly(t *testing.T) {
	course := sampleCourse()
	uc, f := newTestCourseUC(course)

	courses, err := uc.GetCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Empty(t, courses[0].CourseData[0].VideoURL)
	assert.Equal(t, cache.CourseListTTL, f.cache.listTTL[cache.KeyAllCourses])

	// Повторный вызов обслуживается кешем
	delete(f.store.courses, course.ID.Hex())
	courses, err = uc.GetCourses(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestGetCourseContent_Eligibility(t *testing.T) {
	course := sampleCourse()
	uc, _ := newTestCourseUC(course)

	_, err := uc.GetCourseContent(context.Background(), course.ID.Hex(), sampleUser())
	assert.ErrorIs(t, err, domain.ErrNotEligible)

	content, err := uc.GetCourseContent(context.Background(), course.ID.Hex(), sampleUser(course.ID.Hex()))
	require.NoError(t, err)
	require.Len(t, content, 1)
	// Купившему отдается полный контент
	assert.Equal(t, "https://video/intro", content[0].VideoURL)
}

// --- вопросы и ответы ---

func TestAddQuestion_AppendsAndNotifies(t *testing.T) {
	course := sampleCourse()
	uc, f := newTestCourseUC(course)
	user := sampleUser(course.ID.Hex())

	got, err := uc.AddQuestion(context.Background(), user, AddQuestionInput{
		Question:  "what is a goroutine?",
		CourseID:  course.ID.Hex(),
		ContentID: course.CourseData[0].ID.Hex(),
	})
	require.NoError(t, err)

	questions := got.CourseData[0].Questions
	require.Len(t, questions, 1)
	last := questions[len(questions)-1]
	assert.Equal(t, "what is a goroutine?", last.Question)
	assert.Equal(t, user.ID, last.User.ID)
	assert.NotNil(t, last.Replies)
	assert.Empty(t, last.Replies)

	assert.Equal(t, 1, f.store.saveCalls)
	require.Len(t, f.notifier.notices, 1)
	assert.Equal(t, "New Question Received", f.notifier.notices[0].title)

	// В кеш ушел очищенный снимок
	entry := f.cache.single[course.ID.Hex()]
	require.NotNil(t, entry.course)
	assert.Empty(t, entry.course.CourseData[0].VideoURL)
	assert.Equal(t, cache.SingleCourseTTL, entry.ttl)
}

func TestAddQuestion_InvalidContent(t *testing.T) {
	course := sampleCourse()
	uc, f := newTestCourseUC(course)
	user := sampleUser(course.ID.Hex())

	_, err := uc.AddQuestion(context.Background(), user, AddQuestionInput{
		Question:  "q",
		CourseID:  course.ID.Hex(),
		ContentID: "not-a-hex-id",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidContentID)

	_, err = uc.AddQuestion(context.Background(), user, AddQuestionInput{
		Question:  "q",
		CourseID:  course.ID.Hex(),
		ContentID: primitive.NewObjectID().Hex(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidContentID)
	assert.Zero(t, f.store.saveCalls)
}

func TestAddAnswer_SelfReplyNotifies(t *testing.T) {
	course := sampleCourse()
	author := sampleUser(course.ID.Hex())
	course.CourseData[0].Questions = []domain.Question{{
		ID:       primitive.NewObjectID(),
		User:     author.Ref(),
		Question: "why?",
		Replies:  []domain.Answer{},
	}}
	uc, f := newTestCourseUC(course)

	_, err := uc.AddAnswer(context.Background(), author, AddAnswerInput{
		Answer:     "because",
		CourseID:   course.ID.Hex(),
		ContentID:  course.CourseData[0].ID.Hex(),
		QuestionID: course.CourseData[0].Questions[0].ID.Hex(),
	})
	require.NoError(t, err)

	require.Len(t, f.notifier.notices, 1)
	assert.Equal(t, "New Question Reply Received", f.notifier.notices[0].title)
	assert.Empty(t, f.mailer.sent)
}

func TestAddAnswer_OtherAuthorGetsMail(t *testing.T) {
	course := sampleCourse()
	author := sampleUser(course.ID.Hex())
	course.CourseData[0].Questions = []domain.Question{{
		ID:       primitive.NewObjectID(),
		User:     author.Ref(),
		Question: "why?",
		Replies:  []domain.Answer{},
	}}
	uc, f := newTestCourseUC(course)

	replier := sampleUser(course.ID.Hex())
	replier.Email = "bob@example.com"

	got, err := uc.AddAnswer(context.Background(), replier, AddAnswerInput{
		Answer:     "because",
		CourseID:   course.ID.Hex(),
		ContentID:  course.CourseData[0].ID.Hex(),
		QuestionID: course.CourseData[0].Questions[0].ID.Hex(),
	})
	require.NoError(t, err)

	replies := got.CourseData[0].Questions[0].Replies
	require.Len(t, replies, 1)
	assert.Equal(t, replier.ID, replies[0].User.ID)
	assert.False(t, replies[0].CreatedAt.IsZero())

	// Ровно одно письмо автору вопроса, без нотификации
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, author.Email, f.mailer.sent[0].to)
	assert.Empty(t, f.notifier.notices)
}

func TestAddAnswer_MailFailureAfterCommit(t *testing.T) {
	course := sampleCourse()
	author := sampleUser(course.ID.Hex())
	course.CourseData[0].Questions = []domain.Question{{
		ID:      primitive.NewObjectID(),
		User:    author.Ref(),
		Replies: []domain.Answer{},
	}}
	uc, f := newTestCourseUC(course)
	f.mailer.err = errors.New("sendgrid: 503")

	replier := sampleUser(course.ID.Hex())

	_, err := uc.AddAnswer(context.Background(), replier, AddAnswerInput{
		Answer:     "because",
		CourseID:   course.ID.Hex(),
		ContentID:  course.CourseData[0].ID.Hex(),
		QuestionID: course.CourseData[0].Questions[0].ID.Hex(),
	})
	// Письмо упало, ошибка ушла клиенту, но ответ уже сохранен
	require.Error(t, err)
	assert.Equal(t, 1, f.store.saveCalls)
	assert.Len(t, f.store.lastSaved.CourseData[0].Questions[0].Replies, 1)
}

func TestAddAnswer_UnknownQuestion(t *testing.T) {
	course := sampleCourse()
	uc, f := newTestCourseUC(course)

	_, err := uc.AddAnswer(context.Background(), sampleUser(course.ID.Hex()), AddAnswerInput{
		Answer:     "a",
		CourseID:   course.ID.Hex(),
		ContentID:  course.CourseData[0].ID.Hex(),
		QuestionID: primitive.NewObjectID().Hex(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuestionID)
	assert.Zero(t, f.store.saveCalls)
}

// --- отзывы ---

func TestAddReview_RecalculatesMeanRating(t *testing.T) {
	course := sampleCourse()
	course.Reviews = []domain.Review{{
		ID:     primitive.NewObjectID(),
		Rating: 5,
	}}
	course.RecalcRating()
	uc, f := newTestCourseUC(course)
	user := sampleUser(course.ID.Hex())

	got, err := uc.AddReview(context.Background(), user, course.ID.Hex(), AddReviewInput{
		Review: "solid",
		Rating: 4,
	})
	require.NoError(t, err)

	assert.InDelta(t, 4.5, got.Ratings, 1e-9)
	require.Len(t, f.notifier.notices, 1)
	assert.Equal(t, "New Review Received", f.notifier.notices[0].title)
}

func TestAddReview_RequiresPurchase(t *testing.T) {
	course := sampleCourse()
	uc, f := newTestCourseUC(course)

	_, err := uc.AddReview(context.Background(), sampleUser(), course.ID.Hex(), AddReviewInput{
		Review: "solid",
		Rating: 4,
	})
	assert.ErrorIs(t, err, domain.ErrNotEligible)
	assert.Zero(t, f.store.saveCalls)
}

func TestAddReviewReply(t *testing.T) {
	course := sampleCourse()
	course.Reviews = []domain.Review{{
		ID:     primitive.NewObjectID(),
		Rating: 5,
	}}
	uc, f := newTestCourseUC(course)
	admin := sampleUser()
	admin.Role = domain.RoleAdmin

	// Несуществующий отзыв не мутирует документ
	_, err := uc.AddReviewReply(context.Background(), admin, AddReviewReplyInput{
		Comment:  "thanks",
		CourseID: course.ID.Hex(),
		ReviewID: primitive.NewObjectID().Hex(),
	})
	assert.ErrorIs(t, err, domain.ErrReviewNotFound)
	assert.Zero(t, f.store.saveCalls)

	got, err := uc.AddReviewReply(context.Background(), admin, AddReviewReplyInput{
		Comment:  "thanks",
		CourseID: course.ID.Hex(),
		ReviewID: course.Reviews[0].ID.Hex(),
	})
	require.NoError(t, err)
	require.Len(t, got.Reviews[0].Replies, 1)
	assert.Equal(t, "thanks", got.Reviews[0].Replies[0].Comment)
	// Ответ на отзыв нотификацию не создает
	assert.Empty(t, f.notifier.notices)
}

// --- создание, правка, удаление ---

func TestCreate_NoCacheInteraction(t *testing.T) {
	uc, f := newTestCourseUC()

	course, err := uc.Create(context.Background(), CourseInput{
		Name:        "New course",
		Description: "desc",
		Price:       10,
		Thumbnail:   "data:image/png;base64,xxx",
		CourseData:  []ContentItemInput{{Title: "Intro"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "courses/new", course.Thumbnail.PublicID)
	assert.Len(t, f.media.uploads, 1)
	assert.Empty(t, f.cache.single)
	assert.Empty(t, f.cache.lists)
	assert.Empty(t, f.cache.delKeys)
}

func TestEdit_InvalidatesBeforeRead(t *testing.T) {
	course := sampleCourse()
	uc, f := newTestCourseUC(course)

	var ops []string
	f.store.ops = &ops
	f.cache.ops = &ops

	name := "Renamed"
	_, err := uc.Edit(context.Background(), course.ID.Hex(), CourseInput{Name: name})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(ops), 2)
	assert.Equal(t, []string{"cache.del", "store.find"}, ops[:2])
	assert.Equal(t, []string{course.ID.Hex()}, f.cache.delKeys)
	// Write-through после правки не делается
	assert.Empty(t, f.cache.single)
}

func TestEdit_HostedThumbnailKeepsCurrent(t *testing.T) {
	course := sampleCourse()
	uc, f := newTestCourseUC(course)

	_, err := uc.Edit(context.Background(), course.ID.Hex(), CourseInput{
		Thumbnail: "https://cdn/old.png",
	})
	require.NoError(t, err)

	assert.Empty(t, f.media.uploads)
	assert.Empty(t, f.media.destroyed)
	require.Len(t, f.store.updates, 1)
	require.NotNil(t, f.store.updates[0].Thumbnail)
	assert.Equal(t, "courses/old", f.store.updates[0].Thumbnail.PublicID)
}

func TestEdit_NewThumbnailReplacesOld(t *testing.T) {
	course := sampleCourse()
	uc, f := newTestCourseUC(course)

	_, err := uc.Edit(context.Background(), course.ID.Hex(), CourseInput{
		Thumbnail: "data:image/png;base64,yyy",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"courses/old"}, f.media.destroyed)
	assert.Len(t, f.media.uploads, 1)
}

func TestDelete(t *testing.T) {
	course := sampleCourse()
	uc, f := newTestCourseUC(course)

	// Несуществующий курс: кеш не трогается вовсе
	err := uc.Delete(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
	assert.Empty(t, f.cache.delKeys)

	err = uc.Delete(context.Background(), course.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{course.ID.Hex()}, f.store.deleted)
	assert.Equal(t, []string{course.ID.Hex()}, f.cache.delKeys)
}

func TestGenerateVideoOTP(t *testing.T) {
	uc, f := newTestCourseUC()

	otp, err := uc.GenerateVideoOTP(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, f.video.resp, otp)
}
