package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"lms-api/internal/domain"
	"lms-api/internal/imagehost"
	"lms-api/internal/repository"
)

type mockCourseRepo struct {
	courses  map[string]domain.Course
	getCalls int
	lists    int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]domain.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course domain.Course) error {
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string, _ repository.FieldSet) (domain.Course, error) {
	m.getCalls++
	course, ok := m.courses[id]
	if !ok {
		return domain.Course{}, pgx.ErrNoRows
	}
	return course, nil
}

func (m *mockCourseRepo) List(_ context.Context, _ repository.FieldSet) ([]domain.Course, error) {
	m.lists++
	var out []domain.Course
	for _, c := range m.courses {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course domain.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.courses[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) IncrementPurchased(_ context.Context, id string) error {
	course, ok := m.courses[id]
	if !ok {
		return pgx.ErrNoRows
	}
	course.Purchased++
	m.courses[id] = course
	return nil
}

func (m *mockCourseRepo) CountByMonth(_ context.Context, _ time.Time) ([]domain.MonthCount, error) {
	return nil, nil
}

type mockNotificationRepo struct {
	created []domain.Notification
}

func (m *mockNotificationRepo) Create(_ context.Context, n domain.Notification) error {
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationRepo) List(_ context.Context) ([]domain.Notification, error) {
	return m.created, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id string) (domain.Notification, error) {
	for i := range m.created {
		if m.created[i].ID == id {
			m.created[i].Status = domain.NotificationRead
			return m.created[i], nil
		}
	}
	return domain.Notification{}, pgx.ErrNoRows
}

func (m *mockNotificationRepo) DeleteReadBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func newTestCourseService(t *testing.T) (*CourseService, *mockCourseRepo, *mockNotificationRepo, *captureSender) {
	t.Helper()
	repo := newMockCourseRepo()
	notifs := &mockNotificationRepo{}
	sender := newCaptureSender()
	svc := NewCourseService(
		zap.NewNop(),
		repo,
		notifs,
		NewMemoryCourseCache(time.Hour),
		imagehost.NewDisabledUploader("test"),
		sender,
	)
	return svc, repo, notifs, sender
}

func seedCourse(repo *mockCourseRepo, id string) domain.Course {
	course := domain.Course{
		ID:   id,
		Name: "Go desde cero",
		Sections: []domain.Section{
			{ID: "s1", Title: "Intro", Questions: []domain.Question{}},
		},
	}
	repo.courses[id] = course
	return course
}

func TestCourseService_GetSingleCacheAside(t *testing.T) {
	svc, repo, _, _ := newTestCourseService(t)
	ctx := context.Background()
	seedCourse(repo, "c1")

	course, fromCache, err := svc.GetSingle(ctx, "c1")
	if err != nil {
		t.Fatalf("cold read: %v", err)
	}
	if fromCache || course.ID != "c1" {
		t.Fatalf("expected cold read from store, fromCache=%v", fromCache)
	}
	if repo.getCalls != 1 {
		t.Fatalf("expected 1 store query, got %d", repo.getCalls)
	}

	_, fromCache, err = svc.GetSingle(ctx, "c1")
	if err != nil {
		t.Fatalf("warm read: %v", err)
	}
	if !fromCache {
		t.Fatalf("expected warm read from cache")
	}
	if repo.getCalls != 1 {
		t.Fatalf("warm read must not touch the store, got %d queries", repo.getCalls)
	}
}

func TestCourseService_GetSingleUnknownCourse(t *testing.T) {
	svc, _, _, _ := newTestCourseService(t)

	if _, _, err := svc.GetSingle(context.Background(), "missing"); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestCourseService_EditInvalidatesCache(t *testing.T) {
	svc, repo, _, _ := newTestCourseService(t)
	ctx := context.Background()
	seedCourse(repo, "c1")

	if _, _, err := svc.GetSingle(ctx, "c1"); err != nil {
		t.Fatalf("warm up: %v", err)
	}

	if _, err := svc.Edit(ctx, "c1", CourseInput{Name: "Go avanzado"}); err != nil {
		t.Fatalf("edit: %v", err)
	}

	course, fromCache, err := svc.GetSingle(ctx, "c1")
	if err != nil {
		t.Fatalf("read after edit: %v", err)
	}
	if fromCache {
		t.Fatalf("expected store read after invalidation")
	}
	if course.Name != "Go avanzado" {
		t.Fatalf("read after write returned stale data: %q", course.Name)
	}
}

func TestCourseService_GetAllListCache(t *testing.T) {
	svc, repo, _, _ := newTestCourseService(t)
	ctx := context.Background()
	seedCourse(repo, "c1")

	if _, fromCache, err := svc.GetAll(ctx); err != nil || fromCache {
		t.Fatalf("expected cold list read, fromCache=%v err=%v", fromCache, err)
	}
	if _, fromCache, err := svc.GetAll(ctx); err != nil || !fromCache {
		t.Fatalf("expected warm list read, fromCache=%v err=%v", fromCache, err)
	}
	if repo.lists != 1 {
		t.Fatalf("expected a single list query, got %d", repo.lists)
	}
}

func TestCourseService_GetContentRequiresOwnership(t *testing.T) {
	svc, repo, _, _ := newTestCourseService(t)
	ctx := context.Background()
	seedCourse(repo, "c1")

	outsider := domain.SessionSnapshot{ID: "u1"}
	if _, err := svc.GetContent(ctx, outsider, "c1"); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}

	owner := domain.SessionSnapshot{ID: "u1", Courses: []string{"c1"}}
	sections, err := svc.GetContent(ctx, owner, "c1")
	if err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if len(sections) != 1 || sections[0].Title != "Intro" {
		t.Fatalf("expected full sections for owner, got %+v", sections)
	}
}

func TestCourseService_AddQuestionNotifies(t *testing.T) {
	svc, repo, notifs, _ := newTestCourseService(t)
	ctx := context.Background()
	seedCourse(repo, "c1")

	user := domain.SessionSnapshot{ID: "u1", Name: "Ana", Email: "ana@example.com"}
	course, err := svc.AddQuestion(ctx, user, "c1", "s1", "que es un canal?")
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	if len(course.Sections[0].Questions) != 1 {
		t.Fatalf("expected question appended")
	}
	if len(notifs.created) != 1 || notifs.created[0].Title != "New Question" {
		t.Fatalf("expected new question notification, got %+v", notifs.created)
	}
}

func TestCourseService_AddAnswerEmailsQuestionAuthor(t *testing.T) {
	svc, repo, notifs, sender := newTestCourseService(t)
	ctx := context.Background()
	seedCourse(repo, "c1")

	author := domain.SessionSnapshot{ID: "u1", Name: "Ana", Email: "ana@example.com"}
	course, err := svc.AddQuestion(ctx, author, "c1", "s1", "que es un canal?")
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	questionID := course.Sections[0].Questions[0].ID

	// Otro usuario responde: el autor original recibe un correo.
	other := domain.SessionSnapshot{ID: "u2", Name: "Beto", Email: "beto@example.com"}
	if _, err := svc.AddAnswer(ctx, other, "c1", "s1", questionID, "un canal comunica goroutines"); err != nil {
		t.Fatalf("add answer: %v", err)
	}
	if len(sender.replyEmails) != 1 || sender.replyEmails[0] != "ana@example.com" {
		t.Fatalf("expected reply email to author, got %v", sender.replyEmails)
	}

	// El autor se responde a si mismo: aviso interno, sin correo.
	if _, err := svc.AddAnswer(ctx, author, "c1", "s1", questionID, "ya lo entendi"); err != nil {
		t.Fatalf("self answer: %v", err)
	}
	if len(sender.replyEmails) != 1 {
		t.Fatalf("self reply must not send email, got %v", sender.replyEmails)
	}
	if len(notifs.created) < 2 {
		t.Fatalf("expected self reply notification, got %+v", notifs.created)
	}
}

func TestCourseService_AddReviewRecalculatesRating(t *testing.T) {
	svc, repo, _, _ := newTestCourseService(t)
	ctx := context.Background()
	seedCourse(repo, "c1")

	outsider := domain.SessionSnapshot{ID: "u1"}
	if _, err := svc.AddReview(ctx, outsider, "c1", 5, "genial"); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled for non buyer, got %v", err)
	}

	owner := domain.SessionSnapshot{ID: "u1", Courses: []string{"c1"}}
	if _, err := svc.AddReview(ctx, owner, "c1", 5, "genial"); err != nil {
		t.Fatalf("first review: %v", err)
	}
	owner2 := domain.SessionSnapshot{ID: "u2", Courses: []string{"c1"}}
	course, err := svc.AddReview(ctx, owner2, "c1", 4, "muy bueno")
	if err != nil {
		t.Fatalf("second review: %v", err)
	}
	if course.Ratings != 4.5 {
		t.Fatalf("expected average rating 4.5, got %v", course.Ratings)
	}
}

func TestCourseService_DeleteInvalidatesCache(t *testing.T) {
	svc, repo, _, _ := newTestCourseService(t)
	ctx := context.Background()
	seedCourse(repo, "c1")

	if _, _, err := svc.GetSingle(ctx, "c1"); err != nil {
		t.Fatalf("warm up: %v", err)
	}
	if err := svc.Delete(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := svc.GetSingle(ctx, "c1"); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected deleted course gone from cache too, got %v", err)
	}
}
