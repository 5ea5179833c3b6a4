package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"lms-api/internal/domain"
	"lms-api/internal/email"
	"lms-api/internal/imagehost"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, emailAddr string) (domain.User, error) {
	id, ok := m.usersByEmail[emailAddr]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) List(_ context.Context) ([]domain.User, error) {
	var users []domain.User
	for _, u := range m.usersByID {
		users = append(users, u)
	}
	return users, nil
}

func (m *mockUserRepo) Update(_ context.Context, user domain.User) error {
	existing, ok := m.usersByID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.usersByEmail, existing.Email)
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Role = role
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) AppendCourse(_ context.Context, userID, courseID string) error {
	user, ok := m.usersByID[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	if !user.OwnsCourse(courseID) {
		user.Courses = append(user.Courses, courseID)
		m.usersByID[userID] = user
	}
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.usersByEmail, user.Email)
	delete(m.usersByID, id)
	return nil
}

func (m *mockUserRepo) CountByMonth(_ context.Context, _ time.Time) ([]domain.MonthCount, error) {
	return nil, nil
}

// captureSender guarda los correos enviados para inspeccion.
type captureSender struct {
	activationCodes map[string]string
	orderEmails     []string
	replyEmails     []string
}

func newCaptureSender() *captureSender {
	return &captureSender{activationCodes: make(map[string]string)}
}

func (s *captureSender) SendActivationCode(_ context.Context, toEmail, _ string, code string) error {
	s.activationCodes[toEmail] = code
	return nil
}

func (s *captureSender) SendOrderConfirmation(_ context.Context, toEmail string, _ email.OrderSummary) error {
	s.orderEmails = append(s.orderEmails, toEmail)
	return nil
}

func (s *captureSender) SendQuestionReply(_ context.Context, toEmail, _, _, _ string) error {
	s.replyEmails = append(s.replyEmails, toEmail)
	return nil
}

func newTestUserService(t *testing.T) (*UserService, *mockUserRepo, SessionStore, *captureSender) {
	t.Helper()
	repo := newMockUserRepo()
	sessions := NewMemorySessionStore()
	sender := newCaptureSender()
	svc := NewUserService(
		zap.NewNop(),
		repo,
		sessions,
		newTestTokenService(),
		sender,
		imagehost.NewDisabledUploader("test"),
		7*24*time.Hour,
	)
	return svc, repo, sessions, sender
}

func TestUserService_RegisterActivateLogin(t *testing.T) {
	svc, repo, _, sender := newTestUserService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, "Ana", "Ana@Example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(repo.usersByID) != 0 {
		t.Fatalf("expected nothing persisted before activation, got %d users", len(repo.usersByID))
	}

	code, ok := sender.activationCodes["ana@example.com"]
	if !ok {
		t.Fatalf("expected activation email to lowercase address, got %v", sender.activationCodes)
	}

	user, err := svc.Activate(ctx, token, code)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if user.Role != domain.RoleUser || user.IsVerified {
		t.Fatalf("expected unverified regular user, got %+v", user)
	}

	logged, err := svc.Authenticate(ctx, "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("expected same user on login, got %q vs %q", logged.ID, user.ID)
	}
}

func TestUserService_ActivateWrongCodeHasNoSideEffects(t *testing.T) {
	svc, repo, _, _ := newTestUserService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, "Ana", "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Activate(ctx, token, "0000"); !errors.Is(err, ErrActivationCode) {
		t.Fatalf("expected ErrActivationCode, got %v", err)
	}
	if len(repo.usersByID) != 0 {
		t.Fatalf("expected no user persisted after failed activation")
	}
}

func TestUserService_ActivateTwiceConflicts(t *testing.T) {
	svc, _, _, sender := newTestUserService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, "Ana", "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	code := sender.activationCodes["ana@example.com"]

	if _, err := svc.Activate(ctx, token, code); err != nil {
		t.Fatalf("first activation: %v", err)
	}
	if _, err := svc.Activate(ctx, token, code); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken on repeat activation, got %v", err)
	}
}

func TestUserService_RegisterRejectsExistingEmail(t *testing.T) {
	svc, repo, _, _ := newTestUserService(t)
	ctx := context.Background()

	repo.Create(ctx, domain.User{ID: "u1", Email: "ana@example.com"})
	if _, err := svc.Register(ctx, "Ana", "ana@example.com", "secret1"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc, _, _, _ := newTestUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ana", "no-es-correo", "secret1"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Register(ctx, "Ana", "ana@example.com", "abc"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestUserService_SocialAuthCreatesVerifiedOnce(t *testing.T) {
	svc, repo, _, _ := newTestUserService(t)
	ctx := context.Background()

	first, err := svc.SocialAuth(ctx, "Ana", "ana@example.com", "https://img/a.png")
	if err != nil {
		t.Fatalf("social auth: %v", err)
	}
	if !first.IsVerified {
		t.Fatalf("expected social account verified on creation")
	}

	second, err := svc.SocialAuth(ctx, "Ana", "ana@example.com", "")
	if err != nil {
		t.Fatalf("second social auth: %v", err)
	}
	if second.ID != first.ID || len(repo.usersByID) != 1 {
		t.Fatalf("expected same account on repeat login")
	}
}

func TestUserService_AppendCourseRefreshesSnapshot(t *testing.T) {
	svc, repo, sessions, _ := newTestUserService(t)
	ctx := context.Background()

	user := domain.User{ID: "u1", Email: "ana@example.com", Courses: []string{}}
	repo.Create(ctx, user)
	sessions.Put(ctx, "u1", user.Snapshot(), time.Hour)

	if _, err := svc.AppendCourse(ctx, "u1", "c1"); err != nil {
		t.Fatalf("append course: %v", err)
	}

	snap, err := sessions.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("session get: %v", err)
	}
	if !snap.OwnsCourse("c1") {
		t.Fatalf("expected snapshot refreshed with purchased course, got %+v", snap.Courses)
	}
}

func TestUserService_DeletePurgesSession(t *testing.T) {
	svc, repo, sessions, _ := newTestUserService(t)
	ctx := context.Background()

	user := domain.User{ID: "u1", Email: "ana@example.com"}
	repo.Create(ctx, user)
	sessions.Put(ctx, "u1", user.Snapshot(), time.Hour)

	if err := svc.Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := sessions.Get(ctx, "u1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session purged on delete, got %v", err)
	}
}
