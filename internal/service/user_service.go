package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"lms-api/internal/domain"
	"lms-api/internal/email"
	"lms-api/internal/imagehost"
	"lms-api/internal/repository"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrActivationCode     = errors.New("invalid activation code")
	ErrInvalidRole        = errors.New("invalid role")
	ErrEmailSendFailure   = errors.New("email send failed")
)

// UserService coordina registro, activacion, autenticacion y perfil.
// Toda escritura que afecta al usuario vuelve a publicar su snapshot en
// el session store para que la proxima request lo vea.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	sessions    SessionStore
	tokens      *TokenService
	emailSender email.Sender
	images      imagehost.Uploader
	sessionTTL  time.Duration
}

func NewUserService(
	logger *zap.Logger,
	users repository.UserRepository,
	sessions SessionStore,
	tokens *TokenService,
	emailSender email.Sender,
	images imagehost.Uploader,
	sessionTTL time.Duration,
) *UserService {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &UserService{
		logger:      logger,
		users:       users,
		sessions:    sessions,
		tokens:      tokens,
		emailSender: emailSender,
		images:      images,
		sessionTTL:  sessionTTL,
	}
}

// Register valida los datos, arma un registro pendiente y lo devuelve
// embebido en un token de activacion. No persiste nada: el registro vive
// solo dentro del token hasta que la activacion lo confirme.
func (s *UserService) Register(ctx context.Context, name, emailAddr, password string) (string, error) {
	name = strings.TrimSpace(name)
	emailAddr = normalizeEmail(emailAddr)
	if !domain.ValidEmail(emailAddr) {
		return "", ErrInvalidEmail
	}
	if len(password) < 6 {
		return "", ErrWeakPassword
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	pending := domain.PendingRegistration{
		Name:         name,
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
	}
	token, code, err := s.tokens.IssueActivationToken(pending)
	if err != nil {
		return "", err
	}

	if err := s.emailSender.SendActivationCode(ctx, emailAddr, name, code); err != nil {
		if s.logger != nil {
			s.logger.Warn("send activation code failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return "", ErrEmailSendFailure
	}

	return token, nil
}

// Activate verifica el token, compara el codigo embebido y recien ahi
// crea la cuenta. Un codigo errado no deja ningun rastro persistido.
func (s *UserService) Activate(ctx context.Context, token, code string) (domain.User, error) {
	claims, err := s.tokens.VerifyActivation(token)
	if err != nil {
		return domain.User{}, err
	}
	if claims.Code != strings.TrimSpace(code) {
		return domain.User{}, ErrActivationCode
	}

	if _, err := s.users.GetByEmail(ctx, claims.User.Email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         claims.User.Name,
		Email:        claims.User.Email,
		PasswordHash: claims.User.PasswordHash,
		Role:         domain.RoleUser,
		Courses:      []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Authenticate valida email y clave contra el hash persistido.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// SocialAuth devuelve el usuario del proveedor social, creandolo
// verificado en el primer login.
func (s *UserService) SocialAuth(ctx context.Context, name, emailAddr, avatarURL string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if !domain.ValidEmail(emailAddr) {
		return domain.User{}, ErrInvalidEmail
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user = domain.User{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(name),
		Email:      emailAddr,
		Avatar:     domain.Image{URL: avatarURL},
		Role:       domain.RoleUser,
		IsVerified: true,
		Courses:    []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// GetByID devuelve el usuario persistido.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// UpdateInfo actualiza nombre y correo, y refresca el snapshot de sesion.
func (s *UserService) UpdateInfo(ctx context.Context, id, name, emailAddr string) (domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	if emailAddr = normalizeEmail(emailAddr); emailAddr != "" {
		if !domain.ValidEmail(emailAddr) {
			return domain.User{}, ErrInvalidEmail
		}
		user.Email = emailAddr
	}

	if err := s.users.Update(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, s.refreshSnapshot(ctx, user)
}

// UpdatePassword cambia la clave previa validacion de la actual.
func (s *UserService) UpdatePassword(ctx context.Context, id, oldPassword, newPassword string) (domain.User, error) {
	if len(newPassword) < 6 {
		return domain.User{}, ErrWeakPassword
	}
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.users.UpdatePassword(ctx, id, string(hashBytes)); err != nil {
		return domain.User{}, err
	}
	user.PasswordHash = string(hashBytes)
	return user, s.refreshSnapshot(ctx, user)
}

// UpdateAvatar reemplaza la imagen de perfil en el image host y
// refresca el snapshot.
func (s *UserService) UpdateAvatar(ctx context.Context, id, payload string) (domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if user.Avatar.PublicID != "" {
		if err := s.images.Destroy(ctx, user.Avatar.PublicID); err != nil {
			return domain.User{}, err
		}
	}
	asset, err := s.images.Upload(ctx, payload, "avatars")
	if err != nil {
		return domain.User{}, err
	}
	user.Avatar = domain.Image{PublicID: asset.PublicID, URL: asset.URL}

	if err := s.users.Update(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, s.refreshSnapshot(ctx, user)
}

// List devuelve todos los usuarios (solo admin).
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// UpdateRoleByEmail cambia el rol del usuario identificado por correo.
func (s *UserService) UpdateRoleByEmail(ctx context.Context, emailAddr string, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, ErrInvalidRole
	}
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
		return domain.User{}, err
	}
	user.Role = role
	return user, s.refreshSnapshot(ctx, user)
}

// Delete borra la cuenta y purga su snapshot: la revocacion es inmediata
// aunque los tokens emitidos sigan sin expirar.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return s.sessions.Delete(ctx, id)
}

// AppendCourse registra la compra en el usuario y refresca el snapshot.
func (s *UserService) AppendCourse(ctx context.Context, userID, courseID string) (domain.User, error) {
	if err := s.users.AppendCourse(ctx, userID, courseID); err != nil {
		return domain.User{}, err
	}
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return user, s.refreshSnapshot(ctx, user)
}

func (s *UserService) refreshSnapshot(ctx context.Context, user domain.User) error {
	return s.sessions.Put(ctx, user.ID, user.Snapshot(), s.sessionTTL)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
