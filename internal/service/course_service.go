package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"lms-api/internal/domain"
	"lms-api/internal/email"
	"lms-api/internal/imagehost"
	"lms-api/internal/repository"
)

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrSectionNotFound  = errors.New("section not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrNotEnrolled      = errors.New("not eligible to access this course")
)

// CourseService coordina el catalogo: lecturas cache-aside y escrituras
// con invalidacion sincrona. La cache guarda siempre la vista publica
// (contenido pago recortado); las escrituras borran la entrada y la
// proxima lectura la repuebla con la proyeccion correcta.
type CourseService struct {
	logger        *zap.Logger
	courses       repository.CourseRepository
	notifications repository.NotificationRepository
	cache         CourseCache
	images        imagehost.Uploader
	emailSender   email.Sender
}

func NewCourseService(
	logger *zap.Logger,
	courses repository.CourseRepository,
	notifications repository.NotificationRepository,
	cache CourseCache,
	images imagehost.Uploader,
	emailSender email.Sender,
) *CourseService {
	return &CourseService{
		logger:        logger,
		courses:       courses,
		notifications: notifications,
		cache:         cache,
		images:        images,
		emailSender:   emailSender,
	}
}

// CourseInput son los campos editables de un curso.
type CourseInput struct {
	Name           string
	Description    string
	Categories     string
	Price          float64
	EstimatedPrice float64
	Tags           string
	Level          string
	DemoURL        string
	Benefits       []domain.Titled
	Prerequisites  []domain.Titled
	Sections       []domain.Section
	Thumbnail      string
}

// Create da de alta un curso; la miniatura se sube al image host si viene
// como payload.
func (s *CourseService) Create(ctx context.Context, input CourseInput) (domain.Course, error) {
	now := time.Now().UTC()
	course := domain.Course{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Description:    input.Description,
		Categories:     input.Categories,
		Price:          input.Price,
		EstimatedPrice: input.EstimatedPrice,
		Tags:           input.Tags,
		Level:          input.Level,
		DemoURL:        input.DemoURL,
		Benefits:       input.Benefits,
		Prerequisites:  input.Prerequisites,
		Sections:       ensureSectionIDs(input.Sections),
		Reviews:        []domain.Review{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if input.Thumbnail != "" {
		asset, err := s.images.Upload(ctx, input.Thumbnail, "courses")
		if err != nil {
			return domain.Course{}, err
		}
		course.Thumbnail = domain.Image{PublicID: asset.PublicID, URL: asset.URL}
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return domain.Course{}, err
	}
	if err := s.cache.InvalidateList(ctx); err != nil {
		return domain.Course{}, err
	}
	return course, nil
}

// Edit actualiza un curso e invalida sus entradas de cache antes de
// responder.
func (s *CourseService) Edit(ctx context.Context, id string, input CourseInput) (domain.Course, error) {
	course, err := s.getFull(ctx, id)
	if err != nil {
		return domain.Course{}, err
	}

	if input.Thumbnail != "" && !strings.HasPrefix(input.Thumbnail, "https") {
		if course.Thumbnail.PublicID != "" {
			if err := s.images.Destroy(ctx, course.Thumbnail.PublicID); err != nil {
				return domain.Course{}, err
			}
		}
		asset, err := s.images.Upload(ctx, input.Thumbnail, "courses")
		if err != nil {
			return domain.Course{}, err
		}
		course.Thumbnail = domain.Image{PublicID: asset.PublicID, URL: asset.URL}
	}

	course.Name = input.Name
	course.Description = input.Description
	course.Categories = input.Categories
	course.Price = input.Price
	course.EstimatedPrice = input.EstimatedPrice
	course.Tags = input.Tags
	course.Level = input.Level
	course.DemoURL = input.DemoURL
	course.Benefits = input.Benefits
	course.Prerequisites = input.Prerequisites
	course.Sections = ensureSectionIDs(input.Sections)

	if err := s.courses.Update(ctx, course); err != nil {
		return domain.Course{}, err
	}
	if err := s.invalidate(ctx, id); err != nil {
		return domain.Course{}, err
	}
	return course, nil
}

// GetSingle es la lectura cache-aside del detalle publico. El bool
// devuelto indica si la respuesta salio de la cache.
func (s *CourseService) GetSingle(ctx context.Context, id string) (domain.Course, bool, error) {
	course, hit, err := s.cache.GetCourse(ctx, id)
	if err != nil {
		return domain.Course{}, false, err
	}
	if hit {
		return course, true, nil
	}

	course, err = s.courses.GetByID(ctx, id, repository.PublicCourseFields)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Course{}, false, ErrCourseNotFound
		}
		return domain.Course{}, false, err
	}
	if err := s.cache.SetCourse(ctx, course); err != nil {
		return domain.Course{}, false, err
	}
	return course, false, nil
}

// GetAll es la lectura cache-aside de la lista publica.
func (s *CourseService) GetAll(ctx context.Context) ([]domain.Course, bool, error) {
	courses, hit, err := s.cache.GetList(ctx)
	if err != nil {
		return nil, false, err
	}
	if hit {
		return courses, true, nil
	}

	courses, err = s.courses.List(ctx, repository.PublicCourseFields)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.SetList(ctx, courses); err != nil {
		return nil, false, err
	}
	return courses, false, nil
}

// GetContent entrega las secciones completas solo a quien compro el curso.
func (s *CourseService) GetContent(ctx context.Context, user domain.SessionSnapshot, courseID string) ([]domain.Section, error) {
	if !user.OwnsCourse(courseID) {
		return nil, ErrNotEnrolled
	}
	course, err := s.getFull(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return course.Sections, nil
}

// AddQuestion agrega una pregunta a una seccion y avisa al equipo.
func (s *CourseService) AddQuestion(ctx context.Context, user domain.SessionSnapshot, courseID, sectionID, question string) (domain.Course, error) {
	course, err := s.getFull(ctx, courseID)
	if err != nil {
		return domain.Course{}, err
	}
	section := course.FindSection(sectionID)
	if section == nil {
		return domain.Course{}, ErrSectionNotFound
	}

	section.Questions = append(section.Questions, domain.Question{
		ID:        uuid.NewString(),
		User:      user,
		Question:  question,
		Replies:   []domain.Answer{},
		CreatedAt: time.Now().UTC(),
	})

	if err := s.courses.Update(ctx, course); err != nil {
		return domain.Course{}, err
	}

	s.notify(ctx, user.ID, "New Question",
		fmt.Sprintf("New question in course %q, section %q from %s", course.Name, section.Title, user.Name))
	return course, nil
}

// AddAnswer responde una pregunta. Si el autor se responde a si mismo se
// genera un aviso interno; en caso contrario el autor original recibe un
// correo.
func (s *CourseService) AddAnswer(ctx context.Context, user domain.SessionSnapshot, courseID, sectionID, questionID, answer string) (domain.Course, error) {
	course, err := s.getFull(ctx, courseID)
	if err != nil {
		return domain.Course{}, err
	}
	section := course.FindSection(sectionID)
	if section == nil {
		return domain.Course{}, ErrSectionNotFound
	}

	var question *domain.Question
	for i := range section.Questions {
		if section.Questions[i].ID == questionID {
			question = &section.Questions[i]
			break
		}
	}
	if question == nil {
		return domain.Course{}, ErrQuestionNotFound
	}

	question.Replies = append(question.Replies, domain.Answer{
		ID:        uuid.NewString(),
		User:      user,
		Answer:    answer,
		CreatedAt: time.Now().UTC(),
	})

	if err := s.courses.Update(ctx, course); err != nil {
		return domain.Course{}, err
	}

	if question.User.ID == user.ID {
		s.notify(ctx, user.ID, "New Question Reply",
			fmt.Sprintf("New reply in course %q, section %q", course.Name, section.Title))
	} else {
		if err := s.emailSender.SendQuestionReply(ctx, question.User.Email, question.User.Name, course.Name, section.Title); err != nil {
			if s.logger != nil {
				s.logger.Warn("send question reply failed", zap.Error(err), zap.String("email", question.User.Email))
			}
		}
	}
	return course, nil
}

// AddReview agrega una resena de un comprador, recalcula el promedio e
// invalida la cache del curso y de la lista.
func (s *CourseService) AddReview(ctx context.Context, user domain.SessionSnapshot, courseID string, rating float64, comment string) (domain.Course, error) {
	if !user.OwnsCourse(courseID) {
		return domain.Course{}, ErrNotEnrolled
	}
	course, err := s.getFull(ctx, courseID)
	if err != nil {
		return domain.Course{}, err
	}

	course.Reviews = append(course.Reviews, domain.Review{
		ID:        uuid.NewString(),
		User:      user,
		Rating:    rating,
		Comment:   comment,
		Replies:   []domain.ReviewReply{},
		CreatedAt: time.Now().UTC(),
	})
	course.RecalculateRating()

	if err := s.courses.Update(ctx, course); err != nil {
		return domain.Course{}, err
	}
	if err := s.invalidate(ctx, courseID); err != nil {
		return domain.Course{}, err
	}

	s.notify(ctx, user.ID, "New Review Received",
		fmt.Sprintf("%s has reviewed course %q", user.Name, course.Name))
	return course, nil
}

// AddReviewReply agrega la respuesta de un admin a una resena.
func (s *CourseService) AddReviewReply(ctx context.Context, user domain.SessionSnapshot, courseID, reviewID, comment string) (domain.Course, error) {
	course, err := s.getFull(ctx, courseID)
	if err != nil {
		return domain.Course{}, err
	}

	var review *domain.Review
	for i := range course.Reviews {
		if course.Reviews[i].ID == reviewID {
			review = &course.Reviews[i]
			break
		}
	}
	if review == nil {
		return domain.Course{}, ErrReviewNotFound
	}

	review.Replies = append(review.Replies, domain.ReviewReply{
		ID:        uuid.NewString(),
		User:      user,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	})

	if err := s.courses.Update(ctx, course); err != nil {
		return domain.Course{}, err
	}
	if err := s.invalidate(ctx, courseID); err != nil {
		return domain.Course{}, err
	}
	return course, nil
}

// ListAdmin devuelve el catalogo completo sin proyeccion (solo admin).
func (s *CourseService) ListAdmin(ctx context.Context) ([]domain.Course, error) {
	return s.courses.List(ctx, nil)
}

// Delete borra el curso e invalida sus entradas de cache.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCourseNotFound
		}
		return err
	}
	return s.invalidate(ctx, id)
}

// IncrementPurchased incrementa el contador de compras e invalida la
// cache para que el nuevo valor sea visible.
func (s *CourseService) IncrementPurchased(ctx context.Context, id string) error {
	if err := s.courses.IncrementPurchased(ctx, id); err != nil {
		return err
	}
	return s.invalidate(ctx, id)
}

// GetForPurchase devuelve el curso completo para el flujo de ordenes.
func (s *CourseService) GetForPurchase(ctx context.Context, id string) (domain.Course, error) {
	return s.getFull(ctx, id)
}

func (s *CourseService) getFull(ctx context.Context, id string) (domain.Course, error) {
	course, err := s.courses.GetByID(ctx, id, nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Course{}, ErrCourseNotFound
		}
		return domain.Course{}, err
	}
	return course, nil
}

func (s *CourseService) invalidate(ctx context.Context, id string) error {
	if err := s.cache.InvalidateCourse(ctx, id); err != nil {
		return err
	}
	return s.cache.InvalidateList(ctx)
}

func (s *CourseService) notify(ctx context.Context, userID, title, message string) {
	err := s.notifications.Create(ctx, domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Status:    domain.NotificationUnread,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("create notification failed", zap.Error(err))
	}
}

func ensureSectionIDs(sections []domain.Section) []domain.Section {
	for i := range sections {
		if sections[i].ID == "" {
			sections[i].ID = uuid.NewString()
		}
	}
	return sections
}
