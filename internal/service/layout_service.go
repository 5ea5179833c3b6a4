package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"lms-api/internal/domain"
	"lms-api/internal/imagehost"
	"lms-api/internal/repository"
)

var (
	ErrLayoutNotFound    = errors.New("layout not found")
	ErrInvalidLayoutType = errors.New("invalid layout type")
)

// LayoutInput agrupa los campos editables de un layout; solo los que
// corresponden al tipo se persisten.
type LayoutInput struct {
	Type       string
	BannerData string // data URI o URL de la imagen del banner
	Title      string
	SubTitle   string
	FAQ        []domain.FAQItem
	Categories []domain.Titled
}

// LayoutService mantiene los bloques editables del sitio (banner, FAQ,
// categorias). Hay a lo sumo un layout por tipo.
type LayoutService struct {
	logger  *zap.Logger
	layouts repository.LayoutRepository
	images  imagehost.Uploader
}

func NewLayoutService(logger *zap.Logger, layouts repository.LayoutRepository, images imagehost.Uploader) *LayoutService {
	return &LayoutService{
		logger:  logger,
		layouts: layouts,
		images:  images,
	}
}

// Upsert crea o reemplaza el layout del tipo dado. Para banners, una
// imagen nueva se sube al host; una URL https existente se conserva.
func (s *LayoutService) Upsert(ctx context.Context, in LayoutInput) (domain.Layout, error) {
	kind := strings.ToLower(strings.TrimSpace(in.Type))
	if !domain.ValidLayoutType(kind) {
		return domain.Layout{}, ErrInvalidLayoutType
	}

	layout := domain.Layout{ID: uuid.NewString(), Type: kind}
	switch kind {
	case domain.LayoutBanner:
		banner := domain.Banner{Title: in.Title, SubTitle: in.SubTitle}
		if in.BannerData != "" {
			if strings.HasPrefix(in.BannerData, "https") {
				banner.Image = domain.Image{URL: in.BannerData}
			} else {
				asset, err := s.images.Upload(ctx, in.BannerData, "layout")
				if err != nil {
					return domain.Layout{}, err
				}
				banner.Image = domain.Image{PublicID: asset.PublicID, URL: asset.URL}
			}
		}
		layout.Banner = &banner
	case domain.LayoutFAQ:
		layout.FAQ = in.FAQ
	case domain.LayoutCategories:
		layout.Categories = in.Categories
	}

	saved, err := s.layouts.Upsert(ctx, layout)
	if err != nil {
		return domain.Layout{}, err
	}
	return saved, nil
}

// GetByType devuelve el layout del tipo pedido.
func (s *LayoutService) GetByType(ctx context.Context, kind string) (domain.Layout, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if !domain.ValidLayoutType(kind) {
		return domain.Layout{}, ErrInvalidLayoutType
	}
	layout, err := s.layouts.GetByType(ctx, kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Layout{}, ErrLayoutNotFound
		}
		return domain.Layout{}, err
	}
	return layout, nil
}
