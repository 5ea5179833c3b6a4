package domain

import "time"

// Tipos de bloque de layout del sitio.
const (
	LayoutBanner     = "banner"
	LayoutFAQ        = "faq"
	LayoutCategories = "categories"
)

// Banner es el bloque principal de la portada.
type Banner struct {
	Image    Image  `json:"image"`
	Title    string `json:"title"`
	SubTitle string `json:"sub_title"`
}

// FAQItem es una entrada de preguntas frecuentes.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Layout es un bloque de contenido del sitio, uno por tipo.
type Layout struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Banner     *Banner   `json:"banner,omitempty"`
	FAQ        []FAQItem `json:"faq,omitempty"`
	Categories []Titled  `json:"categories,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidLayoutType indica si el tipo de layout es conocido.
func ValidLayoutType(t string) bool {
	return t == LayoutBanner || t == LayoutFAQ || t == LayoutCategories
}
