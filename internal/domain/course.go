package domain

import "time"

// Titled es un item con solo titulo (beneficios, prerequisitos, categorias).
type Titled struct {
	Title string `json:"title"`
}

// Link es un recurso externo asociado a una seccion.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Answer es una respuesta dentro del hilo de una pregunta.
type Answer struct {
	ID        string          `json:"id"`
	User      SessionSnapshot `json:"user"`
	Answer    string          `json:"answer"`
	CreatedAt time.Time       `json:"created_at"`
}

// Question es una pregunta de un alumno sobre una seccion.
type Question struct {
	ID        string          `json:"id"`
	User      SessionSnapshot `json:"user"`
	Question  string          `json:"question"`
	Replies   []Answer        `json:"question_replies"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReviewReply es una respuesta (de admin) a una resena.
type ReviewReply struct {
	ID        string          `json:"id"`
	User      SessionSnapshot `json:"user"`
	Comment   string          `json:"comment"`
	CreatedAt time.Time       `json:"created_at"`
}

// Review es una resena de un comprador del curso.
type Review struct {
	ID        string          `json:"id"`
	User      SessionSnapshot `json:"user"`
	Rating    float64         `json:"rating"`
	Comment   string          `json:"comment"`
	Replies   []ReviewReply   `json:"comment_replies"`
	CreatedAt time.Time       `json:"created_at"`
}

// Section es una unidad de contenido del curso con su video y su hilo
// de preguntas. Los lectores publicos reciben la seccion sin video,
// links, sugerencias ni preguntas.
type Section struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	VideoURL     string     `json:"video_url,omitempty"`
	VideoSection string     `json:"video_section"`
	VideoLength  int        `json:"video_length"`
	VideoPlayer  string     `json:"video_player"`
	Links        []Link     `json:"links,omitempty"`
	Suggestion   string     `json:"suggestion,omitempty"`
	Questions    []Question `json:"questions,omitempty"`
}

// Course es una entrada del catalogo.
type Course struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Categories     string    `json:"categories"`
	Price          float64   `json:"price"`
	EstimatedPrice float64   `json:"estimated_price,omitempty"`
	Thumbnail      Image     `json:"thumbnail"`
	Tags           string    `json:"tags"`
	Level          string    `json:"level"`
	DemoURL        string    `json:"demo_url"`
	Benefits       []Titled  `json:"benefits"`
	Prerequisites  []Titled  `json:"prerequisites"`
	Reviews        []Review  `json:"reviews"`
	Sections       []Section `json:"course_data"`
	Ratings        float64   `json:"ratings"`
	Purchased      int64     `json:"purchased"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RecalculateRating recalcula el promedio a partir de las resenas.
func (c *Course) RecalculateRating() {
	if len(c.Reviews) == 0 {
		c.Ratings = 0
		return
	}
	var sum float64
	for _, rev := range c.Reviews {
		sum += rev.Rating
	}
	c.Ratings = sum / float64(len(c.Reviews))
}

// FindSection devuelve un puntero a la seccion con el id dado.
func (c *Course) FindSection(sectionID string) *Section {
	for i := range c.Sections {
		if c.Sections[i].ID == sectionID {
			return &c.Sections[i]
		}
	}
	return nil
}
