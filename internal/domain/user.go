package domain

import (
	"regexp"
	"time"
)

// Role es el rol de acceso de un usuario.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid indica si el rol es uno de los conocidos.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Allows decide si un rol pertenece al conjunto requerido.
// Un conjunto vacio admite cualquier rol.
func Allows(role Role, required ...Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, req := range required {
		if role == req {
			return true
		}
	}
	return false
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail valida el formato de un correo.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Image referencia un recurso alojado en el image host externo.
type Image struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// User es la identidad persistida de un usuario.
// El hash de la clave nunca se serializa.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       Image     `json:"avatar"`
	Role         Role      `json:"role"`
	IsVerified   bool      `json:"is_verified"`
	Courses      []string  `json:"courses"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OwnsCourse indica si el usuario compro el curso.
func (u User) OwnsCourse(courseID string) bool {
	for _, id := range u.Courses {
		if id == courseID {
			return true
		}
	}
	return false
}

// Snapshot produce la copia desnormalizada que vive en el session store.
func (u User) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Avatar:     u.Avatar,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		Courses:    u.Courses,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// SessionSnapshot es la copia de usuario cacheada por id en el session store.
// Su ausencia revoca cualquier token estructuralmente valido.
type SessionSnapshot struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Avatar     Image     `json:"avatar"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"is_verified"`
	Courses    []string  `json:"courses"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OwnsCourse indica si el snapshot registra la compra del curso.
func (s SessionSnapshot) OwnsCourse(courseID string) bool {
	for _, id := range s.Courses {
		if id == courseID {
			return true
		}
	}
	return false
}

// PendingRegistration es un registro aun no persistido. Viaja unicamente
// dentro del payload firmado del token de activacion: perder el token
// pierde el intento de registro y nunca queda una cuenta a medias.
type PendingRegistration struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}
