package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuracion del servicio. Se construye una sola
// vez al arrancar y se pasa por referencia: la logica de negocio nunca lee
// el ambiente directamente.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	Origin      string `env:"ORIGIN" envDefault:"*"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AccessTokenSecret   string `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret  string `env:"REFRESH_TOKEN_SECRET,required"`
	ActivationSecret    string `env:"ACTIVATION_SECRET,required"`
	AccessTokenTTLMin   int    `env:"ACCESS_TOKEN_TTL_MINUTES" envDefault:"5"`
	RefreshTokenTTLDays int    `env:"REFRESH_TOKEN_TTL_DAYS" envDefault:"3"`
	ActivationTTLMin    int    `env:"ACTIVATION_TTL_MINUTES" envDefault:"5"`
	SessionTTLDays      int    `env:"SESSION_TTL_DAYS" envDefault:"7"`
	CourseCacheTTLDays  int    `env:"COURSE_CACHE_TTL_DAYS" envDefault:"7"`

	CookieDomain string `env:"COOKIE_DOMAIN"`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	ImageHostBaseURL string `env:"IMAGE_HOST_BASE_URL"`
	ImageHostAPIKey  string `env:"IMAGE_HOST_API_KEY"`

	PaymentBaseURL string `env:"PAYMENT_BASE_URL"`
	PaymentAPIKey  string `env:"PAYMENT_API_KEY"`
}

// LoadConfig carga la configuracion desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AccessTokenTTL devuelve la vigencia del access token.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMin) * time.Minute
}

// RefreshTokenTTL devuelve la vigencia del refresh token.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLDays) * 24 * time.Hour
}

// ActivationTTL devuelve la vigencia del token de activacion.
func (c *Config) ActivationTTL() time.Duration {
	return time.Duration(c.ActivationTTLMin) * time.Minute
}

// SessionTTL devuelve la expiracion absoluta del session snapshot.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLDays) * 24 * time.Hour
}

// CourseCacheTTL devuelve el TTL de las entradas de catalogo cacheadas.
func (c *Config) CourseCacheTTL() time.Duration {
	return time.Duration(c.CourseCacheTTLDays) * 24 * time.Hour
}
