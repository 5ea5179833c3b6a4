package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lms-api/internal/domain"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// TokenService emite y valida los tres tipos de token firmados: access
// (corto), refresh (largo) y activacion (corto, con codigo de un solo uso
// embebido). La verificacion es autocontenida; la revocacion vive en el
// session store, no aca.
type TokenService struct {
	accessSecret     []byte
	refreshSecret    []byte
	activationSecret []byte
	accessTTL        time.Duration
	refreshTTL       time.Duration
	activationTTL    time.Duration
}

// TokenPair agrupa un access y un refresh token emitidos juntos.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionClaims es el payload de access y refresh tokens: solo el id.
type SessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// ActivationClaims transporta el registro pendiente completo mas el codigo
// de activacion dentro del payload firmado. Verificar el token y comparar
// el codigo es toda la activacion: no hay estado del lado del servidor.
type ActivationClaims struct {
	User domain.PendingRegistration `json:"user"`
	Code string                     `json:"activation_code"`
	jwt.RegisteredClaims
}

func NewTokenService(accessSecret, refreshSecret, activationSecret string, accessTTL, refreshTTL, activationTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 5 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 3 * 24 * time.Hour
	}
	if activationTTL <= 0 {
		activationTTL = 5 * time.Minute
	}
	return &TokenService{
		accessSecret:     []byte(accessSecret),
		refreshSecret:    []byte(refreshSecret),
		activationSecret: []byte(activationSecret),
		accessTTL:        accessTTL,
		refreshTTL:       refreshTTL,
		activationTTL:    activationTTL,
	}
}

// IssueAccessToken firma un access token para el usuario.
func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	return s.signSession(userID, s.accessSecret, s.accessTTL)
}

// IssueRefreshToken firma un refresh token para el usuario.
func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	return s.signSession(userID, s.refreshSecret, s.refreshTTL)
}

// IssuePair emite un par access+refresh nuevo.
func (s *TokenService) IssuePair(userID string) (TokenPair, error) {
	access, err := s.IssueAccessToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.IssueRefreshToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueActivationToken genera un codigo de 4 digitos y lo firma junto al
// registro pendiente. Devuelve el token (para el cliente) y el codigo
// (para el correo).
func (s *TokenService) IssueActivationToken(pending domain.PendingRegistration) (string, string, error) {
	if len(s.activationSecret) == 0 {
		return "", "", ErrTokenInvalid
	}
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", "", err
	}
	code := fmt.Sprintf("%d", 1000+n.Int64())

	now := time.Now().UTC()
	claims := ActivationClaims{
		User: pending,
		Code: code,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.activationTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.activationSecret)
	if err != nil {
		return "", "", err
	}
	return signed, code, nil
}

// VerifyAccess valida firma y expiracion de un access token.
func (s *TokenService) VerifyAccess(token string) (SessionClaims, error) {
	return s.parseSession(token, s.accessSecret)
}

// VerifyRefresh valida firma y expiracion de un refresh token.
func (s *TokenService) VerifyRefresh(token string) (SessionClaims, error) {
	return s.parseSession(token, s.refreshSecret)
}

// VerifyActivation valida un token de activacion y devuelve el registro
// pendiente con el codigo embebido.
func (s *TokenService) VerifyActivation(token string) (ActivationClaims, error) {
	if len(s.activationSecret) == 0 || strings.TrimSpace(token) == "" {
		return ActivationClaims{}, ErrTokenInvalid
	}
	var claims ActivationClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return s.activationSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ActivationClaims{}, ErrTokenExpired
		}
		return ActivationClaims{}, ErrTokenInvalid
	}
	return claims, nil
}

// DecodeExpiry lee el claim de expiracion sin verificar la firma. Sirve
// unicamente para decidir entre el camino de verificacion y el de refresh;
// nunca autoriza por si solo.
func (s *TokenService) DecodeExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (s *TokenService) signSession(userID string, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrTokenInvalid
	}
	if strings.TrimSpace(userID) == "" {
		return "", ErrTokenInvalid
	}
	now := time.Now().UTC()
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (s *TokenService) parseSession(token string, secret []byte) (SessionClaims, error) {
	if len(secret) == 0 || strings.TrimSpace(token) == "" {
		return SessionClaims{}, ErrTokenInvalid
	}
	var claims SessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrTokenExpired
		}
		return SessionClaims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return SessionClaims{}, ErrTokenInvalid
	}
	return claims, nil
}
