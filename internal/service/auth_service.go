package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campustrack/campustrack-backend/internal/config"
	"github.com/campustrack/campustrack-backend/internal/model"
)

// ErrInvalidCredentials is returned for any failed login attempt.
var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenType distinguishes student vs professor tokens.
type TokenType string

const (
	TokenTypeStudent   TokenType = "student"
	TokenTypeProfessor TokenType = "professor"
)

// Claims extends JWT standard claims with app-specific fields. The engine
// trusts UID as given and performs no further authentication itself.
type Claims struct {
	jwt.RegisteredClaims
	TokenType     TokenType `json:"token_type"`
	UID           string    `json:"uid"`
	Email         string    `json:"email,omitempty"`
	EmailVerified bool      `json:"email_verified,omitempty"`
}

// ProfessorInfo converts token claims into the acting identity the engines use.
func (c *Claims) ProfessorInfo() model.ProfessorInfo {
	return model.ProfessorInfo{UID: c.UID, Email: c.Email, EmailVerified: c.EmailVerified}
}

// AuthService handles password hashing and JWT issue/validation.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// HashPassword hashes a password with the configured bcrypt cost.
// Default cost is 6 for high-concurrency performance. Adjustable via BCRYPT_COST env.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateProfessorToken creates a JWT for a professor.
func (s *AuthService) GenerateProfessorToken(p *model.Professor) (string, error) {
	return s.generateToken(TokenTypeProfessor, p.UID, p.Email, p.EmailVerified)
}

// GenerateStudentToken creates a JWT for a student uid. Student identities
// come from the institution's identity provider; this only mints the token
// shape the engine consumes.
func (s *AuthService) GenerateStudentToken(uid, email string, emailVerified bool) (string, error) {
	return s.generateToken(TokenTypeStudent, uid, email, emailVerified)
}

func (s *AuthService) generateToken(tokenType TokenType, uid, email string, emailVerified bool) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType:     tokenType,
		UID:           uid,
		Email:         email,
		EmailVerified: emailVerified,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
