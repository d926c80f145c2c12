package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campustrack/campustrack-backend/internal/config"
	"github.com/campustrack/campustrack-backend/internal/model"
)

func newAuthFixture() *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 6,
	})
}

func TestPasswordRoundTrip(t *testing.T) {
	svc := newAuthFixture()

	hash, err := svc.HashPassword("correct horse battery")
	require.NoError(t, err)

	assert.NoError(t, svc.CheckPassword(hash, "correct horse battery"))
	assert.ErrorIs(t, svc.CheckPassword(hash, "wrong password"), ErrInvalidCredentials)
}

func TestProfessorTokenRoundTrip(t *testing.T) {
	svc := newAuthFixture()

	token, err := svc.GenerateProfessorToken(&model.Professor{
		UID:           "prof-reyes",
		Email:         "reyes@example.edu",
		EmailVerified: true,
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, TokenTypeProfessor, claims.TokenType)
	assert.Equal(t, "prof-reyes", claims.UID)
	assert.Equal(t, "reyes@example.edu", claims.Email)
	assert.True(t, claims.EmailVerified)
	assert.Equal(t, model.ProfessorInfo{
		UID:           "prof-reyes",
		Email:         "reyes@example.edu",
		EmailVerified: true,
	}, claims.ProfessorInfo())
}

func TestStudentTokenType(t *testing.T) {
	svc := newAuthFixture()

	token, err := svc.GenerateStudentToken("student-1", "s1@example.edu", false)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeStudent, claims.TokenType)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newAuthFixture()
	other := NewAuthService(&config.Config{JWTSecret: "other-secret", JWTExpiry: time.Hour})

	token, err := other.GenerateStudentToken("student-1", "", false)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newAuthFixture()

	_, err := svc.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}
