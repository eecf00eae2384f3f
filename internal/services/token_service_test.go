package services

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"expense-match/internal/config"
	"expense-match/internal/models"

	"github.com/stretchr/testify/suite"
)

// TokenServiceSuite defines the test suite for TokenService
type TokenServiceSuite struct {
	suite.Suite
	service TokenServiceInterface
	config  *config.JWTConfig
}

// SetupTest runs before each test in the suite
func (s *TokenServiceSuite) SetupTest() {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	s.Require().NoError(err)

	s.config = &config.JWTConfig{
		AccessTokenDuration: time.Hour,
		PrivateKey:          privateKey,
		PublicKey:           &privateKey.PublicKey,
		Issuer:              "expense-match-test",
	}
	s.service = NewTokenService(s.config)
}

// TestTokenServiceSuite runs the test suite
func TestTokenServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceSuite))
}

// Test GenerateToken functionality
func (s *TokenServiceSuite) TestGenerateToken() {
	token, expiresAt, err := s.service.GenerateToken("ops-cli", models.RoleAdmin)
	s.NoError(err)
	s.NotEmpty(token)
	s.WithinDuration(time.Now().Add(time.Hour), expiresAt, 5*time.Second)
}

func (s *TokenServiceSuite) TestGenerateToken_EmptyClientID() {
	_, _, err := s.service.GenerateToken("", models.RoleAdmin)
	s.Error(err)
}

// Test ValidateToken functionality
func (s *TokenServiceSuite) TestValidateToken() {
	token, _, err := s.service.GenerateToken("ops-cli", models.RoleAdmin)
	s.Require().NoError(err)

	claims, err := s.service.ValidateToken(token)
	s.NoError(err)
	s.Equal("ops-cli", claims.ClientID)
	s.Equal(models.RoleAdmin, claims.Role)
	s.Equal("expense-match-test", claims.Issuer)
	s.NotEmpty(claims.ID)
}

func (s *TokenServiceSuite) TestValidateToken_Empty() {
	_, err := s.service.ValidateToken("")
	s.ErrorIs(err, ErrEmptyToken)
}

func (s *TokenServiceSuite) TestValidateToken_Malformed() {
	_, err := s.service.ValidateToken("not.a.token")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *TokenServiceSuite) TestValidateToken_Expired() {
	s.config.AccessTokenDuration = -time.Minute
	expiredService := NewTokenService(s.config)

	token, _, err := expiredService.GenerateToken("ops-cli", models.RoleAdmin)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.ErrorIs(err, ErrExpiredToken)
}

func (s *TokenServiceSuite) TestValidateToken_WrongIssuer() {
	otherConfig := *s.config
	otherConfig.Issuer = "someone-else"
	otherService := NewTokenService(&otherConfig)

	token, _, err := otherService.GenerateToken("ops-cli", models.RoleAdmin)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidIssuer)
}

func (s *TokenServiceSuite) TestValidateToken_WrongKey() {
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	s.Require().NoError(err)

	otherService := NewTokenService(&config.JWTConfig{
		AccessTokenDuration: time.Hour,
		PrivateKey:          otherKey,
		PublicKey:           &otherKey.PublicKey,
		Issuer:              "expense-match-test",
	})

	token, _, err := otherService.GenerateToken("ops-cli", models.RoleAdmin)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

// Test ExtractTokenFromHeader functionality
func (s *TokenServiceSuite) TestExtractTokenFromHeader() {
	token, err := s.service.ExtractTokenFromHeader("Bearer abc.def.ghi")
	s.NoError(err)
	s.Equal("abc.def.ghi", token)
}

func (s *TokenServiceSuite) TestExtractTokenFromHeader_Invalid() {
	cases := []string{"", "abc.def.ghi", "Basic abc", "Bearer ", "Bearer"}
	for _, header := range cases {
		_, err := s.service.ExtractTokenFromHeader(header)
		s.ErrorIs(err, ErrInvalidAuthHeader, "header: %q", header)
	}
}
