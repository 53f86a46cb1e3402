package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/config"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// studentTokenTTL bounds how long a shared progress link stays valid
const studentTokenTTL = 24 * time.Hour

// AuthService handles advisor and student authentication
type AuthService struct {
	advisorUsername string
	advisorPassword string
	jwtSecret       []byte
	now             func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		advisorUsername: cfg.AdvisorUsername,
		advisorPassword: cfg.AdvisorPassword,
		jwtSecret:       []byte(cfg.JWTSecret),
		now:             time.Now,
	}
}

// Login validates advisor credentials and returns a permanent token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.advisorUsername || password != s.advisorPassword {
		return nil, ErrInvalidCredentials
	}

	advisorID := "advisor_" + uuid.New().String()[:8]

	claims := &model.AdvisorClaims{
		AdvisorID: advisorID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:     tokenString,
		AdvisorID: advisorID,
	}, nil
}

// ValidateAdvisorToken validates an advisor JWT and returns claims
func (s *AuthService) ValidateAdvisorToken(tokenString string) (*model.AdvisorClaims, error) {
	claims := &model.AdvisorClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.AdvisorID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// StudentToken issues a 24h token that lets a student read their own progress
func (s *AuthService) StudentToken(studentID string) (*model.StudentTokenResponse, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, errors.New("student id is required")
	}

	now := s.now()
	claims := &model.StudentClaims{
		StudentID: studentID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(studentTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &model.StudentTokenResponse{Token: tokenString, StudentID: studentID}, nil
}

// ValidateStudentToken validates a student JWT and returns claims
func (s *AuthService) ValidateStudentToken(tokenString string) (*model.StudentClaims, error) {
	claims := &model.StudentClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.StudentID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
