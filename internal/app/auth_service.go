package app

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gopherchat/internal/mail"
	"gopherchat/internal/model"
	"gopherchat/internal/pkg/jwtutil"
	"gopherchat/internal/repository"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrResetTokenInvalid = errors.New("reset token is invalid or expired")
)

type AuthService struct {
	userRepo      *repository.UserRepository
	resetRepo     *repository.PasswordResetRepository
	mailer        *mail.Mailer
	jwtSecret     string
	jwtExpiration time.Duration
	resetTokenTTL time.Duration
	appBaseURL    string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(
	userRepo *repository.UserRepository,
	resetRepo *repository.PasswordResetRepository,
	mailer *mail.Mailer,
	jwtSecret string,
	jwtExpiration time.Duration,
	resetTokenTTL time.Duration,
	appBaseURL string,
) *AuthService {
	if resetTokenTTL <= 0 {
		resetTokenTTL = time.Hour
	}
	return &AuthService{
		userRepo:      userRepo,
		resetRepo:     resetRepo,
		mailer:        mailer,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		resetTokenTTL: resetTokenTTL,
		appBaseURL:    strings.TrimRight(appBaseURL, "/"),
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if username == "" || email == "" || password == "" || len(password) < 8 {
		return nil, ErrInvalidInput
	}

	existingByName, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existingByName != nil {
		return nil, ErrUsernameExists
	}

	existingByEmail, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existingByEmail != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.userRepo.GetByID(id)
}

// RequestPasswordReset issues a fresh single-use token and mails the reset
// link. An unknown email returns success just like a known one, and a failed
// mail send is logged but not surfaced, so the endpoint leaks nothing about
// which accounts exist.
func (s *AuthService) RequestPasswordReset(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token := &model.PasswordResetToken{
		UserID:    user.ID,
		Token:     strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""),
		ExpiresAt: time.Now().Add(s.resetTokenTTL),
	}
	if err := s.resetRepo.Replace(token); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, token.Token)
	if err := s.mailer.SendPasswordReset(user.Email, resetURL); err != nil {
		log.Printf("send password reset mail failed: %v", err)
	}
	return nil
}

// ConfirmPasswordReset sets the new password and burns the token atomically.
func (s *AuthService) ConfirmPasswordReset(token, newPassword string) error {
	token = strings.TrimSpace(token)
	newPassword = strings.TrimSpace(newPassword)
	if token == "" || len(newPassword) < 8 {
		return ErrInvalidInput
	}

	record, err := s.resetRepo.GetValid(token, time.Now())
	if err != nil {
		return err
	}
	if record == nil {
		return ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}
	return s.resetRepo.Consume(record.ID, record.UserID, string(hash))
}
