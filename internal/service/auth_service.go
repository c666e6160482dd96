package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-faster/errors"

	"medcontrol-backend/internal/models"
	"medcontrol-backend/internal/repository"
	"medcontrol-backend/pkg/utils"
)

type AuthService struct {
	userRepo        *repository.UserRepository
	auditRepo       *repository.AuditRepository
	tokens          *utils.TokenManager
	comparePassword func(hash, password string) bool
}

// unknownUserHash is compared against when the email matches no account, so
// both failure paths pay for one bcrypt comparison.
var unknownUserHash = sync.OnceValue(func() string {
	hash, _ := utils.HashPassword("medcontrol-unknown-user")
	return hash
})

func NewAuthService(userRepo *repository.UserRepository, auditRepo *repository.AuditRepository, tokens *utils.TokenManager) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		auditRepo:       auditRepo,
		tokens:          tokens,
		comparePassword: utils.ComparePassword,
	}
}

// LoginResponse represents the response structure for login
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresIn   int64        `json:"expiresIn"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID     uint     `json:"id"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Roles  []string `json:"roles"`
	Avatar *string  `json:"avatar"`
}

// NewUserResponse renders a user with its computed roles
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Roles: models.RoleStrings(u),
	}
}

// Login authenticates a user and returns an access token. An unknown email
// and a wrong password produce the same error; a disabled account is
// reported only once the password has been verified.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.comparePassword(unknownUserHash(), password)
			return nil, newError(ErrUnauthorized, "invalid credentials")
		}
		return nil, errors.Wrap(err, "find user")
	}

	if !s.comparePassword(user.HashedPassword, password) {
		return nil, newError(ErrUnauthorized, "invalid credentials")
	}
	if !user.IsActive {
		return nil, newError(ErrForbidden, "inactive user")
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.Email)
	if err != nil {
		return nil, errors.Wrap(err, "generate access token")
	}

	recordAudit(ctx, s.auditRepo, user, "user_login", fmt.Sprintf("User %s logged in", user.Email))

	return &LoginResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.Expiry().Seconds()),
		User:        NewUserResponse(user),
	}, nil
}

// Authenticate resolves a bearer token to a live, active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	email, err := s.tokens.ValidateAccessToken(token)
	if err != nil {
		return nil, newError(ErrUnauthorized, "invalid or expired token")
	}

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrUnauthorized, "user not found")
		}
		return nil, errors.Wrap(err, "find user")
	}
	if !user.IsActive {
		return nil, newError(ErrForbidden, "inactive user")
	}
	return user, nil
}

// CreateUser registers an account with a hashed password
func (s *AuthService) CreateUser(ctx context.Context, email, name, password string, admin bool) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalidf("email and password are required")
	}

	_, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		return nil, conflictf("email %s already registered", email)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, errors.Wrap(err, "find user")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := &models.User{
		Email:          email,
		HashedPassword: hash,
		Name:           strings.TrimSpace(name),
		IsActive:       true,
		IsAdmin:        admin,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, errors.Wrap(err, "create user")
	}

	recordAudit(ctx, s.auditRepo, nil, "user_create", fmt.Sprintf("User %s created", email))
	return user, nil
}
