// Package service contains the business logic for the Barberbook API.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. No SQL lives here; services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"barberbook/internal/domain"
	"barberbook/internal/repo"
)

// TokenSigner issues a bearer token for a user id. Satisfied by *token.Manager.
type TokenSigner interface {
	Sign(userID int64) (string, error)
}

// AuthService implements account registration and login.
type AuthService struct {
	users  repo.UserRepo
	tokens TokenSigner
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repo.UserRepo, tokens TokenSigner) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register hashes the password and creates the account. A duplicate email
// propagates as the store's unique-violation error for the classifier.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (domain.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Register: hash: %w", err)
	}

	user, err := s.users.Create(ctx, name, email, string(hash), role)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Register: %w", err)
	}

	tok, err := s.tokens.Sign(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Register: %w", err)
	}
	return user, tok, nil
}

// Login verifies the password for the email and issues a token.
// An unknown email and a wrong password both return
// domain.ErrInvalidCredentials, so callers cannot probe for account existence.
// A deactivated account is rejected before a token is issued.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	creds, err := s.users.GetCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", fmt.Errorf("service.AuthService.Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, creds.UserID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Login: %w", err)
	}
	if !user.IsActive {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	tok, err := s.tokens.Sign(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return user, tok, nil
}
