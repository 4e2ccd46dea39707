package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"vehicle-rental-desk/internal/domain"
	"vehicle-rental-desk/internal/logger"
	"vehicle-rental-desk/internal/repository"
	"vehicle-rental-desk/internal/security"
)

type accountService struct {
	accountRepo repository.AccountRepository
	tokens      security.TokenManager
	log         *slog.Logger
}

func NewAccountService(accountRepo repository.AccountRepository, tokens security.TokenManager) AccountService {
	return &accountService{
		accountRepo: accountRepo,
		tokens:      tokens,
		log:         logger.WithService("account"),
	}
}

func (s *accountService) Register(ctx context.Context, username, password string, role domain.Role, contact domain.Contact) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidAccount)
	}
	if role != domain.RoleAdmin && role != domain.RoleCustomer {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidAccount, role)
	}

	if _, err := s.accountRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateAccount
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acc := &domain.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Contact:      contact.WithDefaults(),
	}
	if err := s.accountRepo.Create(ctx, acc); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}
	s.log.Info("Account registered", "username", username, "role", role)
	return acc, nil
}

// Login checks the password and issues a bearer token. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *accountService) Login(ctx context.Context, username, password string) (*domain.Account, string, error) {
	acc, err := s.accountRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !security.CheckPassword(acc.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(acc.Username, string(acc.Role))
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return acc, token, nil
}

func (s *accountService) Get(ctx context.Context, username string) (*domain.Account, error) {
	acc, err := s.accountRepo.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	return acc, err
}

func (s *accountService) List(ctx context.Context) ([]domain.Account, error) {
	return s.accountRepo.List(ctx)
}

// UpdateContact overwrites only the contact fields that are non-blank in contact.
func (s *accountService) UpdateContact(ctx context.Context, username string, contact domain.Contact) (*domain.Account, error) {
	acc, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(contact.Name); v != "" {
		acc.Name = v
	}
	if v := strings.TrimSpace(contact.Email); v != "" {
		acc.Email = v
	}
	if v := strings.TrimSpace(contact.Phone); v != "" {
		acc.Phone = v
	}
	if v := strings.TrimSpace(contact.Address); v != "" {
		acc.Address = v
	}
	if err := s.accountRepo.Update(ctx, acc); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}

func (s *accountService) Delete(ctx context.Context, username string) error {
	err := s.accountRepo.Delete(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err == nil {
		s.log.Info("Account deleted", "username", username)
	}
	return err
}
