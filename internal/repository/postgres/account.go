package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vehicle-rental-desk/internal/domain"
	"vehicle-rental-desk/internal/logger"
	"vehicle-rental-desk/internal/repository"
)

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (username, password_hash, role, name, email, phone, address) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	logger.DatabaseCall("accounts.create", query, "username", a.Username)
	_, err := r.db.ExecContext(ctx, query, a.Username, a.PasswordHash, a.Role, a.Name, a.Email, a.Phone, a.Address)
	if err != nil {
		logger.DatabaseResult("accounts.create", 0, err)
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	logger.DatabaseResult("accounts.create", 1, nil)
	return nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	a := &domain.Account{}
	query := `SELECT username, password_hash, role, name, email, phone, address FROM accounts WHERE username = $1`
	logger.DatabaseCall("accounts.get", query, "username", username)
	err := r.db.QueryRowContext(ctx, query, username).Scan(&a.Username, &a.PasswordHash, &a.Role, &a.Name, &a.Email, &a.Phone, &a.Address)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("accounts.get", 0, nil)
		return nil, repository.ErrNotFound
	}
	if err != nil {
		logger.DatabaseResult("accounts.get", 0, err)
		return nil, err
	}
	logger.DatabaseResult("accounts.get", 1, nil)
	return a, nil
}

func (r *accountRepository) List(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT username, password_hash, role, name, email, phone, address FROM accounts ORDER BY username`
	logger.DatabaseCall("accounts.list", query)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.DatabaseResult("accounts.list", 0, err)
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.Username, &a.PasswordHash, &a.Role, &a.Name, &a.Email, &a.Phone, &a.Address); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("accounts.list", int64(len(accounts)), nil)
	return accounts, nil
}

// Update rewrites the contact fields and role. The password hash is left untouched.
func (r *accountRepository) Update(ctx context.Context, a *domain.Account) error {
	query := `UPDATE accounts SET role=$1, name=$2, email=$3, phone=$4, address=$5 WHERE username=$6`
	logger.DatabaseCall("accounts.update", query, "username", a.Username)
	res, err := r.db.ExecContext(ctx, query, a.Role, a.Name, a.Email, a.Phone, a.Address, a.Username)
	if err != nil {
		logger.DatabaseResult("accounts.update", 0, err)
		return fmt.Errorf("failed to update account: %w", err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("accounts.update", n, nil)
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, username string) error {
	query := `DELETE FROM accounts WHERE username = $1`
	logger.DatabaseCall("accounts.delete", query, "username", username)
	res, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		logger.DatabaseResult("accounts.delete", 0, err)
		return fmt.Errorf("failed to delete account: %w", err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("accounts.delete", n, nil)
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
