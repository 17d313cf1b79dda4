package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"ecoshop/internal/models"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const uniqueViolation = "23505"

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) CreateUser(ctx context.Context, user *models.Account) error {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, email_verified, confirm_token)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx,
		query, strings.ToLower(user.Email), user.PasswordHash,
		user.FirstName, user.LastName, user.EmailVerified,
		user.ConfirmToken).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		log.Printf("Ошибка создания пользователя: %v", err)
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

const userColumns = `id, email, password_hash, first_name, last_name, email_verified,
		COALESCE(confirm_token, ''), created_at`

func scanUser(row *sql.Row) (*models.Account, error) {
	var u models.Account
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.EmailVerified, &u.ConfirmToken, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UserByEmail(ctx context.Context, email string) (*models.Account, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
}

func (r *UserRepo) UserByID(ctx context.Context, id int64) (*models.Account, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// ConfirmEmail marks the owner of token verified and clears the token.
func (r *UserRepo) ConfirmEmail(ctx context.Context, token string) (*models.Account, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users
		SET email_verified = true, confirm_token = NULL
		WHERE confirm_token = $1
		RETURNING `+userColumns, token))
}
