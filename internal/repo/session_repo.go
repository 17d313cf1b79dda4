package repo

import (
	"context"
	"database/sql"
	"errors"

	"ecoshop/internal/models"

	"github.com/rs/zerolog/log"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepo keeps one signed-in user per chat.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) SaveSession(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions (chat_id, token, email, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (chat_id)
		DO UPDATE SET token = $2, email = $3, first_name = $4, last_name = $5, created_at = now()
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx,
		query, s.ChatID, s.Token, s.User.Email,
		s.User.FirstName, s.User.LastName).Scan(&s.CreatedAt)
	if err != nil {
		log.Printf("Ошибка сохранения сессии: %v", err)
		return err
	}
	return nil
}

func (r *SessionRepo) Session(ctx context.Context, chatID int64) (*models.Session, error) {
	query := `
		SELECT chat_id, token, email, first_name, last_name, created_at
		FROM sessions
		WHERE chat_id = $1`

	var s models.Session
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(
		&s.ChatID, &s.Token, &s.User.Email, &s.User.FirstName,
		&s.User.LastName, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) DeleteSession(ctx context.Context, chatID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE chat_id = $1`, chatID)
	if err != nil {
		log.Printf("Ошибка удаления сессии: %v", err)
		return err
	}
	return nil
}
