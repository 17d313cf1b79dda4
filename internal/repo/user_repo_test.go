package repo

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "users_email_key"}

	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert user: %w", dup)))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"})) // foreign key
	assert.False(t, isUniqueViolation(sql.ErrNoRows))
	assert.False(t, isUniqueViolation(nil))
}
