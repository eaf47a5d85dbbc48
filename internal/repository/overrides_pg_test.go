package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewOverrideStore(t *testing.T) {
	pool := &pgxpool.Pool{}
	store := NewOverrideStore(pool)
	assert.NotNil(t, store)
}
