package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/retail-stock-api/internal/domain"
)

func TestWrapWriteErr(t *testing.T) {
	dup := wrapWriteErr("insert sale", &pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, dup, domain.ErrDuplicate)

	fk := wrapWriteErr("insert sale line", &pgconn.PgError{Code: "23503"})
	assert.ErrorIs(t, fk, domain.ErrConsistency)

	other := wrapWriteErr("insert return", errors.New("conexión cerrada"))
	assert.NotErrorIs(t, other, domain.ErrConsistency)
	assert.Contains(t, other.Error(), "insert return")
}
