package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, classify(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)

	plain := errors.New("conn closed")
	assert.Same(t, plain, classify(plain))
}

func TestClassifyPgErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    *pgconn.PgError
		kind   StoreErrorKind
		column string
	}{
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "updates_slug_key"}, KindUniqueViolation, ""},
		{"undefined column from message", &pgconn.PgError{Code: "42703", Message: `column "image_url" of relation "updates" does not exist`}, KindUndefinedColumn, "image_url"},
		{"undefined column field", &pgconn.PgError{Code: "42703", ColumnName: "slug"}, KindUndefinedColumn, "slug"},
		{"policy", &pgconn.PgError{Code: "42501"}, KindPermissionDenied, ""},
		{"other", &pgconn.PgError{Code: "08006"}, KindUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err)
			kind, storeErr := KindOf(err)
			assert.Equal(t, tt.kind, kind)
			if assert.NotNil(t, storeErr) {
				assert.Equal(t, tt.column, storeErr.Column)
			}
			var pgErr *pgconn.PgError
			assert.ErrorAs(t, err, &pgErr)
		})
	}
}

func TestKindOfPlainError(t *testing.T) {
	kind, storeErr := KindOf(errors.New("x"))
	assert.Equal(t, KindUnknown, kind)
	assert.Nil(t, storeErr)
}
