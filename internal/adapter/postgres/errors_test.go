package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hrsdata/codebook-backend/internal/domain"
)

func TestMapErrorNil(t *testing.T) {
	if err := MapError(nil, "codebook", "hrs_core_codebook/2020"); err != nil {
		t.Fatalf("MapError(nil) = %v, want nil", err)
	}
}

func TestMapErrorNoRows(t *testing.T) {
	err := MapError(pgx.ErrNoRows, "codebook", "hrs_core_codebook/2020")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("MapError(ErrNoRows) = %v, want ErrNotFound", err)
	}
}

func TestMapErrorPgCodes(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"23505", domain.ErrAlreadyExists},
		{"23503", domain.ErrNotFound},
		{"23514", domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: tt.code}
			err := MapError(pgErr, "catalog mapping", "SUBHH")
			if !errors.Is(err, tt.want) {
				t.Errorf("MapError(code %s) = %v, want %v", tt.code, err, tt.want)
			}
		})
	}
}

func TestMapErrorContextPassthrough(t *testing.T) {
	err := MapError(context.Canceled, "codebook", "x")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("MapError(Canceled) = %v, want Canceled preserved", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Fatal("context error must not map to a domain sentinel")
	}
}

func TestMapErrorWrapsUnknown(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := MapError(cause, "codebook", "hrs_exit_codebook/1996")
	if err == nil || !errors.Is(err, cause) {
		t.Fatalf("MapError lost the cause: %v", err)
	}
}
