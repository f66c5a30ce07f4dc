package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/leadform/internal/entity"
)

var (
	// ErrDocumentNotFound is returned when no stored document satisfies the lookup.
	ErrDocumentNotFound = errors.New("company document not found")
	// ErrStoreUnavailable marks failures caused by the store being unreachable; callers may retry.
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// DocumentStore is the read-only view of the store the enrichment workflow writes company documents into.
// Name comparisons are case-insensitive and never interpret the input as a pattern.
type DocumentStore interface {
	// FindByNameFold returns the first document whose name equals name ignoring case.
	FindByNameFold(ctx context.Context, name string) (*entity.CompanyDocument, error)
	// ListNames returns every stored name in store order.
	ListNames(ctx context.Context) ([]entity.NameCandidate, error)
	// FindByNameContaining returns the first document whose name contains fragment ignoring case.
	FindByNameContaining(ctx context.Context, fragment string) (*entity.CompanyDocument, error)
	// Get fetches a document by its store identifier.
	Get(ctx context.Context, id string) (*entity.CompanyDocument, error)
	// Ping reports whether the store can currently serve lookups.
	Ping(ctx context.Context) error
}

func wrapStoreError(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08xxx connection exception, 57P0x operator intervention, 53300 too many connections.
		switch {
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08":
			return true
		case pgErr.Code == "57P01", pgErr.Code == "57P02", pgErr.Code == "57P03", pgErr.Code == "53300":
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func nameOf(data map[string]any) string {
	name, _ := data["name"].(string)
	return name
}
