package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/leadform/internal/entity"
)

type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// PGXDocumentStore reads company documents kept as JSONB rows in PostgreSQL.
type PGXDocumentStore struct {
	pool  pgxPool
	table string
}

// NewPGXDocumentStore wires a pgx backed document store reading from table.
func NewPGXDocumentStore(pool *pgxpool.Pool, table string) *PGXDocumentStore {
	return newPGXDocumentStore(pool, table)
}

func newPGXDocumentStore(pool pgxPool, table string) *PGXDocumentStore {
	if strings.TrimSpace(table) == "" {
		table = "bot_data"
	}
	return &PGXDocumentStore{pool: pool, table: pgx.Identifier{table}.Sanitize()}
}

// FindByNameFold returns the oldest document whose name equals name ignoring case.
func (s *PGXDocumentStore) FindByNameFold(ctx context.Context, name string) (*entity.CompanyDocument, error) {
	query := fmt.Sprintf(`
        SELECT id::text, doc
        FROM %s
        WHERE lower(doc->>'name') = lower($1)
        ORDER BY created_at
        LIMIT 1
    `, s.table)

	return s.queryDocument(ctx, "find document by name", query, name)
}

// ListNames scans every stored name, oldest first.
func (s *PGXDocumentStore) ListNames(ctx context.Context) ([]entity.NameCandidate, error) {
	query := fmt.Sprintf(`
        SELECT id::text, doc->>'name'
        FROM %s
        WHERE doc->>'name' IS NOT NULL
        ORDER BY created_at
    `, s.table)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, wrapStoreError("list document names", err)
	}
	defer rows.Close()

	var candidates []entity.NameCandidate
	for rows.Next() {
		var c entity.NameCandidate
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan document name: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError("iterate document names", err)
	}
	return candidates, nil
}

// FindByNameContaining returns the oldest document whose name contains fragment ignoring case.
func (s *PGXDocumentStore) FindByNameContaining(ctx context.Context, fragment string) (*entity.CompanyDocument, error) {
	query := fmt.Sprintf(`
        SELECT id::text, doc
        FROM %s
        WHERE doc->>'name' ILIKE '%%' || $1 || '%%' ESCAPE '\'
        ORDER BY created_at
        LIMIT 1
    `, s.table)

	return s.queryDocument(ctx, "find document by name fragment", query, escapeLike(fragment))
}

// Get fetches a document by id.
func (s *PGXDocumentStore) Get(ctx context.Context, id string) (*entity.CompanyDocument, error) {
	query := fmt.Sprintf(`SELECT id::text, doc FROM %s WHERE id::text = $1`, s.table)
	return s.queryDocument(ctx, "get document", query, id)
}

// Ping verifies the underlying pool can still serve queries.
func (s *PGXDocumentStore) Ping(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "SELECT 1"); err != nil {
		return wrapStoreError("ping document store", err)
	}
	return nil
}

func (s *PGXDocumentStore) queryDocument(ctx context.Context, op, query string, args ...any) (*entity.CompanyDocument, error) {
	var (
		id  string
		raw []byte
	)
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&id, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, wrapStoreError(op, err)
	}

	data := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
	}

	return &entity.CompanyDocument{ID: id, Name: nameOf(data), Data: data}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

var _ DocumentStore = (*PGXDocumentStore)(nil)
