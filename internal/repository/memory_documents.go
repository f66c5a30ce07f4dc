package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/octobees/leadform/internal/entity"
)

// MemoryDocumentStore keeps company documents in insertion order. It backs local runs and tests.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs []entity.CompanyDocument
}

// NewMemoryDocumentStore returns a store seeded with the given raw documents.
func NewMemoryDocumentStore(docs ...map[string]any) *MemoryDocumentStore {
	s := &MemoryDocumentStore{}
	for _, doc := range docs {
		s.Put(doc)
	}
	return s
}

// LoadMemoryDocuments decodes a JSON array of documents into a new in-memory store.
func LoadMemoryDocuments(r io.Reader) (*MemoryDocumentStore, error) {
	var docs []map[string]any
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode seed documents: %w", err)
	}
	return NewMemoryDocumentStore(docs...), nil
}

// Put appends a document and returns its generated id.
func (s *MemoryDocumentStore) Put(doc map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.Itoa(len(s.docs) + 1)
	s.docs = append(s.docs, entity.CompanyDocument{ID: id, Name: nameOf(doc), Data: doc})
	return id
}

// FindByNameFold returns the first document whose name equals name ignoring case.
func (s *MemoryDocumentStore) FindByNameFold(ctx context.Context, name string) (*entity.CompanyDocument, error) {
	return s.first(ctx, func(doc entity.CompanyDocument) bool {
		return strings.EqualFold(doc.Name, name)
	})
}

// ListNames returns the stored names in insertion order.
func (s *MemoryDocumentStore) ListNames(ctx context.Context) ([]entity.NameCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make([]entity.NameCandidate, 0, len(s.docs))
	for _, doc := range s.docs {
		if doc.Name != "" {
			candidates = append(candidates, entity.NameCandidate{ID: doc.ID, Name: doc.Name})
		}
	}
	return candidates, nil
}

// FindByNameContaining returns the first document whose name contains fragment ignoring case.
func (s *MemoryDocumentStore) FindByNameContaining(ctx context.Context, fragment string) (*entity.CompanyDocument, error) {
	needle := strings.ToLower(fragment)
	return s.first(ctx, func(doc entity.CompanyDocument) bool {
		return doc.Name != "" && strings.Contains(strings.ToLower(doc.Name), needle)
	})
}

// Get fetches a document by id.
func (s *MemoryDocumentStore) Get(ctx context.Context, id string) (*entity.CompanyDocument, error) {
	return s.first(ctx, func(doc entity.CompanyDocument) bool {
		return doc.ID == id
	})
}

// Ping always succeeds unless ctx is done.
func (s *MemoryDocumentStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryDocumentStore) first(ctx context.Context, match func(entity.CompanyDocument) bool) (*entity.CompanyDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.docs {
		if match(doc) {
			found := doc
			return &found, nil
		}
	}
	return nil, ErrDocumentNotFound
}

var _ DocumentStore = (*MemoryDocumentStore)(nil)
