package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/octobees/leadform/internal/entity"
	"github.com/octobees/leadform/internal/metrics"
	"github.com/octobees/leadform/internal/repository"
)

var (
	// ErrCompanyNotFound is returned when no stored company matches the query yet.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrStoreUnavailable is returned when the document store cannot be reached; the lookup may be retried.
	ErrStoreUnavailable = repository.ErrStoreUnavailable
	// ErrInvalidQuery is returned for a blank company name.
	ErrInvalidQuery = errors.New("company name is required")
)

// RecordCache stores normalised records of exact matches keyed by lookup query.
type RecordCache interface {
	Get(ctx context.Context, query string) (entity.CompanyRecord, bool, error)
	Set(ctx context.Context, query string, record entity.CompanyRecord) error
}

// Lookup is a resolved company record and how it was found.
type Lookup struct {
	Record   entity.CompanyRecord
	Strategy Strategy
	Cached   bool
}

// LookupService resolves user typed company names against the document store.
type LookupService struct {
	store  repository.DocumentStore
	cache  RecordCache
	logger *zap.Logger
}

// NewLookupService wires a lookup service. cache and logger may be nil.
func NewLookupService(store repository.DocumentStore, cache RecordCache, logger *zap.Logger) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupService{store: store, cache: cache, logger: logger}
}

// GetCompany finds the stored company best matching name and returns its normalised record.
func (s *LookupService) GetCompany(ctx context.Context, name string) (*Lookup, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidQuery
	}

	if s.cache != nil {
		record, ok, err := s.cache.Get(ctx, name)
		switch {
		case err != nil:
			s.logger.Warn("record cache read failed", zap.String("company", name), zap.Error(err))
		case ok:
			metrics.CompanyLookups.WithLabelValues(metrics.OutcomeFound, string(StrategyCache)).Inc()
			return &Lookup{Record: record, Strategy: StrategyCache, Cached: true}, nil
		}
	}

	doc, strategy, err := s.resolve(ctx, name)
	if err != nil {
		if errors.Is(err, ErrCompanyNotFound) {
			metrics.CompanyLookups.WithLabelValues(metrics.OutcomeNotFound, "").Inc()
		} else {
			metrics.CompanyLookups.WithLabelValues(metrics.OutcomeError, "").Inc()
		}
		return nil, err
	}

	record := NormalizeRecord(doc.Data)
	metrics.CompanyLookups.WithLabelValues(metrics.OutcomeFound, string(strategy)).Inc()
	s.logger.Debug("company resolved",
		zap.String("company", name),
		zap.String("stored_name", doc.Name),
		zap.String("strategy", string(strategy)),
	)

	// Only exact hits are cached: a substring hit can be outranked by a record written later.
	if s.cache != nil && strategy == StrategyExact {
		if err := s.cache.Set(ctx, name, record); err != nil {
			s.logger.Warn("record cache write failed", zap.String("company", name), zap.Error(err))
		}
	}

	return &Lookup{Record: record, Strategy: strategy}, nil
}

func (s *LookupService) resolve(ctx context.Context, name string) (*entity.CompanyDocument, Strategy, error) {
	doc, err := s.store.FindByNameFold(ctx, name)
	if err == nil {
		return doc, StrategyExact, nil
	}
	if !errors.Is(err, repository.ErrDocumentNotFound) {
		return nil, "", fmt.Errorf("exact lookup: %w", err)
	}

	candidates, err := s.store.ListNames(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("scan names: %w", err)
	}
	if idx, strategy, ok := FindRecord(name, candidates); ok && strategy != StrategyNameContains {
		doc, err := s.store.Get(ctx, candidates[idx].ID)
		if err == nil {
			return doc, strategy, nil
		}
		if !errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, "", fmt.Errorf("fetch matched document: %w", err)
		}
	}

	doc, err = s.store.FindByNameContaining(ctx, name)
	if err == nil {
		return doc, StrategyNameContains, nil
	}
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return nil, "", ErrCompanyNotFound
	}
	return nil, "", fmt.Errorf("substring lookup: %w", err)
}
