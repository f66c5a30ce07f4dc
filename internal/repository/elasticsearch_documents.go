package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/octobees/leadform/internal/entity"
)

const (
	elasticsearchScanPageSize = 500
	elasticsearchPITKeepAlive = "1m"
)

// ElasticsearchDocumentStore reads company documents from an Elasticsearch index.
// The index is expected to use dynamic mapping, giving name a keyword sub-field.
type ElasticsearchDocumentStore struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticsearchDocumentStore wires an Elasticsearch backed document store.
func NewElasticsearchDocumentStore(client *elasticsearch.Client, index string) *ElasticsearchDocumentStore {
	if strings.TrimSpace(index) == "" {
		index = "bot_data"
	}
	return &ElasticsearchDocumentStore{client: client, index: index}
}

type esHit struct {
	ID     string         `json:"_id"`
	Source map[string]any `json:"_source"`
	Sort   []any          `json:"sort"`
}

type esSearchResponse struct {
	PitID string `json:"pit_id"`
	Hits  struct {
		Hits []esHit `json:"hits"`
	} `json:"hits"`
}

// FindByNameFold returns the first document whose name equals name ignoring case.
func (s *ElasticsearchDocumentStore) FindByNameFold(ctx context.Context, name string) (*entity.CompanyDocument, error) {
	query := map[string]any{
		"size": 1,
		"sort": []any{"_doc"},
		"query": map[string]any{
			"term": map[string]any{
				"name.keyword": map[string]any{"value": name, "case_insensitive": true},
			},
		},
	}
	return s.searchOne(ctx, "find document by name", query)
}

// ListNames scans every stored name in index order. Pages are read from a single
// point in time so writes landing mid-scan cannot shift the search_after cursor.
func (s *ElasticsearchDocumentStore) ListNames(ctx context.Context) (names []entity.NameCandidate, err error) {
	const op = "list document names"

	pitID, err := s.openPointInTime(ctx)
	if err != nil || pitID == "" {
		return nil, err
	}
	defer func() {
		if closeErr := s.closePointInTime(pitID); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var after []any
	for {
		query := map[string]any{
			"size":    elasticsearchScanPageSize,
			"sort":    []any{map[string]any{"_shard_doc": "asc"}},
			"_source": []string{"name"},
			"query":   map[string]any{"exists": map[string]any{"field": "name"}},
			"pit":     map[string]any{"id": pitID, "keep_alive": elasticsearchPITKeepAlive},
		}
		if after != nil {
			query["search_after"] = after
		}

		parsed, err := s.do(ctx, op, query)
		if err != nil {
			return nil, err
		}
		if parsed == nil {
			return nil, fmt.Errorf("%s: %w: point in time expired", op, ErrStoreUnavailable)
		}
		if parsed.PitID != "" {
			pitID = parsed.PitID
		}

		hits := parsed.Hits.Hits
		for _, hit := range hits {
			if name := nameOf(hit.Source); name != "" {
				names = append(names, entity.NameCandidate{ID: hit.ID, Name: name})
			}
		}
		if len(hits) < elasticsearchScanPageSize {
			return names, nil
		}
		after = hits[len(hits)-1].Sort
	}
}

// openPointInTime returns an empty id when the index does not exist yet.
func (s *ElasticsearchDocumentStore) openPointInTime(ctx context.Context) (string, error) {
	const op = "open point in time"

	res, err := s.client.OpenPointInTime([]string{s.index}, elasticsearchPITKeepAlive,
		s.client.OpenPointInTime.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	defer res.Body.Close()

	if missing, err := checkResponse(op, res); missing || err != nil {
		return "", err
	}

	var pit struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&pit); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, err)
	}
	if pit.ID == "" {
		return "", fmt.Errorf("%s: empty point in time id", op)
	}
	return pit.ID, nil
}

// closePointInTime runs detached from the caller's context so a cancelled scan still releases the PIT.
func (s *ElasticsearchDocumentStore) closePointInTime(id string) error {
	const op = "close point in time"

	body, err := json.Marshal(map[string]string{"id": id})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := s.client.ClosePointInTime(
		s.client.ClosePointInTime.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	defer res.Body.Close()

	// An already expired PIT answers 404, which leaves nothing to release.
	_, err = checkResponse(op, res)
	return err
}

// FindByNameContaining returns the first document whose name contains fragment ignoring case.
func (s *ElasticsearchDocumentStore) FindByNameContaining(ctx context.Context, fragment string) (*entity.CompanyDocument, error) {
	query := map[string]any{
		"size": 1,
		"sort": []any{"_doc"},
		"query": map[string]any{
			"wildcard": map[string]any{
				"name.keyword": map[string]any{
					"value":            "*" + escapeWildcard(fragment) + "*",
					"case_insensitive": true,
				},
			},
		},
	}
	return s.searchOne(ctx, "find document by name fragment", query)
}

// Get fetches a document by its _id.
func (s *ElasticsearchDocumentStore) Get(ctx context.Context, id string) (*entity.CompanyDocument, error) {
	query := map[string]any{
		"size":  1,
		"query": map[string]any{"ids": map[string]any{"values": []string{id}}},
	}
	return s.searchOne(ctx, "get document", query)
}

// Ping checks the cluster answers. A missing index still counts as healthy.
func (s *ElasticsearchDocumentStore) Ping(ctx context.Context) error {
	const op = "ping document store"

	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%s: %w: %s", op, ErrStoreUnavailable, res.Status())
	}
	return nil
}

func (s *ElasticsearchDocumentStore) searchOne(ctx context.Context, op string, query map[string]any) (*entity.CompanyDocument, error) {
	hits, err := s.search(ctx, op, query)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, ErrDocumentNotFound
	}
	hit := hits[0]
	data := hit.Source
	if data == nil {
		data = map[string]any{}
	}
	return &entity.CompanyDocument{ID: hit.ID, Name: nameOf(data), Data: data}, nil
}

func (s *ElasticsearchDocumentStore) search(ctx context.Context, op string, query map[string]any) ([]esHit, error) {
	parsed, err := s.do(ctx, op, query, s.client.Search.WithIndex(s.index))
	if err != nil || parsed == nil {
		return nil, err
	}
	return parsed.Hits.Hits, nil
}

// do runs a search and returns nil without error when the index is missing.
func (s *ElasticsearchDocumentStore) do(ctx context.Context, op string, query map[string]any, opts ...func(*esapi.SearchRequest)) (*esSearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal query: %w", op, err)
	}

	opts = append(opts,
		s.client.Search.WithContext(ctx),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	res, err := s.client.Search(opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	defer res.Body.Close()

	if missing, err := checkResponse(op, res); missing || err != nil {
		return nil, err
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return &parsed, nil
}

func checkResponse(op string, res *esapi.Response) (missing bool, err error) {
	if !res.IsError() {
		return false, nil
	}
	switch {
	case res.StatusCode == http.StatusNotFound:
		// The workflow has not created the index yet.
		return true, nil
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= http.StatusInternalServerError:
		return false, fmt.Errorf("%s: %w: %s", op, ErrStoreUnavailable, res.Status())
	default:
		return false, fmt.Errorf("%s: elasticsearch returned %s", op, res.Status())
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(value string) string {
	return wildcardEscaper.Replace(value)
}

var _ DocumentStore = (*ElasticsearchDocumentStore)(nil)
