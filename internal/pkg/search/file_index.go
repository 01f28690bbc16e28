package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cloudyhq/cloudy-server/internal/config"
	"github.com/cloudyhq/cloudy-server/internal/models"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

// FileIndexer keeps the searchable file-name index in sync with the metadata
// store. Implementations must be safe to call from request handlers; callers
// treat failures as non-fatal.
type FileIndexer interface {
	Index(ctx context.Context, file *models.File) error
	Delete(ctx context.Context, fileID uint64) error
	Search(ctx context.Context, ownerID uint64, query string, limit int) ([]uint64, error)
}

type fileDoc struct {
	ID          uint64 `json:"id"`
	OwnerID     uint64 `json:"owner_id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
}

// ElasticFileIndex indexes file metadata in Elasticsearch.
type ElasticFileIndex struct {
	client *elasticsearch.Client
	index  string
}

var _ FileIndexer = (*ElasticFileIndex)(nil)

func NewElasticFileIndex(cfg *config.ElasticsearchConfig) (*ElasticFileIndex, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create Elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("connect to Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("Elasticsearch info: %s", res.Status())
	}

	logger.Info("Elasticsearch client initialized", zap.Strings("addresses", cfg.Addresses))
	return &ElasticFileIndex{client: client, index: cfg.FilesIndex}, nil
}

func (s *ElasticFileIndex) Index(ctx context.Context, file *models.File) error {
	doc := fileDoc{
		ID:          file.ID,
		OwnerID:     file.OwnerID,
		Name:        file.Name,
		ContentType: file.ContentType,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal file doc: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithDocumentID(strconv.FormatUint(file.ID, 10)),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index file doc: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index file doc: %s", res.Status())
	}
	return nil
}

func (s *ElasticFileIndex) Delete(ctx context.Context, fileID uint64) error {
	res, err := s.client.Delete(
		s.index,
		strconv.FormatUint(fileID, 10),
		s.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete file doc: %w", err)
	}
	defer res.Body.Close()
	// 404 just means the doc was never indexed; nothing to clean up.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete file doc: %s", res.Status())
	}
	return nil
}

// Search returns the ids of the owner's files whose names match the query.
func (s *ElasticFileIndex) Search(ctx context.Context, ownerID uint64, query string, limit int) ([]uint64, error) {
	q := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"match": map[string]any{"name": query},
				},
				"filter": map[string]any{
					"term": map[string]any{"owner_id": ownerID},
				},
			},
		},
		"size": limit,
	}
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshal search query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search files: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search files: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source fileDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uint64, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}
	return ids, nil
}

// NoopFileIndex is used when Elasticsearch is not configured.
type NoopFileIndex struct{}

var _ FileIndexer = NoopFileIndex{}

func (NoopFileIndex) Index(ctx context.Context, file *models.File) error { return nil }
func (NoopFileIndex) Delete(ctx context.Context, fileID uint64) error    { return nil }
func (NoopFileIndex) Search(ctx context.Context, ownerID uint64, query string, limit int) ([]uint64, error) {
	return nil, nil
}
