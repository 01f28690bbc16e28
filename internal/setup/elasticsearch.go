package setup

import (
	"github.com/cloudyhq/cloudy-server/internal/config"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"github.com/cloudyhq/cloudy-server/internal/pkg/search"
	"go.uber.org/zap"
)

// InitFileIndexer builds the Elasticsearch-backed file index. When no
// addresses are configured the server runs with search disabled.
func InitFileIndexer(cfg *config.ElasticsearchConfig) search.FileIndexer {
	if len(cfg.Addresses) == 0 {
		logger.Warn("Elasticsearch not configured, file search disabled")
		return search.NoopFileIndex{}
	}

	indexer, err := search.NewElasticFileIndex(cfg)
	if err != nil {
		logger.Warn("Elasticsearch unavailable, file search disabled", zap.Error(err))
		return search.NoopFileIndex{}
	}
	return indexer
}
