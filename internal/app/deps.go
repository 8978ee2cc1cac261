package app

import (
	"context"
	"fmt"

	"github.com/J0na555/ExitPrep/internal/config"
	"github.com/J0na555/ExitPrep/internal/storage/elastic"
	"github.com/J0na555/ExitPrep/internal/storage/minio_storage"
	"github.com/J0na555/ExitPrep/internal/storage/postgres"
)

// OpenPostgres connects to the database and applies the schema.
func OpenPostgres(ctx context.Context, cfg config.Postgres) (*postgres.Storage, error) {
	pg, err := postgres.NewPostgresPool(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}

// OpenSearchIndex returns nil when Elasticsearch is disabled.
func OpenSearchIndex(ctx context.Context, cfg config.ES) (*elastic.QuestionSearchRepo, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client, err := elastic.NewElasticClient(ctx, cfg.Username, cfg.Password, cfg.Hosts)
	if err != nil {
		return nil, err
	}
	repo := elastic.NewQuestionSearchRepository(client, cfg.Index)
	if err := repo.CreateIndexIfNotExist(ctx); err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	return repo, nil
}

// OpenArchive returns nil when MinIO is disabled.
func OpenArchive(ctx context.Context, cfg config.Minio) (*minio_storage.PaperArchive, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	storage, err := minio_storage.NewMinioStorage(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	return minio_storage.NewPaperArchive(ctx, storage, cfg.Bucket)
}
