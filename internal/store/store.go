package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/AbdulmalikDS/Farqad/internal/config"
	"github.com/AbdulmalikDS/Farqad/internal/models"
)

// Store persists projects, assets and chunks in Postgres.
type Store struct {
	db *bun.DB
}

// Connect opens a Postgres connection from the database config.
func Connect(cfg config.DatabaseConfig) (*bun.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is not configured")
	}
	opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
	if cfg.Password != "" {
		opts = append(opts, pgdriver.WithPassword(cfg.Password))
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))

	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}

func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// CreateTables creates the relational schema if it does not exist yet.
func (s *Store) CreateTables(ctx context.Context) error {
	for _, model := range []any{
		(*models.Project)(nil),
		(*models.Asset)(nil),
		(*models.Chunk)(nil),
	} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	return nil
}

// GetOrCreateProject resolves an external project identifier to its record,
// creating the record on first use. The unique constraint on project_id
// guarantees at most one row per identifier even under concurrent callers.
func (s *Store) GetOrCreateProject(ctx context.Context, projectID string) (*models.Project, error) {
	project := new(models.Project)
	err := s.db.NewSelect().
		Model(project).
		Where("project_id = ?", projectID).
		Scan(ctx)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("looking up project %q: %w", projectID, err)
	}

	project = &models.Project{ProjectID: projectID}
	_, err = s.db.NewInsert().
		Model(project).
		On("CONFLICT (project_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating project %q: %w", projectID, err)
	}

	// Re-select to cover the conflict path, where the insert returns no row.
	project = new(models.Project)
	if err := s.db.NewSelect().
		Model(project).
		Where("project_id = ?", projectID).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("reloading project %q: %w", projectID, err)
	}
	return project, nil
}

// CreateAsset records one uploaded file.
func (s *Store) CreateAsset(ctx context.Context, asset *models.Asset) error {
	if _, err := s.db.NewInsert().Model(asset).Exec(ctx); err != nil {
		return fmt.Errorf("creating asset %q: %w", asset.Name, err)
	}
	return nil
}

// InsertChunks stores a batch of chunks and returns the inserted count.
func (s *Store) InsertChunks(ctx context.Context, chunks []models.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	res, err := s.db.NewInsert().Model(&chunks).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("inserting chunks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return len(chunks), nil
	}
	return int(n), nil
}

// ChunksForProject returns a project's chunks in insertion order, optionally
// restricted to one asset. Used to re-index without re-parsing files.
func (s *Store) ChunksForProject(ctx context.Context, projectID int64, assetID *int64) ([]models.Chunk, error) {
	var chunks []models.Chunk
	q := s.db.NewSelect().
		Model(&chunks).
		Where("project_id = ?", projectID).
		Order("asset_id ASC", "order_index ASC")
	if assetID != nil {
		q = q.Where("asset_id = ?", *assetID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("loading chunks for project %d: %w", projectID, err)
	}
	return chunks, nil
}
