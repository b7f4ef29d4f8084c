package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"adcraft/internal/domain"
	"adcraft/internal/sqlinline"
)

// ImageRepositoryPG implements the metadata store on PostgreSQL.
type ImageRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewImageRepository constructs a new metadata repository instance.
func NewImageRepository(pool *pgxpool.Pool) *ImageRepositoryPG {
	return &ImageRepositoryPG{pool: pool}
}

// Insert records metadata for one persisted artifact.
func (r *ImageRepositoryPG) Insert(ctx context.Context, rec domain.ImageRecord) error {
	_, err := r.pool.Exec(ctx, sqlinline.QInsertImageMetadata,
		rec.ImageID, rec.StoragePath, rec.PublicURL, rec.Prompt, rec.AdText,
		rec.Category, rec.Size, rec.IsReference, rec.Title)
	return err
}

// ListAll returns metadata records newest first with pagination. Reference
// images are filtered out unless includeReference is set.
func (r *ImageRepositoryPG) ListAll(ctx context.Context, limit, offset int, includeReference bool) ([]domain.ImageRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, sqlinline.QSelectImages, limit, offset, includeReference)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

// ListByCategory returns the newest records for one category.
func (r *ImageRepositoryPG) ListByCategory(ctx context.Context, category string, limit int) ([]domain.ImageRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, sqlinline.QSelectImagesByCategory, category, limit)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

// Search matches the query against prompt and ad text.
func (r *ImageRepositoryPG) Search(ctx context.Context, query string, limit int) ([]domain.ImageRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, sqlinline.QSearchImages, query, limit)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

// Delete removes the metadata row for an image.
func (r *ImageRepositoryPG) Delete(ctx context.Context, imageID string) error {
	tag, err := r.pool.Exec(ctx, sqlinline.QDeleteImageMetadata, imageID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectRecords(rows pgx.Rows) ([]domain.ImageRecord, error) {
	defer rows.Close()
	var records []domain.ImageRecord
	for rows.Next() {
		var rec domain.ImageRecord
		if err := rows.Scan(&rec.ImageID, &rec.StoragePath, &rec.PublicURL, &rec.Prompt,
			&rec.AdText, &rec.Category, &rec.Size, &rec.IsReference, &rec.Title, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
