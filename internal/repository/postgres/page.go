package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sift-api/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PageRepository implements the domain.PageRepository interface using PostgreSQL
type PageRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPageRepository creates a new PostgreSQL page repository
func NewPageRepository(db *sql.DB, logger *slog.Logger) *PageRepository {
	return &PageRepository{
		db:     db,
		logger: logger,
	}
}

const pageColumns = `id, url, platform, title, summary, content, tags,
	metadata, is_pinned, is_archived, created_at`

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PageRepository) scanPage(row rowScanner) (*domain.Page, error) {
	page := &domain.Page{}
	var metadataBytes []byte // JSONB arrives as raw bytes

	err := row.Scan(
		&page.ID,
		&page.URL,
		&page.Platform,
		&page.Title,
		&page.Summary,
		&page.Content,
		pq.Array(&page.Tags),
		&metadataBytes,
		&page.IsPinned,
		&page.IsArchived,
		&page.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if page.Tags == nil {
		page.Tags = []string{}
	}

	if len(metadataBytes) > 0 {
		if err := json.Unmarshal(metadataBytes, &page.Metadata); err != nil {
			// Hand-edited rows may carry odd metadata; keep the page readable
			r.logger.Warn("Failed to unmarshal page metadata",
				"error", err,
				"page_id", page.ID,
				"metadata_bytes", string(metadataBytes),
			)
		}
	}
	return page, nil
}

// Create inserts a new page. The database assigns id and created_at.
func (r *PageRepository) Create(ctx context.Context, page *domain.Page) error {
	metadataJSON, err := json.Marshal(page.Metadata)
	if err != nil {
		r.logger.Error("Failed to marshal page metadata", "error", err, "url", page.URL)
		return fmt.Errorf("failed to marshal page metadata: %w", err)
	}

	tags := page.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		INSERT INTO pages (url, platform, title, summary, content, tags, metadata, is_pinned, is_archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		page.URL,
		page.Platform,
		page.Title,
		page.Summary,
		page.Content,
		pq.Array(tags),
		metadataJSON,
		page.IsPinned,
		page.IsArchived,
	).Scan(&page.ID, &page.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create page",
			"error", err,
			"url", page.URL,
		)
		return fmt.Errorf("failed to create page: %w", err)
	}

	r.logger.Info("Page created successfully",
		"page_id", page.ID,
		"url", page.URL,
		"platform", page.Platform,
	)
	return nil
}

// GetByID retrieves a page by its UUID
func (r *PageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Page, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id)

	page, err := r.scanPage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug("Page not found", "page_id", id)
			return nil, domain.ErrPageNotFound
		}
		r.logger.Error("Failed to query page", "error", err, "page_id", id)
		return nil, fmt.Errorf("failed to query page: %w", err)
	}
	return page, nil
}

// List returns non-archived pages, pinned first then newest
func (r *PageRepository) List(ctx context.Context, filter domain.PageFilter) ([]*domain.Page, error) {
	where, args := buildPageFilter(filter)

	query := `SELECT ` + pageColumns + ` FROM pages WHERE ` + where +
		` ORDER BY is_pinned DESC, created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return r.queryPages(ctx, query, args...)
}

// buildPageFilter turns a filter into a WHERE clause with positional args
func buildPageFilter(filter domain.PageFilter) (string, []any) {
	clauses := []string{"is_archived = FALSE"}
	var args []any

	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR summary ILIKE $%d)", n, n))
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		args = append(args, tag)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE lower(t) = lower($%d))", len(args)))
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		args = append(args, category)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(metadata->>'category' = $%d OR $%d = ANY(tags))", n, n))
	}

	return strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListArchived returns archived pages, newest first
func (r *PageRepository) ListArchived(ctx context.Context) ([]*domain.Page, error) {
	return r.queryPages(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE is_archived = TRUE ORDER BY created_at DESC`)
}

func (r *PageRepository) queryPages(ctx context.Context, query string, args ...any) ([]*domain.Page, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query pages", "error", err)
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	pages := []*domain.Page{}
	for rows.Next() {
		page, err := r.scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pages: %w", err)
	}
	return pages, nil
}

// SetArchived flips the archive flag and returns the updated page
func (r *PageRepository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) (*domain.Page, error) {
	return r.updateFlag(ctx, id, "is_archived", archived)
}

// SetPinned flips the pin flag and returns the updated page
func (r *PageRepository) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) (*domain.Page, error) {
	return r.updateFlag(ctx, id, "is_pinned", pinned)
}

// updateFlag only ever receives one of the two column names above
func (r *PageRepository) updateFlag(ctx context.Context, id uuid.UUID, column string, value bool) (*domain.Page, error) {
	query := `UPDATE pages SET ` + column + ` = $1 WHERE id = $2 RETURNING ` + pageColumns

	page, err := r.scanPage(r.db.QueryRowContext(ctx, query, value, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("No page found for update", "page_id", id, "column", column)
			return nil, domain.ErrPageNotFound
		}
		r.logger.Error("Failed to update page", "error", err, "page_id", id, "column", column)
		return nil, fmt.Errorf("failed to update page: %w", err)
	}

	r.logger.Info("Page updated successfully", "page_id", id, column, value)
	return page, nil
}

// Delete removes a page by ID
func (r *PageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete page", "error", err, "page_id", id)
		return fmt.Errorf("failed to delete page: %w", err)
	}
	return r.requireRow(result, id)
}

// UpdateImageURL rewrites only metadata.image_url
func (r *PageRepository) UpdateImageURL(ctx context.Context, id uuid.UUID, imageURL string) error {
	query := `
		UPDATE pages
		SET metadata = jsonb_set(metadata, '{image_url}', to_jsonb($1::text), true)
		WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, imageURL, id)
	if err != nil {
		r.logger.Error("Failed to update image URL", "error", err, "page_id", id)
		return fmt.Errorf("failed to update image url: %w", err)
	}
	if err := r.requireRow(result, id); err != nil {
		return err
	}

	r.logger.Info("Image URL updated", "page_id", id, "image_url", imageURL)
	return nil
}

func (r *PageRepository) requireRow(result sql.Result, id uuid.UUID) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Failed to get rows affected", "error", err)
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrPageNotFound
	}
	return nil
}

// ListImages returns every page with a non-empty image URL
func (r *PageRepository) ListImages(ctx context.Context) ([]domain.PageImage, error) {
	query := `
		SELECT id, title, metadata->>'image_url'
		FROM pages
		WHERE COALESCE(metadata->>'image_url', '') <> ''
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query page images", "error", err)
		return nil, fmt.Errorf("failed to query page images: %w", err)
	}
	defer rows.Close()

	var images []domain.PageImage
	for rows.Next() {
		var img domain.PageImage
		if err := rows.Scan(&img.ID, &img.Title, &img.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan page image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// CountByCategory counts non-archived pages per metadata category
func (r *PageRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT COALESCE(NULLIF(metadata->>'category', ''), $1), COUNT(*)
		FROM pages
		WHERE is_archived = FALSE
		GROUP BY 1`

	rows, err := r.db.QueryContext(ctx, query, domain.CategoryRandom)
	if err != nil {
		r.logger.Error("Failed to count pages", "error", err)
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[category] += n
	}
	return counts, rows.Err()
}
