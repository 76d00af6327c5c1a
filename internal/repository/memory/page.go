// Package memory holds the in-process page store used when no database is
// configured. Contents are lost on restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"sift-api/internal/domain"

	"github.com/google/uuid"
)

// PageRepository is a mutex-guarded map implementing domain.PageRepository
type PageRepository struct {
	mu    sync.RWMutex
	pages map[uuid.UUID]*domain.Page
	now   func() time.Time
}

func NewPageRepository() *PageRepository {
	return &PageRepository{
		pages: make(map[uuid.UUID]*domain.Page),
		now:   time.Now,
	}
}

// Create stores a copy and assigns ID and CreatedAt
func (r *PageRepository) Create(ctx context.Context, page *domain.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	page.ID = uuid.New()
	page.CreatedAt = r.now()
	if page.Tags == nil {
		page.Tags = []string{}
	}
	r.pages[page.ID] = clonePage(page)
	return nil
}

func (r *PageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page, ok := r.pages[id]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	return clonePage(page), nil
}

func (r *PageRepository) List(ctx context.Context, filter domain.PageFilter) ([]*domain.Page, error) {
	r.mu.RLock()
	var out []*domain.Page
	for _, page := range r.pages {
		if !page.IsArchived && matches(page, filter) {
			out = append(out, clonePage(page))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return paginate(out, filter.Offset, filter.Limit), nil
}

func matches(page *domain.Page, filter domain.PageFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		if !strings.Contains(strings.ToLower(page.Title), q) &&
			!strings.Contains(strings.ToLower(page.Summary), q) {
			return false
		}
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" && !page.HasTag(tag) {
		return false
	}
	if category := strings.TrimSpace(filter.Category); category != "" && !page.InCategory(category) {
		return false
	}
	return true
}

func paginate(pages []*domain.Page, offset, limit int) []*domain.Page {
	if offset >= len(pages) {
		return []*domain.Page{}
	}
	pages = pages[offset:]
	if limit > 0 && limit < len(pages) {
		pages = pages[:limit]
	}
	return pages
}

func (r *PageRepository) ListArchived(ctx context.Context) ([]*domain.Page, error) {
	r.mu.RLock()
	out := []*domain.Page{}
	for _, page := range r.pages {
		if page.IsArchived {
			out = append(out, clonePage(page))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PageRepository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) (*domain.Page, error) {
	return r.update(id, func(p *domain.Page) { p.IsArchived = archived })
}

func (r *PageRepository) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) (*domain.Page, error) {
	return r.update(id, func(p *domain.Page) { p.IsPinned = pinned })
}

func (r *PageRepository) UpdateImageURL(ctx context.Context, id uuid.UUID, imageURL string) error {
	_, err := r.update(id, func(p *domain.Page) { p.Metadata.ImageURL = &imageURL })
	return err
}

func (r *PageRepository) update(id uuid.UUID, mutate func(*domain.Page)) (*domain.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	page, ok := r.pages[id]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	mutate(page)
	return clonePage(page), nil
}

func (r *PageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pages[id]; !ok {
		return domain.ErrPageNotFound
	}
	delete(r.pages, id)
	return nil
}

func (r *PageRepository) ListImages(ctx context.Context) ([]domain.PageImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var images []domain.PageImage
	for _, page := range r.pages {
		if page.Metadata.ImageURL != nil && *page.Metadata.ImageURL != "" {
			images = append(images, domain.PageImage{
				ID:       page.ID,
				Title:    page.Title,
				ImageURL: *page.Metadata.ImageURL,
			})
		}
	}
	return images, nil
}

func (r *PageRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, page := range r.pages {
		if page.IsArchived {
			continue
		}
		category := page.Metadata.Category
		if category == "" {
			category = domain.CategoryRandom
		}
		counts[category]++
	}
	return counts, nil
}

// clonePage copies the slices and pointers callers could otherwise mutate
func clonePage(p *domain.Page) *domain.Page {
	cp := *p
	cp.Tags = append([]string{}, p.Tags...)
	if p.Metadata.ImageURL != nil {
		img := *p.Metadata.ImageURL
		cp.Metadata.ImageURL = &img
	}
	return &cp
}
