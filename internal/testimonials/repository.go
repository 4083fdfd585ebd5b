package testimonials

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/storage"
)

type TestimonialRepository interface {
	List(ctx context.Context, publishedOnly bool) ([]*Testimonial, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Testimonial, error)
	Create(ctx context.Context, record *Testimonial) (*Testimonial, error)
	Update(ctx context.Context, record *Testimonial) (*Testimonial, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceTranslations(ctx context.Context, testimonialID uuid.UUID, rows []*TestimonialTranslation, now time.Time) error
}

func NewTestimonialRepository(db *bun.DB) repository.Repository[*Testimonial] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Testimonial]{
		NewRecord: func() *Testimonial { return &Testimonial{} },
		GetID: func(t *Testimonial) uuid.UUID {
			return t.ID
		},
		SetID: func(t *Testimonial, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(t *Testimonial) string {
			return t.ID.String()
		},
	})
}

type BunTestimonialRepository struct {
	db   *bun.DB
	repo repository.Repository[*Testimonial]
}

func NewBunTestimonialRepository(db *bun.DB) *BunTestimonialRepository {
	return &BunTestimonialRepository{db: db, repo: NewTestimonialRepository(db)}
}

func (r *BunTestimonialRepository) List(ctx context.Context, publishedOnly bool) ([]*Testimonial, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if publishedOnly {
				q = q.Where("?TableAlias.published = ?", true)
			}
			return q.OrderExpr("?TableAlias.position ASC, ?TableAlias.created_at DESC")
		}),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "testimonial", "")
	}
	if err := r.attach(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunTestimonialRepository) GetByID(ctx context.Context, id uuid.UUID) (*Testimonial, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, storage.MapRepositoryError(err, "testimonial", id.String())
	}
	if err := r.attach(ctx, []*Testimonial{record}); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunTestimonialRepository) Create(ctx context.Context, record *Testimonial) (*Testimonial, error) {
	return r.repo.Create(ctx, record)
}

func (r *BunTestimonialRepository) Update(ctx context.Context, record *Testimonial) (*Testimonial, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("author_name", "avatar_url", "company", "rating", "position", "published", "updated_at"),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "testimonial", record.ID.String())
	}
	return updated, nil
}

func (r *BunTestimonialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return storage.DeleteWithTranslations[Testimonial, TestimonialTranslation](ctx, r.db, "testimonial", "testimonial_id", id)
}

func (r *BunTestimonialRepository) ReplaceTranslations(ctx context.Context, testimonialID uuid.UUID, rows []*TestimonialTranslation, now time.Time) error {
	return storage.ReplaceTranslations(ctx, r.db, "testimonial_id", testimonialID, rows, now)
}

func (r *BunTestimonialRepository) attach(ctx context.Context, records []*Testimonial) error {
	ids := make([]uuid.UUID, 0, len(records))
	byID := make(map[uuid.UUID]*Testimonial, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
		byID[record.ID] = record
		record.Translations = nil
	}
	rows, err := storage.LoadTranslations[TestimonialTranslation](ctx, r.db, "testimonial_id", ids)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if parent, ok := byID[row.TestimonialID]; ok {
			parent.Translations = append(parent.Translations, row)
		}
	}
	return nil
}
