package property

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"propertycrm/internal/domain"
	"propertycrm/internal/pkg/response"
	"propertycrm/internal/pkg/utils"
	"propertycrm/internal/repository"

	"go.uber.org/zap"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

var knownSources = map[string]bool{
	domain.Source28Hse:      true,
	domain.SourceSquarefoot: true,
	domain.SourceCentaline:  true,
}

type Service struct {
	store *repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store *repository.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) view(p domain.Property) View {
	return View{
		Property:     p,
		PriceDisplay: utils.FormatPrice(p.Price),
		ScrapedAgo:   utils.Ago(p.ScrapedAt, s.now()),
	}
}

// List treats "all" like an empty filter value.
func (s *Service) List(ctx context.Context, q ListPropertiesQuery) ([]View, response.Pagination, error) {
	page, perPage := q.Page, q.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	f := repository.PropertyFilter{
		Search: q.Search,
		Area:   strings.TrimSpace(q.Area),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if st := strings.TrimSpace(q.Status); st != "" && st != "all" {
		status := domain.PropertyStatus(st)
		if !status.Valid() {
			return nil, response.Pagination{}, ErrInvalidStatus
		}
		f.Status = status
	}
	if src := strings.TrimSpace(q.Source); src != "" && src != "all" {
		f.Source = src
	}

	rows, total, err := s.store.Properties.List(ctx, f)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	out := make([]View, 0, len(rows))
	for _, p := range rows {
		out = append(out, s.view(p))
	}
	return out, response.NewPagination(page, perPage, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*View, error) {
	p, err := s.store.Properties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	v := s.view(*p)
	return &v, nil
}

// Import upserts a scraper batch in one transaction. Re-imported listings
// keep their generated content and counters.
func (s *Service) Import(ctx context.Context, listings []ListingInput) (*ImportResult, error) {
	for i, in := range listings {
		if !knownSources[strings.TrimSpace(in.Source)] {
			return nil, fmt.Errorf("listing %d: %w", i, ErrInvalidSource)
		}
	}

	res := &ImportResult{}
	now := s.now()
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		for i, in := range listings {
			p := toProperty(in, now)
			created, err := tx.Properties.Upsert(ctx, p)
			if err != nil {
				return fmt.Errorf("listing %d: %w", i, err)
			}
			if created {
				res.Created++
			} else {
				res.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("listings imported", zap.Int("created", res.Created), zap.Int("updated", res.Updated))
	return res, nil
}

func toProperty(in ListingInput, now time.Time) *domain.Property {
	scraped := in.ScrapedAt
	if scraped == nil {
		scraped = &now
	}
	return &domain.Property{
		Title:        strings.TrimSpace(in.Title),
		Development:  strings.TrimSpace(in.Development),
		Address:      strings.TrimSpace(in.Address),
		Area:         strings.TrimSpace(in.Area),
		PropertyType: strings.TrimSpace(in.PropertyType),
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		SaleableArea: in.SaleableArea,
		GrossArea:    in.GrossArea,
		Floor:        in.Floor,
		Price:        in.Price,
		PricePerSqft: in.PricePerSqft,
		Source:       strings.TrimSpace(in.Source),
		SourceID:     strings.TrimSpace(in.SourceID),
		ListingURL:   in.ListingURL,
		Images:       in.Images,
		AgentName:    in.AgentName,
		AgentPhone:   in.AgentPhone,
		AgentAgency:  in.AgentAgency,
		Status:       domain.PropertyDraft,
		IsActive:     true,
		ScrapedAt:    scraped,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	st, err := s.store.Properties.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsResponse{
		Total:          st.Total,
		ByStatus:       st.ByStatus,
		BySource:       st.BySource,
		Featured:       st.Featured,
		AveragePrice:   st.AveragePrice,
		TotalViews:     st.TotalViews,
		TotalInquiries: st.TotalInquiries,
	}, nil
}
