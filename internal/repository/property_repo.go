package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"propertycrm/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

type PropertyFilter struct {
	Search string
	Status domain.PropertyStatus
	Source string
	Area   string
	Limit  int
	Offset int
}

func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	var m propertyModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return toDomainProperty(m), nil
}

func (r *PropertyRepository) applyFilter(q *gorm.DB, f PropertyFilter) *gorm.DB {
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(development) LIKE ? OR LOWER(address) LIKE ? OR LOWER(area) LIKE ?",
			like, like, like, like)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.Area != "" {
		q = q.Where("area = ?", f.Area)
	}
	return q
}

func (r *PropertyRepository) List(ctx context.Context, f PropertyFilter) ([]domain.Property, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&propertyModel{}), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.applyFilter(r.db.WithContext(ctx), f).Order("created_at DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var rows []propertyModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Property, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainProperty(m))
	}
	return out, total, nil
}

// scrapedColumns are overwritten when a listing is re-imported. Generated
// content and counters are kept.
var scrapedColumns = []string{
	"title", "development", "address", "area", "property_type", "bedrooms", "bathrooms",
	"saleable_area", "gross_area", "floor", "price", "price_per_sqft", "listing_url",
	"images", "agent_name", "agent_phone", "agent_agency", "is_active", "scraped_at", "updated_at",
}

// Upsert inserts p or refreshes the scraped columns of the row with the same
// source and source id. It reports whether a new row was created.
func (r *PropertyRepository) Upsert(ctx context.Context, p *domain.Property) (bool, error) {
	db := r.db.WithContext(ctx)
	var existing int64
	if err := db.Model(&propertyModel{}).
		Where("source = ? AND source_id = ?", p.Source, p.SourceID).
		Count(&existing).Error; err != nil {
		return false, err
	}

	m := toPropertyModel(p)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}, {Name: "source_id"}},
		DoUpdates: clause.AssignmentColumns(scrapedColumns),
	}).Create(&m).Error
	if err != nil {
		return false, err
	}

	var stored propertyModel
	if err := db.Where("source = ? AND source_id = ?", p.Source, p.SourceID).Take(&stored).Error; err != nil {
		return false, err
	}
	*p = *toDomainProperty(stored)
	return existing == 0, nil
}

// SaveContent stores generated marketing copy.
func (r *PropertyRepository) SaveContent(ctx context.Context, id int64, caption, style string, hashtags []string, summary string, at time.Time) error {
	tx := r.db.WithContext(ctx).Model(&propertyModel{}).Where("id = ?", id).Updates(map[string]any{
		"caption":       caption,
		"caption_style": style,
		"hashtags":      encodeSet(hashtags),
		"summary":       summary,
		"enriched_at":   at,
		"updated_at":    at,
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementInquiries bumps the inquiry counter of the listing with the given
// source id or numeric id. Unknown references are ignored.
func (r *PropertyRepository) IncrementInquiries(ctx context.Context, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	return r.db.WithContext(ctx).Model(&propertyModel{}).
		Where("source_id = ? OR CAST(id AS TEXT) = ?", ref, ref).
		UpdateColumn("total_inquiries", gorm.Expr("total_inquiries + 1")).Error
}

// GetByRefs resolves listing references (source id or numeric id, as stored
// on leads) to listings. Unknown references are absent from the map.
func (r *PropertyRepository) GetByRefs(ctx context.Context, refs []string) (map[string]domain.Property, error) {
	out := make(map[string]domain.Property, len(refs))
	if len(refs) == 0 {
		return out, nil
	}
	var rows []propertyModel
	if err := r.db.WithContext(ctx).
		Where("source_id IN ? OR CAST(id AS TEXT) IN ?", refs, refs).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		p := toDomainProperty(m)
		if _, ok := out[m.SourceID]; !ok && m.SourceID != "" {
			out[m.SourceID] = *p
		}
		out[strconv.FormatInt(m.ID, 10)] = *p
	}
	return out, nil
}

type PropertyStats struct {
	Total          int64
	ByStatus       map[string]int64
	BySource       map[string]int64
	Featured       int64
	AveragePrice   float64
	TotalViews     int64
	TotalInquiries int64
}

func (r *PropertyRepository) Stats(ctx context.Context) (*PropertyStats, error) {
	db := r.db.WithContext(ctx)
	st := &PropertyStats{ByStatus: map[string]int64{}, BySource: map[string]int64{}}

	var groups []struct {
		Status string `gorm:"column:status"`
		Source string `gorm:"column:source"`
		Count  int64  `gorm:"column:cnt"`
	}
	if err := db.Model(&propertyModel{}).
		Select("status, source, COUNT(*) AS cnt").
		Group("status, source").
		Scan(&groups).Error; err != nil {
		return nil, err
	}
	for _, g := range groups {
		st.Total += g.Count
		st.ByStatus[g.Status] += g.Count
		st.BySource[g.Source] += g.Count
	}

	if err := db.Model(&propertyModel{}).Where("is_featured = ?", true).Count(&st.Featured).Error; err != nil {
		return nil, err
	}

	var agg struct {
		AvgPrice  *float64 `gorm:"column:avg_price"`
		Views     *int64   `gorm:"column:views"`
		Inquiries *int64   `gorm:"column:inquiries"`
	}
	if err := db.Model(&propertyModel{}).
		Select("AVG(price) AS avg_price, SUM(total_views) AS views, SUM(total_inquiries) AS inquiries").
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	if agg.AvgPrice != nil {
		st.AveragePrice = *agg.AvgPrice
	}
	if agg.Views != nil {
		st.TotalViews = *agg.Views
	}
	if agg.Inquiries != nil {
		st.TotalInquiries = *agg.Inquiries
	}
	return st, nil
}
