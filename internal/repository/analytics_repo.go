package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"propertycrm/internal/domain"

	"gorm.io/gorm"
)

// AnalyticsRepository runs the read-only aggregate queries behind the
// analytics endpoints.
type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// LeadGroup aggregates the leads sharing one value of a grouping column.
type LeadGroup struct {
	Key          string  `gorm:"column:k"`
	Total        int64   `gorm:"column:total"`
	Converted    int64   `gorm:"column:converted"`
	AvgScore     float64 `gorm:"column:avg_score"`
	HighPriority int64   `gorm:"column:high_priority"`
}

// ResponseSample pairs a lead's creation with one manual outbound contact.
type ResponseSample struct {
	LeadID        int64
	AgentID       *int64
	ContactedAt   time.Time
	LeadCreatedAt time.Time
}

func createdSince(since time.Time) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("created_at >= ?", since)
	}
}

// CountByStatusSince groups the leads created at or after since by status.
func (r *AnalyticsRepository) CountByStatusSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	return NewLeadRepository(r.db).countBy(r.db.WithContext(ctx), "status", createdSince(since))
}

func (r *AnalyticsRepository) CountBySourceSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	return NewLeadRepository(r.db).countBy(r.db.WithContext(ctx), "source", createdSince(since))
}

// CountConvertedSince counts leads that reached converted at or after since,
// using updated_at as the conversion time.
func (r *AnalyticsRepository) CountConvertedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&leadModel{}).
		Where("status = ? AND updated_at >= ?", domain.LeadConverted, since).
		Count(&n).Error
	return n, err
}

func (r *AnalyticsRepository) CountInteractionsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&interactionModel{}).
		Where("created_at >= ?", since).
		Count(&n).Error
	return n, err
}

func (r *AnalyticsRepository) groupStats(db *gorm.DB, column string, scope func(*gorm.DB) *gorm.DB) ([]LeadGroup, error) {
	var rows []LeadGroup
	q := db.Model(&leadModel{}).
		Select(column+" AS k, COUNT(*) AS total, "+
			"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS converted, "+
			"COALESCE(AVG(score), 0) AS avg_score, "+
			"SUM(CASE WHEN priority IN ? THEN 1 ELSE 0 END) AS high_priority",
			string(domain.LeadConverted),
			[]string{string(domain.PriorityHigh), string(domain.PriorityUrgent)}).
		Group(column)
	if scope != nil {
		q = scope(q)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SourceStatsSince aggregates leads created at or after since per source.
func (r *AnalyticsRepository) SourceStatsSince(ctx context.Context, since time.Time) ([]LeadGroup, error) {
	return r.groupStats(r.db.WithContext(ctx), "source", func(q *gorm.DB) *gorm.DB {
		return createdSince(since)(q).Order("k ASC")
	})
}

// AgentStatsSince aggregates assigned leads created at or after since per
// agent. Keys are decimal agent ids.
func (r *AnalyticsRepository) AgentStatsSince(ctx context.Context, since time.Time) ([]LeadGroup, error) {
	return r.groupStats(r.db.WithContext(ctx), "assigned_agent_id", func(q *gorm.DB) *gorm.DB {
		return createdSince(since)(q).Where("assigned_agent_id IS NOT NULL")
	})
}

// PropertyStatsSince returns the limit listings that attracted the most leads
// created at or after since, busiest first.
func (r *AnalyticsRepository) PropertyStatsSince(ctx context.Context, since time.Time, limit int) ([]LeadGroup, error) {
	return r.groupStats(r.db.WithContext(ctx), "source_property_id", func(q *gorm.DB) *gorm.DB {
		return createdSince(since)(q).
			Where("source_property_id IS NOT NULL AND source_property_id <> ''").
			Order("total DESC").Order("k ASC").
			Limit(limit)
	})
}

// StatusStats aggregates every lead per status.
func (r *AnalyticsRepository) StatusStats(ctx context.Context) ([]LeadGroup, error) {
	return r.groupStats(r.db.WithContext(ctx), "status", func(q *gorm.DB) *gorm.DB {
		return q.Order("k ASC")
	})
}

// ScoreBandStats aggregates every lead per score band. uppers holds the
// inclusive upper bound of each band but the last; keys are band indexes.
func (r *AnalyticsRepository) ScoreBandStats(ctx context.Context, uppers []int) ([]LeadGroup, error) {
	var b strings.Builder
	b.WriteString("CASE")
	for i, up := range uppers {
		fmt.Fprintf(&b, " WHEN score <= %d THEN %d", up, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(uppers))
	return r.groupStats(r.db.WithContext(ctx), b.String(), nil)
}

// CreatedTimesSince returns the creation time of every lead created at or
// after since.
func (r *AnalyticsRepository) CreatedTimesSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var rows []leadModel
	if err := r.db.WithContext(ctx).Select("id", "created_at").
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.CreatedAt)
	}
	return out, nil
}

// ConvertedTimesSince returns updated_at of every lead converted at or after
// since.
func (r *AnalyticsRepository) ConvertedTimesSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var rows []leadModel
	if err := r.db.WithContext(ctx).Select("id", "updated_at").
		Where("status = ? AND updated_at >= ?", domain.LeadConverted, since).
		Order("updated_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.UpdatedAt)
	}
	return out, nil
}

// ResponseSamplesSince returns the manual outbound interactions created at or
// after since, paired with the creation time of their lead.
func (r *AnalyticsRepository) ResponseSamplesSince(ctx context.Context, since time.Time) ([]ResponseSample, error) {
	var rows []interactionModel
	if err := r.db.WithContext(ctx).
		Where("direction = ? AND is_automated = ? AND created_at >= ?", domain.DirectionOutbound, false, since).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.LeadID)
	}
	created, err := NewLeadRepository(r.db).CreatedAtByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ResponseSample, 0, len(rows))
	for _, m := range rows {
		c, ok := created[m.LeadID]
		if !ok {
			continue
		}
		out = append(out, ResponseSample{
			LeadID:        m.LeadID,
			AgentID:       m.AgentID,
			ContactedAt:   m.CreatedAt,
			LeadCreatedAt: c,
		})
	}
	return out, nil
}
