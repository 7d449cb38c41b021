package repository

import (
	"context"
	"errors"
	"time"

	"propertycrm/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// priorityRankSQL orders leads by priority rank instead of the raw string.
const priorityRankSQL = "CASE priority WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END"

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

type LeadFilter struct {
	Statuses []domain.LeadStatus
	Priority domain.Priority
	AgentID  *int64
	Source   string
	Limit    int
	Offset   int
}

func (r *LeadRepository) Create(ctx context.Context, l *domain.Lead) error {
	m := toLeadModel(l)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*l = *toDomainLead(m)
	return nil
}

// Save writes every column of l.
func (r *LeadRepository) Save(ctx context.Context, l *domain.Lead) error {
	m := toLeadModel(l)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return err
	}
	*l = *toDomainLead(m)
	return nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	var m leadModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return toDomainLead(m), nil
}

// GetByIDForUpdate locks the row on Postgres; SQLite serialises writers anyway.
func (r *LeadRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Lead, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var m leadModel
	if err := q.First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return toDomainLead(m), nil
}

// FindByInstagramHandle returns the oldest lead with the handle. A blank
// handle never matches.
func (r *LeadRepository) FindByInstagramHandle(ctx context.Context, handle string) (*domain.Lead, error) {
	if handle == "" {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, "instagram_handle = ?", handle)
}

// FindByWhatsAppNumber returns the oldest lead with the number. A blank number
// never matches.
func (r *LeadRepository) FindByWhatsAppNumber(ctx context.Context, number string) (*domain.Lead, error) {
	if number == "" {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, "whatsapp_number = ?", number)
}

func (r *LeadRepository) findOne(ctx context.Context, cond string, arg any) (*domain.Lead, error) {
	var m leadModel
	err := r.db.WithContext(ctx).Where(cond, arg).Order("id ASC").Limit(1).Take(&m).Error
	if err != nil {
		return nil, notFound(err)
	}
	return toDomainLead(m), nil
}

func (r *LeadRepository) applyFilter(q *gorm.DB, f LeadFilter) *gorm.DB {
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", statusStrings(f.Statuses))
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", string(f.Priority))
	}
	if f.AgentID != nil {
		q = q.Where("assigned_agent_id = ?", *f.AgentID)
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	return q
}

// List returns one page ordered by priority rank, newest first, plus the
// total number of matching rows.
func (r *LeadRepository) List(ctx context.Context, f LeadFilter) ([]domain.Lead, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&leadModel{}), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.applyFilter(r.db.WithContext(ctx), f).
		Order(priorityRankSQL + " DESC").
		Order("created_at DESC").
		Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var rows []leadModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toDomainLeads(rows), total, nil
}

// ListUnassigned returns unassigned leads in the given statuses, most urgent
// first and oldest first within a priority.
func (r *LeadRepository) ListUnassigned(ctx context.Context, statuses []domain.LeadStatus) ([]domain.Lead, error) {
	var rows []leadModel
	err := r.db.WithContext(ctx).
		Where("assigned_agent_id IS NULL").
		Where("status IN ?", statusStrings(statuses)).
		Order(priorityRankSQL + " DESC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainLeads(rows), nil
}

func (r *LeadRepository) UpdateAssignment(ctx context.Context, leadID, agentID int64, now time.Time) error {
	tx := r.db.WithContext(ctx).Model(&leadModel{}).
		Where("id = ?", leadID).
		Updates(map[string]any{"assigned_agent_id": agentID, "updated_at": now})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignIfUnassigned sets the agent only while the lead has none. It reports
// false when another writer assigned the lead first.
func (r *LeadRepository) AssignIfUnassigned(ctx context.Context, leadID, agentID int64, now time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&leadModel{}).
		Where("id = ? AND assigned_agent_id IS NULL", leadID).
		Updates(map[string]any{"assigned_agent_id": agentID, "updated_at": now})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *LeadRepository) UpdateScore(ctx context.Context, leadID int64, score int, now time.Time) error {
	return r.db.WithContext(ctx).Model(&leadModel{}).
		Where("id = ?", leadID).
		UpdateColumns(map[string]any{"score": score, "updated_at": now}).Error
}

func (r *LeadRepository) CountActiveByAgent(ctx context.Context, agentID int64) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&leadModel{}).
		Where("assigned_agent_id = ? AND status IN ?", agentID, statusStrings(domain.ActiveLeadStatuses)).
		Count(&n).Error
	return int(n), err
}

// ActiveCountsByAgent maps agent id to its active-lead count. Agents without
// active leads are absent.
func (r *LeadRepository) ActiveCountsByAgent(ctx context.Context) (map[int64]int, error) {
	var rows []struct {
		AgentID int64 `gorm:"column:agent_id"`
		Count   int   `gorm:"column:cnt"`
	}
	err := r.db.WithContext(ctx).Model(&leadModel{}).
		Select("assigned_agent_id AS agent_id, COUNT(*) AS cnt").
		Where("assigned_agent_id IS NOT NULL AND status IN ?", statusStrings(domain.ActiveLeadStatuses)).
		Group("assigned_agent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int, len(rows))
	for _, row := range rows {
		out[row.AgentID] = row.Count
	}
	return out, nil
}

type LeadStats struct {
	Total        int64
	ByStatus     map[string]int64
	BySource     map[string]int64
	AverageScore float64
	Unassigned   int64
}

func (r *LeadRepository) Stats(ctx context.Context) (*LeadStats, error) {
	st := &LeadStats{}
	db := r.db.WithContext(ctx)

	var err error
	if st.ByStatus, err = r.countBy(db, "status", nil); err != nil {
		return nil, err
	}
	if st.BySource, err = r.countBy(db, "source", nil); err != nil {
		return nil, err
	}
	for _, n := range st.ByStatus {
		st.Total += n
	}

	var avg struct {
		Avg *float64 `gorm:"column:avg_score"`
	}
	if err := db.Model(&leadModel{}).Select("AVG(score) AS avg_score").Scan(&avg).Error; err != nil {
		return nil, err
	}
	if avg.Avg != nil {
		st.AverageScore = *avg.Avg
	}

	if err := db.Model(&leadModel{}).Where("assigned_agent_id IS NULL").Count(&st.Unassigned).Error; err != nil {
		return nil, err
	}
	return st, nil
}

// CountByStatusForAgent groups an agent's leads by status.
func (r *LeadRepository) CountByStatusForAgent(ctx context.Context, agentID int64) (map[string]int64, error) {
	return r.countBy(r.db.WithContext(ctx), "status", func(q *gorm.DB) *gorm.DB {
		return q.Where("assigned_agent_id = ?", agentID)
	})
}

func (r *LeadRepository) countBy(db *gorm.DB, column string, scope func(*gorm.DB) *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		Key   string `gorm:"column:k"`
		Count int64  `gorm:"column:cnt"`
	}
	q := db.Model(&leadModel{}).Select(column + " AS k, COUNT(*) AS cnt").Group(column)
	if scope != nil {
		q = scope(q)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}

// AgentWorkload holds the per-agent counts behind the workload endpoint.
type AgentWorkload struct {
	Active            int64
	OverdueFollowUps  int64
	HighPriorityLeads int64
}

func (r *LeadRepository) Workload(ctx context.Context, agentID int64, now time.Time) (*AgentWorkload, error) {
	db := r.db.WithContext(ctx)
	open := statusStrings([]domain.LeadStatus{domain.LeadNew, domain.LeadContacted, domain.LeadQualified})
	w := &AgentWorkload{}

	if err := db.Model(&leadModel{}).
		Where("assigned_agent_id = ? AND status IN ?", agentID, statusStrings(domain.ActiveLeadStatuses)).
		Count(&w.Active).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&leadModel{}).
		Where("assigned_agent_id = ? AND status IN ? AND next_follow_up_at < ?", agentID, open, now).
		Count(&w.OverdueFollowUps).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&leadModel{}).
		Where("assigned_agent_id = ? AND status IN ? AND priority IN ?", agentID, open,
			[]string{string(domain.PriorityHigh), string(domain.PriorityUrgent)}).
		Count(&w.HighPriorityLeads).Error; err != nil {
		return nil, err
	}
	return w, nil
}

func (r *LeadRepository) CountCreatedForAgentSince(ctx context.Context, agentID int64, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&leadModel{}).
		Where("assigned_agent_id = ? AND created_at >= ?", agentID, since).
		Count(&n).Error
	return n, err
}

func (r *LeadRepository) CountConvertedForAgentSince(ctx context.Context, agentID int64, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&leadModel{}).
		Where("assigned_agent_id = ? AND status = ? AND updated_at >= ?", agentID, string(domain.LeadConverted), since).
		Count(&n).Error
	return n, err
}

// CreatedAtByID returns creation times for the given lead ids.
func (r *LeadRepository) CreatedAtByID(ctx context.Context, ids []int64) (map[int64]time.Time, error) {
	out := make(map[int64]time.Time, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []leadModel
	if err := r.db.WithContext(ctx).Select("id", "created_at").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.ID] = m.CreatedAt
	}
	return out, nil
}

func toDomainLeads(rows []leadModel) []domain.Lead {
	out := make([]domain.Lead, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainLead(m))
	}
	return out
}

func statusStrings(statuses []domain.LeadStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
