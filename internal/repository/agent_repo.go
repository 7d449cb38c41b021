package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"propertycrm/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var ErrDuplicate = errors.New("duplicate record")

type AgentRepository struct {
	db *gorm.DB
}

func NewAgentRepository(db *gorm.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

func (r *AgentRepository) Create(ctx context.Context, a *domain.Agent) error {
	m := toAgentModel(a)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return uniqueViolation(err)
	}
	out, _ := toDomainAgent(m)
	*a = *out
	return nil
}

// AgentChanges lists the agent fields to overwrite; nil fields are left as
// stored.
type AgentChanges struct {
	Name           *string
	Email          *string
	Phone          *string
	WhatsAppNumber *string

	SpecializationAreas *[]string
	SpecializationTypes *[]string
	Languages           *[]string

	TotalLeads      *int
	ConvertedLeads  *int
	AvgResponseTime *int

	IsActive *bool
	MaxLeads *int

	UpdatedAt time.Time
}

func (ch AgentChanges) columns() map[string]any {
	cols := map[string]any{"updated_at": ch.UpdatedAt}
	setString := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	setSet := func(col string, v *[]string) {
		if v != nil {
			cols[col] = encodeSet(*v)
		}
	}
	setInt := func(col string, v *int) {
		if v != nil {
			cols[col] = *v
		}
	}
	setString("name", ch.Name)
	setString("email", ch.Email)
	setString("phone", ch.Phone)
	setString("whatsapp_number", ch.WhatsAppNumber)
	setSet("specialization_areas", ch.SpecializationAreas)
	setSet("specialization_types", ch.SpecializationTypes)
	setSet("languages", ch.Languages)
	setInt("total_leads", ch.TotalLeads)
	setInt("converted_leads", ch.ConvertedLeads)
	setInt("avg_response_time", ch.AvgResponseTime)
	setInt("max_leads", ch.MaxLeads)
	if ch.IsActive != nil {
		cols["is_active"] = *ch.IsActive
	}
	return cols
}

// Update writes only the changed columns, so stored values the caller did not
// touch (including malformed set columns) survive, and returns the reloaded
// agent.
func (r *AgentRepository) Update(ctx context.Context, id int64, ch AgentChanges) (*domain.Agent, error) {
	res := r.db.WithContext(ctx).Model(&agentModel{}).Where("id = ?", id).Updates(ch.columns())
	if res.Error != nil {
		return nil, uniqueViolation(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// GetByID returns the agent even when a specialization column is malformed;
// the decode error is dropped because callers only display the record.
func (r *AgentRepository) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	var m agentModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	a, _ := toDomainAgent(m)
	return a, nil
}

func (r *AgentRepository) List(ctx context.Context, activeOnly bool) ([]domain.Agent, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []agentModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Agent, 0, len(rows))
	for _, m := range rows {
		a, _ := toDomainAgent(m)
		out = append(out, *a)
	}
	return out, nil
}

func (r *AgentRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Agent, error) {
	out := make(map[int64]domain.Agent, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []agentModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		a, _ := toDomainAgent(m)
		out[a.ID] = *a
	}
	return out, nil
}

// ListCandidates loads every active agent with its current active-lead count,
// in id order. Decode failures are attached to the candidate, not returned.
func (r *AgentRepository) ListCandidates(ctx context.Context) ([]domain.AgentCandidate, error) {
	var rows []agentModel
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	counts, err := NewLeadRepository(r.db).ActiveCountsByAgent(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.AgentCandidate, 0, len(rows))
	for _, m := range rows {
		a, decodeErr := toDomainAgent(m)
		out = append(out, domain.AgentCandidate{
			Agent:       *a,
			ActiveLeads: counts[m.ID],
			DecodeErr:   decodeErr,
		})
	}
	return out, nil
}

func uniqueViolation(err error) error {
	if isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

func isUniqueConstraintError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key")
}
