package repository

import (
	"context"
	"time"

	"propertycrm/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

func (r *InteractionRepository) Create(ctx context.Context, i *domain.Interaction) error {
	m := toInteractionModel(i)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return err
	}
	agent := i.Agent
	*i = *toDomainInteraction(m)
	i.Agent = agent
	return nil
}

// ListByLead returns the lead's interactions newest first.
func (r *InteractionRepository) ListByLead(ctx context.Context, leadID int64) ([]domain.Interaction, error) {
	var rows []interactionModel
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Interaction, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainInteraction(m))
	}
	return out, nil
}

func (r *InteractionRepository) CountByLead(ctx context.Context, leadID int64) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&interactionModel{}).Where("lead_id = ?", leadID).Count(&n).Error
	return int(n), err
}

func (r *InteractionRepository) CountByAgentSince(ctx context.Context, agentID int64, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&interactionModel{}).
		Where("agent_id = ? AND created_at >= ?", agentID, since).
		Count(&n).Error
	return n, err
}

// CountScheduledOpen counts interactions scheduled in [from, to) that have not
// been completed.
func (r *InteractionRepository) CountScheduledOpen(ctx context.Context, agentID int64, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&interactionModel{}).
		Where("agent_id = ? AND scheduled_at >= ? AND scheduled_at < ? AND completed_at IS NULL", agentID, from, to).
		Count(&n).Error
	return n, err
}

// OutboundSince returns the agent's outbound interactions created at or after since.
func (r *InteractionRepository) OutboundSince(ctx context.Context, agentID int64, since time.Time) ([]domain.Interaction, error) {
	var rows []interactionModel
	err := r.db.WithContext(ctx).
		Where("agent_id = ? AND direction = ? AND created_at >= ?", agentID, domain.DirectionOutbound, since).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Interaction, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainInteraction(m))
	}
	return out, nil
}
