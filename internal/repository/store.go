package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories over one connection or transaction.
type Store struct {
	db *gorm.DB

	Leads        *LeadRepository
	Agents       *AgentRepository
	Interactions *InteractionRepository
	Properties   *PropertyRepository
	Analytics    *AnalyticsRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Leads:        NewLeadRepository(db),
		Agents:       NewAgentRepository(db),
		Interactions: NewInteractionRepository(db),
		Properties:   NewPropertyRepository(db),
		Analytics:    NewAnalyticsRepository(db),
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn against a Store bound to a single database transaction.
// Returning an error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
