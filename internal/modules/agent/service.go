package agent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"propertycrm/internal/domain"
	"propertycrm/internal/pkg/response"
	"propertycrm/internal/repository"

	"go.uber.org/zap"
)

const (
	defaultPerPage    = 20
	maxPerPage        = 100
	defaultPeriodDays = 30
)

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

func (s *Service) List(ctx context.Context, activeOnly bool) ([]domain.Agent, error) {
	return s.store.Agents.List(ctx, activeOnly)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Agent, error) {
	a, err := s.store.Agents.GetByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, req CreateAgentRequest) (*domain.Agent, error) {
	a := &domain.Agent{
		Name:                strings.TrimSpace(req.Name),
		Email:               strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:               strings.TrimSpace(req.Phone),
		WhatsAppNumber:      strings.TrimSpace(req.WhatsAppNumber),
		SpecializationAreas: req.SpecializationAreas,
		SpecializationTypes: req.SpecializationTypes,
		Languages:           req.Languages,
		IsActive:            true,
		MaxLeads:            domain.DefaultAgentMaxLeads,
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if req.MaxLeads != nil {
		a.MaxLeads = *req.MaxLeads
	}

	if err := s.store.Agents.Create(ctx, a); err != nil {
		return nil, mapErr(err)
	}
	s.log.Info("agent created", zap.Int64("agent_id", a.ID), zap.String("email", a.Email))
	return a, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateAgentRequest) (*domain.Agent, error) {
	ch := repository.AgentChanges{
		Name:                trimmed(req.Name),
		Email:               trimmed(req.Email),
		Phone:               trimmed(req.Phone),
		WhatsAppNumber:      trimmed(req.WhatsAppNumber),
		SpecializationAreas: req.SpecializationAreas,
		SpecializationTypes: req.SpecializationTypes,
		Languages:           req.Languages,
		TotalLeads:          req.TotalLeads,
		ConvertedLeads:      req.ConvertedLeads,
		AvgResponseTime:     req.AvgResponseTime,
		IsActive:            req.IsActive,
		MaxLeads:            req.MaxLeads,
		UpdatedAt:           s.now(),
	}
	if ch.Email != nil {
		email := strings.ToLower(*ch.Email)
		ch.Email = &email
	}

	a, err := s.store.Agents.Update(ctx, id, ch)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func (s *Service) Leads(ctx context.Context, agentID int64, q AgentLeadsQuery) ([]domain.Lead, response.Pagination, error) {
	if _, err := s.store.Agents.GetByID(ctx, agentID); err != nil {
		return nil, response.Pagination{}, mapErr(err)
	}

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

	f := repository.LeadFilter{AgentID: &agentID, Limit: perPage, Offset: (page - 1) * perPage}
	if q.Status != "" {
		st := domain.LeadStatus(q.Status)
		if !st.Valid() {
			return nil, response.Pagination{}, ErrInvalidStatus
		}
		f.Statuses = []domain.LeadStatus{st}
	}

	leads, total, err := s.store.Leads.List(ctx, f)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return leads, response.NewPagination(page, perPage, total), nil
}

// Workload reports how loaded the agent is right now. Scheduled-today uses
// the UTC calendar day.
func (s *Service) Workload(ctx context.Context, agentID int64) (*Workload, error) {
	a, err := s.store.Agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, mapErr(err)
	}

	now := s.now()
	counts, err := s.store.Leads.Workload(ctx, agentID, now)
	if err != nil {
		return nil, fmt.Errorf("load workload: %w", err)
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	scheduled, err := s.store.Interactions.CountScheduledOpen(ctx, agentID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("count scheduled: %w", err)
	}

	w := &Workload{
		AgentID:           a.ID,
		AgentName:         a.Name,
		ActiveLeads:       counts.Active,
		MaxLeads:          a.MaxLeads,
		OverdueFollowUps:  counts.OverdueFollowUps,
		ScheduledToday:    scheduled,
		HighPriorityLeads: counts.HighPriorityLeads,
		CanTakeMore:       a.IsActive && counts.Active < int64(a.MaxLeads),
	}
	if a.MaxLeads > 0 {
		w.CapacityPct = round1(float64(counts.Active) / float64(a.MaxLeads) * 100)
	}
	return w, nil
}

// Performance summarises the agent's activity over the last days days.
// Response time is measured from lead creation to the agent's first manual
// outbound contact.
func (s *Service) Performance(ctx context.Context, agentID int64, days int) (*Performance, error) {
	if days <= 0 {
		days = defaultPeriodDays
	}
	a, err := s.store.Agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, mapErr(err)
	}
	since := s.now().AddDate(0, 0, -days)

	p := &Performance{Agent: a, PeriodDays: days}
	if p.LeadsByStatus, err = s.store.Leads.CountByStatusForAgent(ctx, agentID); err != nil {
		return nil, err
	}
	if p.NewLeads, err = s.store.Leads.CountCreatedForAgentSince(ctx, agentID, since); err != nil {
		return nil, err
	}
	if p.Interactions, err = s.store.Interactions.CountByAgentSince(ctx, agentID, since); err != nil {
		return nil, err
	}
	if p.ConvertedLeads, err = s.store.Leads.CountConvertedForAgentSince(ctx, agentID, since); err != nil {
		return nil, err
	}
	if p.AvgResponseMinutes, err = s.avgResponseMinutes(ctx, agentID, since); err != nil {
		return nil, err
	}
	if p.NewLeads > 0 {
		p.ConversionRate = round1(float64(p.ConvertedLeads) / float64(p.NewLeads) * 100)
	}
	return p, nil
}

func (s *Service) avgResponseMinutes(ctx context.Context, agentID int64, since time.Time) (float64, error) {
	outbound, err := s.store.Interactions.OutboundSince(ctx, agentID, since)
	if err != nil {
		return 0, err
	}

	first := make(map[int64]time.Time)
	for _, in := range outbound {
		if in.IsAutomated {
			continue
		}
		if t, ok := first[in.LeadID]; !ok || in.CreatedAt.Before(t) {
			first[in.LeadID] = in.CreatedAt
		}
	}
	if len(first) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(first))
	for id := range first {
		ids = append(ids, id)
	}
	created, err := s.store.Leads.CreatedAtByID(ctx, ids)
	if err != nil {
		return 0, err
	}

	var total float64
	n := 0
	for id, replied := range first {
		c, ok := created[id]
		if !ok || replied.Before(c) {
			continue
		}
		total += replied.Sub(c).Minutes()
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return round1(total / float64(n)), nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrAgentNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrAgentEmailExists
	}
	return err
}
