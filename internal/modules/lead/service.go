package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"propertycrm/internal/domain"
	"propertycrm/internal/metrics"
	"propertycrm/internal/modules/assignment"
	"propertycrm/internal/modules/matching"
	"propertycrm/internal/modules/scoring"
	"propertycrm/internal/pkg/response"
	"propertycrm/internal/repository"

	"go.uber.org/zap"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type Service struct {
	store  *repository.Store
	picker AgentPicker
	log    *zap.Logger
	now    func() time.Time
}

func NewService(store *repository.Store, picker AgentPicker, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:  store,
		picker: picker,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func (s *Service) List(ctx context.Context, q ListLeadsQuery) ([]domain.Lead, response.Pagination, error) {
	page, perPage := normalizePage(q.Page, q.PerPage)
	f := repository.LeadFilter{
		Source: strings.TrimSpace(q.Source),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if q.Status != "" {
		st := domain.LeadStatus(q.Status)
		if !st.Valid() {
			return nil, response.Pagination{}, ErrInvalidStatus
		}
		f.Statuses = []domain.LeadStatus{st}
	}
	if q.Priority != "" {
		p := domain.Priority(q.Priority)
		if !p.Valid() {
			return nil, response.Pagination{}, ErrInvalidPriority
		}
		f.Priority = p
	}
	if q.AgentID > 0 {
		id := q.AgentID
		f.AgentID = &id
	}

	leads, total, err := s.store.Leads.List(ctx, f)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return leads, response.NewPagination(page, perPage, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Lead, error) {
	l, err := s.store.Leads.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrLeadNotFound)
	}
	if l.IsAssigned() {
		agent, err := s.store.Agents.GetByID(ctx, *l.AssignedAgentID)
		switch {
		case err == nil:
			l.AssignedAgent = agent
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}
	return l, nil
}

// Create stores a manually entered lead. Without an explicit agent the
// matcher picks one; the lead is then scored in the same transaction.
func (s *Service) Create(ctx context.Context, req CreateLeadRequest) (*domain.Lead, error) {
	l := &domain.Lead{
		Name:                 strings.TrimSpace(req.Name),
		Phone:                strings.TrimSpace(req.Phone),
		Email:                strings.TrimSpace(req.Email),
		InstagramHandle:      strings.TrimSpace(req.InstagramHandle),
		WhatsAppNumber:       strings.TrimSpace(req.WhatsAppNumber),
		Source:               strings.TrimSpace(req.Source),
		SourcePostID:         req.SourcePostID,
		SourcePropertyID:     req.SourcePropertyID,
		OriginalMessage:      req.OriginalMessage,
		Status:               domain.LeadStatus(req.Status),
		Priority:             domain.Priority(req.Priority),
		InterestedProperties: req.InterestedProperties,
		BudgetMin:            req.BudgetMin,
		BudgetMax:            req.BudgetMax,
		PreferredAreas:       req.PreferredAreas,
		PropertyType:         strings.TrimSpace(req.PropertyType),
		Bedrooms:             req.Bedrooms,
		MoveInDate:           req.MoveInDate,
		NextFollowUpAt:       req.NextFollowUpAt,
		AssignedAgentID:      req.AssignedAgentID,
		Tags:                 req.Tags,
		Notes:                req.Notes,
	}
	if l.Source == "" {
		l.Source = domain.SourceUnknown
	}
	if l.Status == "" {
		l.Status = domain.LeadNew
	}
	if l.Priority == "" {
		l.Priority = domain.PriorityMedium
	}
	if err := validateLead(l); err != nil {
		return nil, err
	}

	var picked bool
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		if picked, err = s.resolveAgent(ctx, tx, l); err != nil {
			return err
		}
		if err := tx.Leads.Create(ctx, l); err != nil {
			return fmt.Errorf("create lead: %w", err)
		}
		return scoring.Rescore(ctx, tx, l, s.now())
	})
	if err != nil {
		return nil, err
	}
	if picked {
		metrics.RecordAssignment(metrics.ModeAuto, l.AssignedAgentID != nil)
	}
	s.log.Info("lead created", zap.Int64("lead_id", l.ID), zap.String("source", l.Source), zap.Int("score", l.Score))
	return l, nil
}

// resolveAgent checks an explicit agent or asks the matcher for one. picked
// reports whether the matcher was consulted.
func (s *Service) resolveAgent(ctx context.Context, tx *repository.Store, l *domain.Lead) (picked bool, err error) {
	if l.AssignedAgentID != nil && *l.AssignedAgentID == 0 {
		l.AssignedAgentID = nil
	}
	if l.AssignedAgentID != nil {
		if _, err := tx.Agents.GetByID(ctx, *l.AssignedAgentID); err != nil {
			return false, mapNotFound(err, ErrAgentNotFound)
		}
		return false, nil
	}
	agent, err := s.picker.PickAgent(ctx, tx, l)
	if err != nil {
		return true, err
	}
	if agent != nil {
		l.AssignedAgentID = &agent.ID
	}
	return true, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateLeadRequest) (*domain.Lead, error) {
	var l *domain.Lead
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		l, err = tx.Leads.GetByIDForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrLeadNotFound)
		}
		applyUpdate(l, req)
		if err := validateLead(l); err != nil {
			return err
		}
		if req.AssignedAgentID != nil {
			if *req.AssignedAgentID == 0 {
				l.AssignedAgentID = nil
			} else if _, err := tx.Agents.GetByID(ctx, *req.AssignedAgentID); err != nil {
				return mapNotFound(err, ErrAgentNotFound)
			}
		}

		now := s.now()
		l.UpdatedAt = now
		if err := tx.Leads.Save(ctx, l); err != nil {
			return fmt.Errorf("save lead: %w", err)
		}
		return scoring.Rescore(ctx, tx, l, now)
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func applyUpdate(l *domain.Lead, req UpdateLeadRequest) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&l.Name, req.Name)
	setString(&l.Phone, req.Phone)
	setString(&l.Email, req.Email)
	setString(&l.InstagramHandle, req.InstagramHandle)
	setString(&l.WhatsAppNumber, req.WhatsAppNumber)
	setString(&l.PropertyType, req.PropertyType)

	if req.Status != nil {
		l.Status = domain.LeadStatus(*req.Status)
	}
	if req.Priority != nil {
		l.Priority = domain.Priority(*req.Priority)
	}
	if req.InterestedProperties != nil {
		l.InterestedProperties = *req.InterestedProperties
	}
	if req.BudgetMin != nil {
		l.BudgetMin = req.BudgetMin
	}
	if req.BudgetMax != nil {
		l.BudgetMax = req.BudgetMax
	}
	if req.PreferredAreas != nil {
		l.PreferredAreas = *req.PreferredAreas
	}
	if req.Bedrooms != nil {
		l.Bedrooms = req.Bedrooms
	}
	if req.MoveInDate != nil {
		l.MoveInDate = req.MoveInDate
	}
	if req.NextFollowUpAt != nil {
		l.NextFollowUpAt = req.NextFollowUpAt
	}
	if req.AssignedAgentID != nil && *req.AssignedAgentID != 0 {
		id := *req.AssignedAgentID
		l.AssignedAgentID = &id
	}
	if req.Tags != nil {
		l.Tags = *req.Tags
	}
	if req.Notes != nil {
		l.Notes = *req.Notes
	}
}

// Any status may follow any other; only the value itself is checked.
func validateLead(l *domain.Lead) error {
	if !l.Status.Valid() {
		return ErrInvalidStatus
	}
	if !l.Priority.Valid() {
		return ErrInvalidPriority
	}
	if l.BudgetMin != nil && l.BudgetMax != nil && *l.BudgetMin > *l.BudgetMax {
		return ErrInvalidBudget
	}
	return nil
}

func (s *Service) ListInteractions(ctx context.Context, leadID int64) ([]domain.Interaction, error) {
	if _, err := s.store.Leads.GetByID(ctx, leadID); err != nil {
		return nil, mapNotFound(err, ErrLeadNotFound)
	}
	return s.store.Interactions.ListByLead(ctx, leadID)
}

var interactionTypes = map[string]bool{
	domain.InteractionMessage:    true,
	domain.InteractionCall:       true,
	domain.InteractionEmail:      true,
	domain.InteractionMeeting:    true,
	domain.InteractionViewing:    true,
	domain.InteractionAssignment: true,
}

// AddInteraction records a contact, stamps the lead's last contact time and
// re-scores it, all in one transaction.
func (s *Service) AddInteraction(ctx context.Context, leadID int64, req CreateInteractionRequest) (*domain.Interaction, error) {
	typ := strings.TrimSpace(req.Type)
	if typ == "" {
		typ = domain.InteractionMessage
	}
	if !interactionTypes[typ] {
		return nil, ErrInvalidType
	}

	in := &domain.Interaction{
		LeadID:       leadID,
		AgentID:      req.AgentID,
		Type:         typ,
		Channel:      req.Channel,
		Direction:    req.Direction,
		Subject:      req.Subject,
		Message:      req.Message,
		Attachments:  req.Attachments,
		IsAutomated:  req.IsAutomated,
		ScheduledAt:  req.ScheduledAt,
		CompletedAt:  req.CompletedAt,
		FollowUpDate: req.FollowUpDate,
		Outcome:      req.Outcome,
		NextAction:   req.NextAction,
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		l, err := tx.Leads.GetByIDForUpdate(ctx, leadID)
		if err != nil {
			return mapNotFound(err, ErrLeadNotFound)
		}
		if in.AgentID != nil {
			if _, err := tx.Agents.GetByID(ctx, *in.AgentID); err != nil {
				return mapNotFound(err, ErrAgentNotFound)
			}
		}

		now := s.now()
		in.CreatedAt = now
		if err := tx.Interactions.Create(ctx, in); err != nil {
			return fmt.Errorf("create interaction: %w", err)
		}

		l.LastContactAt = &now
		if in.FollowUpDate != nil {
			l.NextFollowUpAt = in.FollowUpDate
		}
		l.UpdatedAt = now
		if err := tx.Leads.Save(ctx, l); err != nil {
			return fmt.Errorf("save lead: %w", err)
		}
		return scoring.Rescore(ctx, tx, l, now)
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

type RescoreResult struct {
	Lead      *domain.Lead      `json:"lead"`
	Breakdown scoring.Breakdown `json:"breakdown"`
}

func (s *Service) Rescore(ctx context.Context, leadID int64) (*RescoreResult, error) {
	var res RescoreResult
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		l, err := tx.Leads.GetByIDForUpdate(ctx, leadID)
		if err != nil {
			return mapNotFound(err, ErrLeadNotFound)
		}
		n, err := tx.Interactions.CountByLead(ctx, leadID)
		if err != nil {
			return err
		}
		now := s.now()
		res.Breakdown = scoring.Evaluate(l, n, now)
		if err := scoring.Rescore(ctx, tx, l, now); err != nil {
			return err
		}
		res.Lead = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// RescoreAll re-scores every lead in the given statuses, or all leads when
// none are given. Per-lead failures are logged and counted.
func (s *Service) RescoreAll(ctx context.Context, statuses []domain.LeadStatus) (updated, failed int, err error) {
	leads, _, err := s.store.Leads.List(ctx, repository.LeadFilter{Statuses: statuses})
	if err != nil {
		return 0, 0, err
	}
	for i := range leads {
		if err := ctx.Err(); err != nil {
			return updated, failed, err
		}
		if _, err := s.Rescore(ctx, leads[i].ID); err != nil {
			failed++
			s.log.Error("rescore failed", zap.Int64("lead_id", leads[i].ID), zap.Error(err))
			continue
		}
		updated++
	}
	return updated, failed, nil
}

func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	st, err := s.store.Leads.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsResponse{
		Total:        st.Total,
		ByStatus:     st.ByStatus,
		BySource:     st.BySource,
		AverageScore: st.AverageScore,
		Unassigned:   st.Unassigned,
	}, nil
}

func (s *Service) AgentSuggestions(ctx context.Context, leadID int64) ([]matching.Evaluation, error) {
	_, ranked, err := s.picker.Suggest(ctx, leadID)
	if err != nil {
		if errors.Is(err, assignment.ErrLeadNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return ranked, nil
}

func mapNotFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
