package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"propertycrm/internal/domain"
	"propertycrm/internal/metrics"
	"propertycrm/internal/modules/matching"
	"propertycrm/internal/modules/scoring"
	"propertycrm/internal/repository"

	"go.uber.org/zap"
)

type Service struct {
	store   *repository.Store
	matcher *matching.Matcher
	log     *zap.Logger
	now     func() time.Time
}

func NewService(store *repository.Store, matcher *matching.Matcher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:   store,
		matcher: matcher,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SweepResult summarises one auto-assignment run.
type SweepResult struct {
	Considered int           `json:"considered"`
	Assigned   int           `json:"assigned_count"`
	Unassigned int           `json:"unassigned_count"`
	Skipped    int           `json:"skipped_count"`
	Failed     int           `json:"failed_count"`
	Duration   time.Duration `json:"-"`
}

// PickAgent chooses an agent for lead using the live candidate pool read
// through st. It returns nil when no agent is eligible. The pick is not
// counted in metrics; the caller records it after its transaction commits.
func (s *Service) PickAgent(ctx context.Context, st *repository.Store, lead *domain.Lead) (*domain.Agent, error) {
	candidates, err := st.Agents.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	best, ok := s.matcher.SelectBestAgent(lead, candidates)
	if !ok {
		return nil, nil
	}
	agent := best.Agent
	return &agent, nil
}

// Suggest ranks every active agent for the lead.
func (s *Service) Suggest(ctx context.Context, leadID int64) (*domain.Lead, []matching.Evaluation, error) {
	lead, err := s.store.Leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrLeadNotFound
		}
		return nil, nil, err
	}
	candidates, err := s.store.Agents.ListCandidates(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load candidates: %w", err)
	}
	return lead, s.matcher.Rank(lead, candidates), nil
}

// Sweep assigns every unassigned new or contacted lead, most urgent and
// oldest first. The candidate pool is reloaded for each lead so earlier
// assignments count against capacity. A failure on one lead is logged and
// the sweep moves on; only failing to list the leads aborts the run.
//
// Concurrent assigners are not locked out: two writers can both see the
// last free slot of an agent and overshoot max_leads by one each.
func (s *Service) Sweep(ctx context.Context) (*SweepResult, error) {
	start := time.Now()
	res := &SweepResult{}
	defer func() {
		res.Duration = time.Since(start)
		metrics.SweepDuration.Observe(res.Duration.Seconds())
	}()

	leads, err := s.store.Leads.ListUnassigned(ctx, domain.SweepableLeadStatuses)
	if err != nil {
		return nil, fmt.Errorf("list unassigned leads: %w", err)
	}

	for i := range leads {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		lead := &leads[i]
		res.Considered++

		outcome, err := s.assignOne(ctx, lead)
		switch {
		case err != nil:
			res.Failed++
			metrics.SweepFailures.Inc()
			s.log.Error("auto-assign failed", zap.Int64("lead_id", lead.ID), zap.Error(err))
		case outcome == outcomeAssigned:
			res.Assigned++
		case outcome == outcomeSkipped:
			res.Skipped++
		default:
			res.Unassigned++
		}
	}

	s.log.Info("auto-assign sweep finished",
		zap.Int("considered", res.Considered),
		zap.Int("assigned", res.Assigned),
		zap.Int("unassigned", res.Unassigned),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

type outcome int

const (
	outcomeNoAgent outcome = iota
	outcomeAssigned
	outcomeSkipped
)

func (s *Service) assignOne(ctx context.Context, lead *domain.Lead) (outcome, error) {
	candidates, err := s.store.Agents.ListCandidates(ctx)
	if err != nil {
		return outcomeNoAgent, fmt.Errorf("load candidates: %w", err)
	}
	best, ok := s.matcher.SelectBestAgent(lead, candidates)
	if !ok {
		metrics.RecordAssignment(metrics.ModeSweep, false)
		return outcomeNoAgent, nil
	}
	agent := best.Agent

	result := outcomeAssigned
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		now := s.now()
		assigned, err := tx.Leads.AssignIfUnassigned(ctx, lead.ID, agent.ID, now)
		if err != nil {
			return fmt.Errorf("update lead: %w", err)
		}
		if !assigned {
			result = outcomeSkipped
			return nil
		}

		interaction := domain.NewAssignmentInteraction(lead.ID, &agent, fmt.Sprintf("Lead auto-assigned to %s", agent.Name))
		interaction.CreatedAt = now
		if err := tx.Interactions.Create(ctx, interaction); err != nil {
			return fmt.Errorf("record interaction: %w", err)
		}

		lead.AssignedAgentID = &agent.ID
		return scoring.Rescore(ctx, tx, lead, now)
	})
	if err != nil {
		return outcomeNoAgent, err
	}
	if result == outcomeAssigned {
		metrics.RecordAssignment(metrics.ModeSweep, true)
		s.log.Debug("lead auto-assigned", zap.Int64("lead_id", lead.ID), zap.Int64("agent_id", agent.ID))
	}
	return result, nil
}

// AssignManually gives the lead to the chosen agent if the agent is active
// and under capacity, recording an assignment interaction in the same
// transaction.
func (s *Service) AssignManually(ctx context.Context, leadID, agentID int64) (*domain.Lead, *domain.Agent, error) {
	var (
		lead  *domain.Lead
		agent *domain.Agent
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		lead, err = tx.Leads.GetByIDForUpdate(ctx, leadID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLeadNotFound
			}
			return err
		}
		agent, err = tx.Agents.GetByID(ctx, agentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAgentNotFound
			}
			return err
		}
		if !agent.IsActive {
			return ErrAgentInactive
		}
		active, err := tx.Leads.CountActiveByAgent(ctx, agent.ID)
		if err != nil {
			return fmt.Errorf("count active leads: %w", err)
		}
		if active >= agent.MaxLeads {
			return ErrAgentAtCapacity
		}

		now := s.now()
		if err := tx.Leads.UpdateAssignment(ctx, lead.ID, agent.ID, now); err != nil {
			return fmt.Errorf("update lead: %w", err)
		}
		interaction := domain.NewAssignmentInteraction(lead.ID, agent, fmt.Sprintf("Lead assigned to %s", agent.Name))
		interaction.CreatedAt = now
		if err := tx.Interactions.Create(ctx, interaction); err != nil {
			return fmt.Errorf("record interaction: %w", err)
		}

		lead.AssignedAgentID = &agent.ID
		return scoring.Rescore(ctx, tx, lead, now)
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.RecordAssignment(metrics.ModeManual, true)
	lead.AssignedAgent = agent
	return lead, agent, nil
}
