// Package matching picks the agent best suited to take a lead.
package matching

import (
	"sort"

	"propertycrm/internal/domain"

	"go.uber.org/zap"
)

const (
	areaMatchPoints   = 20.0
	typeMatchPoints   = 15.0
	workloadBase      = 10
	performanceWeight = 10.0
)

// Evaluation explains how one candidate scored against a lead.
type Evaluation struct {
	AgentID     int64   `json:"agent_id"`
	AgentName   string  `json:"agent_name"`
	Eligible    bool    `json:"eligible"`
	Reason      string  `json:"reason,omitempty"`
	ActiveLeads int     `json:"active_leads"`
	MaxLeads    int     `json:"max_leads"`
	AreaMatch   float64 `json:"area_match"`
	TypeMatch   float64 `json:"type_match"`
	Workload    float64 `json:"workload"`
	Performance float64 `json:"performance"`
	Score       float64 `json:"score"`
	DataWarning string  `json:"data_warning,omitempty"`
}

const (
	ReasonInactive   = "inactive"
	ReasonAtCapacity = "at_capacity"
)

type Matcher struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Matcher{log: log}
}

// SelectBestAgent returns the eligible candidate with the highest score.
// Ties go to the candidate that appears first. ok is false when no candidate
// is eligible.
func (m *Matcher) SelectBestAgent(lead *domain.Lead, candidates []domain.AgentCandidate) (best domain.AgentCandidate, ok bool) {
	bestScore := -1.0
	for _, c := range candidates {
		ev := m.evaluate(lead, c)
		if !ev.Eligible {
			continue
		}
		if ev.Score > bestScore {
			bestScore = ev.Score
			best = c
			ok = true
		}
	}
	return best, ok
}

// Rank evaluates every candidate. Eligible candidates come first by score
// descending, then ineligible ones, each group keeping input order on ties.
func (m *Matcher) Rank(lead *domain.Lead, candidates []domain.AgentCandidate) []Evaluation {
	out := make([]Evaluation, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, m.evaluate(lead, c))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Eligible != out[j].Eligible {
			return out[i].Eligible
		}
		return out[i].Score > out[j].Score
	})
	return out
}

func (m *Matcher) evaluate(lead *domain.Lead, c domain.AgentCandidate) Evaluation {
	a := c.Agent
	ev := Evaluation{
		AgentID:     a.ID,
		AgentName:   a.Name,
		ActiveLeads: c.ActiveLeads,
		MaxLeads:    a.MaxLeads,
	}

	switch {
	case !a.IsActive:
		ev.Reason = ReasonInactive
		return ev
	case c.ActiveLeads >= a.MaxLeads:
		ev.Reason = ReasonAtCapacity
		return ev
	}
	ev.Eligible = true

	if c.DecodeErr != nil {
		// The repository already emptied the unreadable lists.
		m.log.Warn("agent specialization data unreadable, scoring without it",
			zap.Int64("agent_id", a.ID),
			zap.Error(c.DecodeErr),
		)
		ev.DataWarning = c.DecodeErr.Error()
	}

	if lead != nil {
		if intersects(lead.PreferredAreas, a.SpecializationAreas) {
			ev.AreaMatch = areaMatchPoints
		}
		if lead.PropertyType != "" && contains(a.SpecializationTypes, lead.PropertyType) {
			ev.TypeMatch = typeMatchPoints
		}
	}
	ev.Workload = float64(max(0, workloadBase-c.ActiveLeads))
	ev.Performance = a.ConversionRate() * performanceWeight

	ev.Score = ev.AreaMatch + ev.TypeMatch + ev.Workload + ev.Performance
	return ev
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	for _, v := range a {
		if v == "" {
			continue
		}
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
