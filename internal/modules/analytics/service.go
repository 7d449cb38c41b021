// Package analytics reports lead funnel, source, agent and listing
// performance from the stored leads and interactions.
package analytics

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"propertycrm/internal/domain"
	"propertycrm/internal/repository"

	"go.uber.org/zap"
)

const (
	defaultPeriodDays = 30
	maxPeriodDays     = 365
	topProperties     = 20
)

var scoreBands = []struct {
	Min, Max int
	Label    string
}{
	{0, 20, "Very Low"},
	{21, 40, "Low"},
	{41, 60, "Medium"},
	{61, 80, "High"},
	{81, 100, "Very High"},
}

// funnelStages lists, per stage, the statuses that have passed it.
var funnelStages = [][]domain.LeadStatus{
	{domain.LeadContacted, domain.LeadQualified, domain.LeadViewingScheduled, domain.LeadApplied, domain.LeadConverted},
	{domain.LeadQualified, domain.LeadViewingScheduled, domain.LeadApplied, domain.LeadConverted},
	{domain.LeadViewingScheduled, domain.LeadApplied, domain.LeadConverted},
	{domain.LeadApplied, domain.LeadConverted},
	{domain.LeadConverted},
}

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

func (s *Service) period(days int) (int, time.Time, error) {
	if days == 0 {
		days = defaultPeriodDays
	}
	if days < 0 || days > maxPeriodDays {
		return 0, time.Time{}, ErrInvalidPeriod
	}
	return days, s.now().AddDate(0, 0, -days), nil
}

// Dashboard combines all-time lead totals with the activity of the last days
// days.
func (s *Service) Dashboard(ctx context.Context, days int) (*Dashboard, error) {
	days, since, err := s.period(days)
	if err != nil {
		return nil, err
	}

	st, err := s.store.Leads.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("lead stats: %w", err)
	}
	d := &Dashboard{
		PeriodDays:      days,
		TotalLeads:      st.Total,
		UnassignedLeads: st.Unassigned,
		AverageScore:    round2(st.AverageScore),
		LeadsByStatus:   st.ByStatus,
		LeadsBySource:   st.BySource,
	}

	created, err := s.store.Analytics.CountByStatusSince(ctx, since)
	if err != nil {
		return nil, err
	}
	for _, n := range created {
		d.NewLeads += n
	}
	if d.ConvertedLeads, err = s.store.Analytics.CountConvertedSince(ctx, since); err != nil {
		return nil, err
	}
	if d.Interactions, err = s.store.Analytics.CountInteractionsSince(ctx, since); err != nil {
		return nil, err
	}
	samples, err := s.store.Analytics.ResponseSamplesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	d.AvgResponseHours = avgResponseHours(samples, nil)
	d.ConversionRate = rate(d.ConvertedLeads, d.NewLeads)
	return d, nil
}

// LeadsTrend returns one point per UTC day, oldest first, including days
// without activity.
func (s *Service) LeadsTrend(ctx context.Context, days int) (*LeadsTrend, error) {
	days, since, err := s.period(days)
	if err != nil {
		return nil, err
	}
	created, err := s.store.Analytics.CreatedTimesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	converted, err := s.store.Analytics.ConvertedTimesSince(ctx, since)
	if err != nil {
		return nil, err
	}

	start := truncateDay(since)
	end := truncateDay(s.now())
	var points []TrendPoint
	index := make(map[string]int)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		index[key] = len(points)
		points = append(points, TrendPoint{Date: key})
	}
	for _, t := range created {
		if i, ok := index[t.UTC().Format(time.DateOnly)]; ok {
			points[i].NewLeads++
		}
	}
	for _, t := range converted {
		if i, ok := index[t.UTC().Format(time.DateOnly)]; ok {
			points[i].Conversions++
		}
	}
	return &LeadsTrend{PeriodDays: days, Points: points}, nil
}

// SourcePerformance compares lead sources over leads created in the period.
func (s *Service) SourcePerformance(ctx context.Context, days int) ([]SourcePerformance, error) {
	_, since, err := s.period(days)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.Analytics.SourceStatsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	out := make([]SourcePerformance, 0, len(groups))
	for _, g := range groups {
		out = append(out, SourcePerformance{
			Source:            g.Key,
			TotalLeads:        g.Total,
			ConvertedLeads:    g.Converted,
			ConversionRate:    rate(g.Converted, g.Total),
			AvgScore:          round2(g.AvgScore),
			HighPriorityLeads: g.HighPriority,
		})
	}
	return out, nil
}

// AgentComparison reports every agent, in id order, over the leads created in
// the period. Agents without leads are listed with zero counts.
func (s *Service) AgentComparison(ctx context.Context, days int) ([]AgentComparison, error) {
	_, since, err := s.period(days)
	if err != nil {
		return nil, err
	}
	agents, err := s.store.Agents.List(ctx, false)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.Analytics.AgentStatsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	byAgent := make(map[int64]repository.LeadGroup, len(groups))
	for _, g := range groups {
		id, err := strconv.ParseInt(g.Key, 10, 64)
		if err != nil {
			s.log.Warn("skipping unparsable agent key", zap.String("key", g.Key))
			continue
		}
		byAgent[id] = g
	}
	samples, err := s.store.Analytics.ResponseSamplesSince(ctx, since)
	if err != nil {
		return nil, err
	}

	out := make([]AgentComparison, 0, len(agents))
	for _, a := range agents {
		g := byAgent[a.ID]
		interactions, err := s.store.Interactions.CountByAgentSince(ctx, a.ID, since)
		if err != nil {
			return nil, err
		}
		agentID := a.ID
		responseHours := avgResponseHours(samples, func(sm repository.ResponseSample) bool {
			return sm.AgentID != nil && *sm.AgentID == agentID
		})
		out = append(out, AgentComparison{
			AgentID:          a.ID,
			Name:             a.Name,
			IsActive:         a.IsActive,
			TotalLeads:       g.Total,
			ConvertedLeads:   g.Converted,
			ConversionRate:   rate(g.Converted, g.Total),
			AvgLeadScore:     round2(g.AvgScore),
			Interactions:     interactions,
			AvgResponseHours: responseHours,
		})
	}
	return out, nil
}

// PropertyPerformance ranks the listings leads enquired about in the period.
// References that no longer resolve to a stored listing are still reported.
func (s *Service) PropertyPerformance(ctx context.Context, days int) ([]PropertyPerformance, error) {
	_, since, err := s.period(days)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.Analytics.PropertyStatsSince(ctx, since, topProperties)
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(groups))
	for _, g := range groups {
		refs = append(refs, g.Key)
	}
	listings, err := s.store.Properties.GetByRefs(ctx, refs)
	if err != nil {
		return nil, err
	}

	out := make([]PropertyPerformance, 0, len(groups))
	for _, g := range groups {
		p := PropertyPerformance{
			PropertyRef:    g.Key,
			TotalLeads:     g.Total,
			ConvertedLeads: g.Converted,
			ConversionRate: rate(g.Converted, g.Total),
			AvgScore:       round2(g.AvgScore),
		}
		if l, ok := listings[g.Key]; ok {
			id := l.ID
			p.PropertyID = &id
			p.Title = l.Title
			p.Area = l.Area
			p.Price = l.Price
		}
		out = append(out, p)
	}
	return out, nil
}

// Funnel reports how far the leads created in the period progressed.
func (s *Service) Funnel(ctx context.Context, days int) (*Funnel, error) {
	days, since, err := s.period(days)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.Analytics.CountByStatusSince(ctx, since)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	reached := make([]int64, len(funnelStages))
	for i, stage := range funnelStages {
		for _, st := range stage {
			reached[i] += counts[string(st)]
		}
	}

	return &Funnel{
		PeriodDays: days,
		Stages: FunnelStage{
			Total:     total,
			Contacted: reached[0],
			Qualified: reached[1],
			Viewing:   reached[2],
			Applied:   reached[3],
			Converted: reached[4],
		},
		Rates: FunnelRates{
			ContactRate:       rate(reached[0], total),
			QualificationRate: rate(reached[1], total),
			ViewingRate:       rate(reached[2], total),
			ApplicationRate:   rate(reached[3], total),
			ConversionRate:    rate(reached[4], total),
		},
	}, nil
}

// LeadScoring relates lead scores to outcomes across all leads. Every band is
// reported, empty ones with zero counts.
func (s *Service) LeadScoring(ctx context.Context) (*LeadScoring, error) {
	uppers := make([]int, 0, len(scoreBands)-1)
	for _, b := range scoreBands[:len(scoreBands)-1] {
		uppers = append(uppers, b.Max)
	}
	groups, err := s.store.Analytics.ScoreBandStats(ctx, uppers)
	if err != nil {
		return nil, err
	}
	byBand := make(map[string]repository.LeadGroup, len(groups))
	for _, g := range groups {
		byBand[g.Key] = g
	}

	res := &LeadScoring{
		ScoreBands:   make([]ScoreBand, 0, len(scoreBands)),
		StatusScores: []StatusScore{},
	}
	for i, b := range scoreBands {
		g := byBand[strconv.Itoa(i)]
		res.ScoreBands = append(res.ScoreBands, ScoreBand{
			Range:          fmt.Sprintf("%d-%d", b.Min, b.Max),
			Label:          b.Label,
			Count:          g.Total,
			ConvertedLeads: g.Converted,
			ConversionRate: rate(g.Converted, g.Total),
		})
	}

	statuses, err := s.store.Analytics.StatusStats(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range statuses {
		res.StatusScores = append(res.StatusScores, StatusScore{
			Status:   g.Key,
			AvgScore: round2(g.AvgScore),
			Count:    g.Total,
		})
	}
	return res, nil
}

// avgResponseHours averages, per lead, the time from creation to the first
// matching contact. Contacts logged before the lead existed are ignored.
func avgResponseHours(samples []repository.ResponseSample, keep func(repository.ResponseSample) bool) float64 {
	first := make(map[int64]time.Duration)
	for _, sm := range samples {
		if keep != nil && !keep(sm) {
			continue
		}
		if sm.ContactedAt.Before(sm.LeadCreatedAt) {
			continue
		}
		gap := sm.ContactedAt.Sub(sm.LeadCreatedAt)
		if cur, ok := first[sm.LeadID]; !ok || gap < cur {
			first[sm.LeadID] = gap
		}
	}
	if len(first) == 0 {
		return 0
	}
	var total time.Duration
	for _, gap := range first {
		total += gap
	}
	return round2(total.Hours() / float64(len(first)))
}

func rate(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
