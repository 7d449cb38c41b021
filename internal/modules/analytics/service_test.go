package analytics

import (
	"context"
	"testing"
	"time"

	"propertycrm/internal/domain"
	"propertycrm/internal/repository"
	"propertycrm/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func setupTestService(t *testing.T) (*Service, *repository.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	svc := NewService(store, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

type fixture struct {
	amy, ben, cat *domain.Agent
}

// seedPortfolio stores three agents, one listing and five leads: four created
// in the last 30 days and one older lead.
func seedPortfolio(t *testing.T, store *repository.Store) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{
		amy: &domain.Agent{Name: "Amy", Email: "amy@example.com", IsActive: true, MaxLeads: 10},
		ben: &domain.Agent{Name: "Ben", Email: "ben@example.com", IsActive: true, MaxLeads: 10},
		cat: &domain.Agent{Name: "Cat", Email: "cat@example.com", MaxLeads: 10},
	}
	for _, a := range []*domain.Agent{f.amy, f.ben, f.cat} {
		require.NoError(t, store.Agents.Create(ctx, a))
	}

	_, err := store.Properties.Upsert(ctx, &domain.Property{
		Title:    "Harbour View 2BR",
		Area:     "Central",
		Source:   domain.Source28Hse,
		SourceID: "28hse-1001",
		Status:   domain.PropertyPublished,
		IsActive: true,
	})
	require.NoError(t, err)

	day := 24 * time.Hour
	leads := []domain.Lead{
		{
			Name: "converted", Source: domain.SourceInstagram, Status: domain.LeadConverted,
			Priority: domain.PriorityHigh, Score: 85, AssignedAgentID: &f.amy.ID, SourcePropertyID: "28hse-1001",
			CreatedAt: fixedNow.Add(-2 * day), UpdatedAt: fixedNow.Add(-day),
		},
		{
			Name: "contacted", Source: domain.SourceInstagram, Status: domain.LeadContacted,
			Score: 30, AssignedAgentID: &f.amy.ID, SourcePropertyID: "28hse-1001",
			CreatedAt: fixedNow.Add(-3*day + time.Hour), UpdatedAt: fixedNow.Add(-3*day + time.Hour),
		},
		{
			Name: "viewing", Source: domain.SourceWhatsApp, Status: domain.LeadViewingScheduled,
			Priority: domain.PriorityUrgent, Score: 55, AssignedAgentID: &f.ben.ID, SourcePropertyID: "999",
			CreatedAt: fixedNow.Add(-day), UpdatedAt: fixedNow.Add(-day),
		},
		{
			Name: "lost", Source: domain.SourceWhatsApp, Status: domain.LeadLost, Score: 10,
			CreatedAt: fixedNow.Add(-5 * day), UpdatedAt: fixedNow.Add(-5 * day),
		},
		{
			Name: "old", CreatedAt: fixedNow.Add(-60 * day), UpdatedAt: fixedNow.Add(-60 * day),
		},
	}
	for i := range leads {
		require.NoError(t, store.Leads.Create(ctx, &leads[i]))
	}

	auto := domain.NewAssignmentInteraction(leads[1].ID, f.amy, "Lead auto-assigned to Amy")
	auto.CreatedAt = leads[1].CreatedAt.Add(time.Minute)
	require.NoError(t, store.Interactions.Create(ctx, auto))
	require.NoError(t, store.Interactions.Create(ctx, &domain.Interaction{
		LeadID:    leads[0].ID,
		AgentID:   &f.amy.ID,
		Type:      domain.InteractionMessage,
		Channel:   domain.ChannelInstagram,
		Direction: domain.DirectionOutbound,
		CreatedAt: leads[0].CreatedAt.Add(3 * time.Hour),
	}))
	return f
}

func TestDashboard(t *testing.T) {
	svc, store := setupTestService(t)
	seedPortfolio(t, store)

	d, err := svc.Dashboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 30, d.PeriodDays)
	assert.Equal(t, int64(5), d.TotalLeads)
	assert.Equal(t, int64(4), d.NewLeads)
	assert.Equal(t, int64(1), d.ConvertedLeads)
	assert.Equal(t, 25.0, d.ConversionRate)
	assert.Equal(t, int64(2), d.UnassignedLeads)
	assert.Equal(t, int64(2), d.Interactions)
	assert.Equal(t, 3.0, d.AvgResponseHours)
	assert.Equal(t, int64(2), d.LeadsBySource[domain.SourceWhatsApp])
	assert.Equal(t, int64(1), d.LeadsByStatus["new"])

	_, err = svc.Dashboard(context.Background(), maxPeriodDays+1)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestLeadsTrendFillsEveryDay(t *testing.T) {
	svc, store := setupTestService(t)
	seedPortfolio(t, store)

	trend, err := svc.LeadsTrend(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []TrendPoint{
		{Date: "2024-04-28", NewLeads: 1},
		{Date: "2024-04-29", NewLeads: 1},
		{Date: "2024-04-30", NewLeads: 1, Conversions: 1},
		{Date: "2024-05-01"},
	}, trend.Points)
}

func TestSourcePerformance(t *testing.T) {
	svc, store := setupTestService(t)
	seedPortfolio(t, store)

	got, err := svc.SourcePerformance(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, []SourcePerformance{
		{Source: "instagram", TotalLeads: 2, ConvertedLeads: 1, ConversionRate: 50, AvgScore: 57.5, HighPriorityLeads: 1},
		{Source: "whatsapp", TotalLeads: 2, AvgScore: 32.5, HighPriorityLeads: 1},
	}, got)
}

func TestAgentComparison(t *testing.T) {
	svc, store := setupTestService(t)
	f := seedPortfolio(t, store)

	got, err := svc.AgentComparison(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, AgentComparison{
		AgentID:          f.amy.ID,
		Name:             "Amy",
		IsActive:         true,
		TotalLeads:       2,
		ConvertedLeads:   1,
		ConversionRate:   50,
		AvgLeadScore:     57.5,
		Interactions:     2,
		AvgResponseHours: 3,
	}, got[0])
	assert.Equal(t, int64(1), got[1].TotalLeads)
	assert.Equal(t, 55.0, got[1].AvgLeadScore)
	assert.Zero(t, got[1].AvgResponseHours)
	assert.Equal(t, AgentComparison{AgentID: f.cat.ID, Name: "Cat"}, got[2])
}

func TestPropertyPerformance(t *testing.T) {
	svc, store := setupTestService(t)
	seedPortfolio(t, store)

	got, err := svc.PropertyPerformance(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "28hse-1001", got[0].PropertyRef)
	require.NotNil(t, got[0].PropertyID)
	assert.Equal(t, "Harbour View 2BR", got[0].Title)
	assert.Equal(t, int64(2), got[0].TotalLeads)
	assert.Equal(t, 50.0, got[0].ConversionRate)

	assert.Equal(t, "999", got[1].PropertyRef)
	assert.Nil(t, got[1].PropertyID)
	assert.Empty(t, got[1].Title)
}

func TestFunnelIsCumulative(t *testing.T) {
	svc, store := setupTestService(t)
	seedPortfolio(t, store)

	f, err := svc.Funnel(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, FunnelStage{Total: 4, Contacted: 3, Qualified: 2, Viewing: 2, Applied: 1, Converted: 1}, f.Stages)
	assert.Equal(t, FunnelRates{
		ContactRate:       75,
		QualificationRate: 50,
		ViewingRate:       50,
		ApplicationRate:   25,
		ConversionRate:    25,
	}, f.Rates)
}

func TestFunnelWithoutLeads(t *testing.T) {
	svc, _ := setupTestService(t)

	f, err := svc.Funnel(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, FunnelStage{}, f.Stages)
	assert.Equal(t, FunnelRates{}, f.Rates)
}

func TestLeadScoring(t *testing.T) {
	svc, store := setupTestService(t)
	seedPortfolio(t, store)

	got, err := svc.LeadScoring(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []ScoreBand{
		{Range: "0-20", Label: "Very Low", Count: 2},
		{Range: "21-40", Label: "Low", Count: 1},
		{Range: "41-60", Label: "Medium", Count: 1},
		{Range: "61-80", Label: "High"},
		{Range: "81-100", Label: "Very High", Count: 1, ConvertedLeads: 1, ConversionRate: 100},
	}, got.ScoreBands)
	assert.Equal(t, []StatusScore{
		{Status: "contacted", AvgScore: 30, Count: 1},
		{Status: "converted", AvgScore: 85, Count: 1},
		{Status: "lost", AvgScore: 10, Count: 1},
		{Status: "new", AvgScore: 0, Count: 1},
		{Status: "viewing_scheduled", AvgScore: 55, Count: 1},
	}, got.StatusScores)
}
