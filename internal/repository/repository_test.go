package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"propertycrm/internal/domain"
	"propertycrm/internal/repository"
	"propertycrm/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createAgent(t *testing.T, s *repository.Store, name, email string, active bool) *domain.Agent {
	t.Helper()
	a := &domain.Agent{Name: name, Email: email, IsActive: active, MaxLeads: 10}
	require.NoError(t, s.Agents.Create(context.Background(), a))
	return a
}

func TestListUnassignedOrdersByPriorityRankThenAge(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	agent := createAgent(t, s, "Amy", "amy@example.com", true)

	leads := []domain.Lead{
		{Name: "low-old", Priority: domain.PriorityLow, CreatedAt: base},
		{Name: "medium", Priority: domain.PriorityMedium, CreatedAt: base.Add(time.Hour)},
		{Name: "urgent-new", Priority: domain.PriorityUrgent, CreatedAt: base.Add(3 * time.Hour)},
		{Name: "urgent-old", Priority: domain.PriorityUrgent, CreatedAt: base.Add(2 * time.Hour)},
		{Name: "high", Priority: domain.PriorityHigh, CreatedAt: base.Add(4 * time.Hour)},
		{Name: "qualified", Priority: domain.PriorityUrgent, Status: domain.LeadQualified, CreatedAt: base},
		{Name: "contacted", Priority: domain.PriorityLow, Status: domain.LeadContacted, CreatedAt: base.Add(-time.Hour)},
		{Name: "assigned", Priority: domain.PriorityUrgent, AssignedAgentID: &agent.ID, CreatedAt: base},
	}
	for i := range leads {
		require.NoError(t, s.Leads.Create(ctx, &leads[i]))
	}

	got, err := s.Leads.ListUnassigned(ctx, domain.SweepableLeadStatuses)
	require.NoError(t, err)

	names := make([]string, 0, len(got))
	for _, l := range got {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"urgent-old", "urgent-new", "high", "medium", "contacted", "low-old"}, names)
}

func TestListCandidatesCountsActiveLeadsOnly(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	amy := createAgent(t, s, "Amy", "amy@example.com", true)
	ben := createAgent(t, s, "Ben", "ben@example.com", true)
	createAgent(t, s, "Cat", "cat@example.com", false)

	for _, st := range []domain.LeadStatus{domain.LeadNew, domain.LeadViewingScheduled, domain.LeadConverted, domain.LeadLost} {
		l := &domain.Lead{Status: st, AssignedAgentID: &amy.ID}
		require.NoError(t, s.Leads.Create(ctx, l))
	}

	got, err := s.Leads.CountActiveByAgent(ctx, amy.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	candidates, err := s.Agents.ListCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, amy.ID, candidates[0].Agent.ID)
	assert.Equal(t, 2, candidates[0].ActiveLeads)
	assert.Equal(t, ben.ID, candidates[1].Agent.ID)
	assert.Equal(t, 0, candidates[1].ActiveLeads)
}

func TestListCandidatesAttachesDecodeError(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	amy := createAgent(t, s, "Amy", "amy@example.com", true)

	require.NoError(t, s.DB().Exec("UPDATE agents SET specialization_areas = ? WHERE id = ?", "{broken", amy.ID).Error)

	candidates, err := s.Agents.ListCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Error(t, candidates[0].DecodeErr)
	assert.Empty(t, candidates[0].Agent.SpecializationAreas)
}

func TestAgentCreateDuplicateEmail(t *testing.T) {
	s := testutil.NewStore(t)
	createAgent(t, s, "Amy", "amy@example.com", true)

	err := s.Agents.Create(context.Background(), &domain.Agent{Name: "Other", Email: "amy@example.com", IsActive: true})
	assert.True(t, errors.Is(err, repository.ErrDuplicate), "got %v", err)
}

func TestAgentInactiveFlagPersists(t *testing.T) {
	s := testutil.NewStore(t)
	a := createAgent(t, s, "Amy", "amy@example.com", false)

	got, err := s.Agents.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, 10, got.MaxLeads)
}

func TestLeadGetByIDNotFound(t *testing.T) {
	s := testutil.NewStore(t)
	_, err := s.Leads.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLeadSetFieldsRoundTrip(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	l := &domain.Lead{
		PreferredAreas:       []string{"Central", "Central", "Sai Ying Pun"},
		InterestedProperties: []string{"p1", "p2"},
		Tags:                 []string{"vip"},
	}
	require.NoError(t, s.Leads.Create(ctx, l))

	got, err := s.Leads.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Central", "Sai Ying Pun"}, got.PreferredAreas)
	assert.Equal(t, []string{"p1", "p2"}, got.InterestedProperties)
	assert.Equal(t, []string{"vip"}, got.Tags)
}

func TestTransactionRollsBack(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Leads.Create(ctx, &domain.Lead{Name: "ghost"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	leads, total, err := s.Leads.List(ctx, repository.LeadFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, leads)
}

func TestPropertyUpsertKeepsGeneratedContent(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	price := 25000

	p := &domain.Property{Title: "Harbour View 2BR", Source: domain.Source28Hse, SourceID: "hse-1", Price: &price, IsActive: true}
	created, err := s.Properties.Upsert(ctx, p)
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, s.Properties.SaveContent(ctx, p.ID, "Nice flat", "casual", []string{"#hk"}, "Two bed", time.Now()))

	newPrice := 24000
	again := &domain.Property{Title: "Harbour View 2BR (reduced)", Source: domain.Source28Hse, SourceID: "hse-1", Price: &newPrice, IsActive: true}
	created, err = s.Properties.Upsert(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, "Harbour View 2BR (reduced)", again.Title)
	assert.Equal(t, 24000, *again.Price)
	assert.Equal(t, "Nice flat", again.Caption)
	assert.Equal(t, []string{"#hk"}, again.Hashtags)
}

func TestLeadStats(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	for _, l := range []domain.Lead{
		{Source: domain.SourceInstagram, Score: 40},
		{Source: domain.SourceInstagram, Score: 60, Status: domain.LeadConverted},
		{Source: domain.SourceWhatsApp, Score: 20},
	} {
		l := l
		require.NoError(t, s.Leads.Create(ctx, &l))
	}

	st, err := s.Leads.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, st.Total)
	assert.EqualValues(t, 2, st.ByStatus["new"])
	assert.EqualValues(t, 1, st.ByStatus["converted"])
	assert.EqualValues(t, 2, st.BySource["instagram"])
	assert.InDelta(t, 40.0, st.AverageScore, 0.001)
	assert.EqualValues(t, 3, st.Unassigned)
}

func TestFindBySenderIgnoresBlankKey(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	require.NoError(t, s.Leads.Create(ctx, &domain.Lead{Name: "walk-in"}))

	_, err := s.Leads.FindByInstagramHandle(ctx, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.Leads.FindByWhatsAppNumber(ctx, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
