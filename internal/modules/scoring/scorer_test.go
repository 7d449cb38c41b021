package scoring

import (
	"strings"
	"testing"
	"time"

	"propertycrm/internal/domain"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func fullLead() *domain.Lead {
	return &domain.Lead{
		Name:                 "Chan Tai Man",
		Phone:                "+852 9123 4567",
		Email:                "chan@example.com",
		WhatsAppNumber:       "+85291234567",
		InstagramHandle:      "chantm",
		OriginalMessage:      strings.Repeat("x", 200),
		BudgetMin:            intPtr(15000),
		BudgetMax:            intPtr(25000),
		PreferredAreas:       []string{"Central"},
		MoveInDate:           timePtr(now.AddDate(0, 1, 0)),
		LastContactAt:        timePtr(now.Add(-time.Hour)),
		InterestedProperties: []string{"a", "b", "c", "d", "e", "f", "g"},
	}
}

func TestScoreEmptyLead(t *testing.T) {
	assert.Equal(t, 0, Score(&domain.Lead{}, 0, now))
	assert.Equal(t, 0, Score(nil, 3, now))
}

func TestScoreIsCappedAt100(t *testing.T) {
	b := Evaluate(fullLead(), 10, now)
	assert.Equal(t, 20, b.Completeness)
	assert.Equal(t, 30, b.Engagement)
	assert.Equal(t, 25, b.History)
	assert.Equal(t, 15, b.Recency)
	assert.Equal(t, 10, b.Specificity)
	assert.Equal(t, 100, b.Total)
}

func TestScoreAlwaysInRange(t *testing.T) {
	leads := []*domain.Lead{{}, fullLead(), {Name: "only"}, {InterestedProperties: []string{"x", "x", "x"}}}
	for _, l := range leads {
		for _, n := range []int{-3, 0, 1, 5, 100} {
			s := Score(l, n, now)
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, 100)
		}
	}
}

func TestCompletenessBucket(t *testing.T) {
	l := &domain.Lead{
		Name:            "a",
		Phone:           "b",
		Email:           "c",
		InstagramHandle: "d",
	}
	assert.Equal(t, 20, Evaluate(l, 0, now).Completeness)

	l.InstagramHandle = ""
	assert.Equal(t, 15, Evaluate(l, 0, now).Completeness)

	l.WhatsAppNumber = "+852"
	assert.Equal(t, 20, Evaluate(l, 0, now).Completeness)
}

func TestEngagementBucket(t *testing.T) {
	tests := []struct {
		name string
		lead domain.Lead
		want int
	}{
		{name: "message of exactly 50 chars", lead: domain.Lead{OriginalMessage: strings.Repeat("a", 50)}, want: 0},
		{name: "message of 51 chars", lead: domain.Lead{OriginalMessage: strings.Repeat("a", 51)}, want: 10},
		{name: "multibyte message counts characters", lead: domain.Lead{OriginalMessage: strings.Repeat("樓", 30)}, want: 0},
		{name: "only budget min", lead: domain.Lead{BudgetMin: intPtr(1)}, want: 0},
		{name: "both budget bounds", lead: domain.Lead{BudgetMin: intPtr(0), BudgetMax: intPtr(0)}, want: 10},
		{name: "preferred area", lead: domain.Lead{PreferredAreas: []string{"Central"}}, want: 5},
		{name: "blank preferred area", lead: domain.Lead{PreferredAreas: []string{""}}, want: 0},
		{name: "move-in date", lead: domain.Lead{MoveInDate: timePtr(now)}, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(&tt.lead, 0, now).Engagement)
		})
	}
}

func TestHistoryBucket(t *testing.T) {
	l := &domain.Lead{}
	assert.Equal(t, 0, Evaluate(l, 0, now).History)
	assert.Equal(t, 15, Evaluate(l, 3, now).History)
	assert.Equal(t, 25, Evaluate(l, 5, now).History)
	assert.Equal(t, 25, Evaluate(l, 6, now).History)
}

func TestRecencyBucket(t *testing.T) {
	tests := []struct {
		name string
		ago  time.Duration
		want int
	}{
		{name: "an hour ago", ago: time.Hour, want: 15},
		{name: "exactly one day", ago: 24 * time.Hour, want: 15},
		{name: "one day and a half", ago: 36 * time.Hour, want: 15},
		{name: "exactly two days", ago: 48 * time.Hour, want: 10},
		{name: "exactly three days", ago: 72 * time.Hour, want: 10},
		{name: "four days", ago: 96 * time.Hour, want: 5},
		{name: "exactly seven days", ago: 7 * 24 * time.Hour, want: 5},
		{name: "eight days", ago: 8 * 24 * time.Hour, want: 0},
		{name: "in the future", ago: -5 * time.Hour, want: 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &domain.Lead{LastContactAt: timePtr(now.Add(-tt.ago))}
			assert.Equal(t, tt.want, Evaluate(l, 0, now).Recency)
		})
	}

	assert.Equal(t, 0, Evaluate(&domain.Lead{}, 0, now).Recency)
}

func TestSpecificityCountsDistinctIDs(t *testing.T) {
	l := &domain.Lead{InterestedProperties: []string{"p1", "p1", "p2"}}
	assert.Equal(t, 4, Evaluate(l, 0, now).Specificity)

	l.InterestedProperties = []string{"1", "2", "3", "4", "5", "6"}
	assert.Equal(t, 10, Evaluate(l, 0, now).Specificity)
}

func TestDaysSince(t *testing.T) {
	assert.Equal(t, 0, DaysSince(now, now))
	assert.Equal(t, 0, DaysSince(now.Add(time.Hour), now))
	assert.Equal(t, 2, DaysSince(now.Add(-71*time.Hour), now))
}
