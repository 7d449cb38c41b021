// Package scoring computes the 0-100 quality score of a lead.
package scoring

import (
	"time"
	"unicode/utf8"

	"propertycrm/internal/domain"
)

const (
	MaxScore = 100

	contactPoints        = 5
	longMessagePoints    = 10
	longMessageMinRunes  = 51
	budgetPoints         = 10
	areaPoints           = 5
	moveInPoints         = 5
	perInteractionPoints = 5
	interactionCap       = 25
	perPropertyPoints    = 2
	propertyCap          = 10
)

// Breakdown is the per-bucket contribution to a lead's score.
type Breakdown struct {
	Completeness int `json:"completeness"`
	Engagement   int `json:"engagement"`
	History      int `json:"history"`
	Recency      int `json:"recency"`
	Specificity  int `json:"specificity"`
	Total        int `json:"total"`
}

// Score returns the lead's score capped at MaxScore. A nil lead scores 0.
func Score(l *domain.Lead, interactionCount int, now time.Time) int {
	return Evaluate(l, interactionCount, now).Total
}

func Evaluate(l *domain.Lead, interactionCount int, now time.Time) Breakdown {
	var b Breakdown
	if l == nil {
		return b
	}

	b.Completeness = completeness(l)
	b.Engagement = engagement(l)
	b.History = history(interactionCount)
	b.Recency = recency(l.LastContactAt, now)
	b.Specificity = specificity(l.InterestedProperties)

	b.Total = min(b.Completeness+b.Engagement+b.History+b.Recency+b.Specificity, MaxScore)
	return b
}

func completeness(l *domain.Lead) int {
	pts := 0
	for _, present := range []bool{l.Phone != "", l.Email != "", l.Name != "", l.HasMessagingHandle()} {
		if present {
			pts += contactPoints
		}
	}
	return pts
}

func engagement(l *domain.Lead) int {
	pts := 0
	if utf8.RuneCountInString(l.OriginalMessage) >= longMessageMinRunes {
		pts += longMessagePoints
	}
	if l.BudgetMin != nil && l.BudgetMax != nil {
		pts += budgetPoints
	}
	if hasNonBlank(l.PreferredAreas) {
		pts += areaPoints
	}
	if l.MoveInDate != nil {
		pts += moveInPoints
	}
	return pts
}

func history(interactionCount int) int {
	if interactionCount <= 0 {
		return 0
	}
	return min(interactionCount*perInteractionPoints, interactionCap)
}

// recency buckets whole elapsed days. Timestamps in the future count as zero
// days ago.
func recency(lastContact *time.Time, now time.Time) int {
	if lastContact == nil || lastContact.IsZero() {
		return 0
	}
	days := DaysSince(*lastContact, now)
	switch {
	case days <= 1:
		return 15
	case days <= 3:
		return 10
	case days <= 7:
		return 5
	}
	return 0
}

// DaysSince counts complete 24h periods between t and now.
func DaysSince(t, now time.Time) int {
	elapsed := now.Sub(t)
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}

func specificity(ids []string) int {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		seen[id] = struct{}{}
	}
	return min(len(seen)*perPropertyPoints, propertyCap)
}

func hasNonBlank(values []string) bool {
	for _, v := range values {
		if v != "" {
			return true
		}
	}
	return false
}
