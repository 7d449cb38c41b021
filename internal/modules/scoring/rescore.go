package scoring

import (
	"context"
	"fmt"
	"time"

	"propertycrm/internal/domain"
	"propertycrm/internal/metrics"
	"propertycrm/internal/repository"
)

// Rescore recomputes the lead's score from its stored interactions and
// persists it through st, which is normally a transaction store.
func Rescore(ctx context.Context, st *repository.Store, lead *domain.Lead, now time.Time) error {
	n, err := st.Interactions.CountByLead(ctx, lead.ID)
	if err != nil {
		return fmt.Errorf("count interactions: %w", err)
	}
	score := Score(lead, n, now)
	if err := st.Leads.UpdateScore(ctx, lead.ID, score, now); err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	lead.Score = score
	lead.UpdatedAt = now
	metrics.LeadScores.Observe(float64(score))
	return nil
}
