package lead

import (
	"context"

	"propertycrm/internal/domain"
	"propertycrm/internal/modules/matching"
	"propertycrm/internal/repository"
)

// AgentPicker is the part of the assignment service leads depend on.
type AgentPicker interface {
	PickAgent(ctx context.Context, st *repository.Store, lead *domain.Lead) (*domain.Agent, error)
	Suggest(ctx context.Context, leadID int64) (*domain.Lead, []matching.Evaluation, error)
}
