package lead

import "errors"

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrAgentNotFound   = errors.New("agent not found")
	ErrInvalidStatus   = errors.New("invalid lead status")
	ErrInvalidPriority = errors.New("invalid lead priority")
	ErrInvalidBudget   = errors.New("budget_min must not exceed budget_max")
	ErrInvalidType     = errors.New("invalid interaction type")
	ErrMissingContact  = errors.New("sender handle or number must not be blank")
)
