package assignment

import "errors"

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrAgentNotFound   = errors.New("agent not found")
	ErrAgentInactive   = errors.New("agent is not active")
	ErrAgentAtCapacity = errors.New("agent has reached maximum lead capacity")
)
