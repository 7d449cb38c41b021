package agent

import "errors"

var (
	ErrAgentNotFound    = errors.New("agent not found")
	ErrAgentEmailExists = errors.New("agent email already exists")
	ErrInvalidStatus    = errors.New("invalid lead status")
)
