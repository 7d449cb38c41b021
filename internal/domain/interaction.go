package domain

import "time"

const (
	InteractionMessage    = "message"
	InteractionCall       = "call"
	InteractionEmail      = "email"
	InteractionMeeting    = "meeting"
	InteractionViewing    = "viewing"
	InteractionAssignment = "assignment"

	ChannelInstagram = "instagram"
	ChannelWhatsApp  = "whatsapp"
	ChannelPhone     = "phone"
	ChannelEmail     = "email"
	ChannelInPerson  = "in_person"
	ChannelSystem    = "system"

	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Interaction is one contact event with a lead. Rows are never updated.
type Interaction struct {
	ID        int64  `json:"id"`
	LeadID    int64  `json:"lead_id"`
	AgentID   *int64 `json:"agent_id,omitempty"`
	Agent     *Agent `json:"agent,omitempty"`
	Type      string `json:"type"`
	Channel   string `json:"channel,omitempty"`
	Direction string `json:"direction,omitempty"`

	Subject     string   `json:"subject,omitempty"`
	Message     string   `json:"message,omitempty"`
	Attachments []string `json:"attachments"`
	IsAutomated bool     `json:"is_automated"`

	CreatedAt    time.Time  `json:"created_at"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty"`

	Outcome    string `json:"outcome,omitempty"`
	NextAction string `json:"next_action,omitempty"`
}

// NewAssignmentInteraction builds the automated record written whenever a
// lead gets an agent.
func NewAssignmentInteraction(leadID int64, agent *Agent, message string) *Interaction {
	agentID := agent.ID
	return &Interaction{
		LeadID:      leadID,
		AgentID:     &agentID,
		Type:        InteractionAssignment,
		Channel:     ChannelSystem,
		Direction:   DirectionOutbound,
		Message:     message,
		IsAutomated: true,
	}
}
