package domain

import "time"

type LeadStatus string

const (
	LeadNew              LeadStatus = "new"
	LeadContacted        LeadStatus = "contacted"
	LeadQualified        LeadStatus = "qualified"
	LeadViewingScheduled LeadStatus = "viewing_scheduled"
	LeadApplied          LeadStatus = "applied"
	LeadConverted        LeadStatus = "converted"
	LeadLost             LeadStatus = "lost"
)

// ActiveLeadStatuses are the statuses that count against an agent's capacity.
var ActiveLeadStatuses = []LeadStatus{LeadNew, LeadContacted, LeadQualified, LeadViewingScheduled}

// SweepableLeadStatuses are the statuses picked up by the auto-assignment sweep.
var SweepableLeadStatuses = []LeadStatus{LeadNew, LeadContacted}

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadViewingScheduled, LeadApplied, LeadConverted, LeadLost:
		return true
	}
	return false
}

func (s LeadStatus) IsActive() bool {
	for _, st := range ActiveLeadStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities from low (1) to urgent (4). Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 0
}

const (
	SourceInstagram = "instagram"
	SourceWhatsApp  = "whatsapp"
	SourceUnknown   = "unknown"
)

type Lead struct {
	ID int64 `json:"id"`

	// Contact
	Name            string `json:"name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty"`
	InstagramHandle string `json:"instagram_handle,omitempty"`
	WhatsAppNumber  string `json:"whatsapp_number,omitempty"`

	// Origin
	Source           string `json:"source"`
	SourcePostID     string `json:"source_post_id,omitempty"`
	SourcePropertyID string `json:"source_property_id,omitempty"`
	OriginalMessage  string `json:"original_message,omitempty"`

	Status   LeadStatus `json:"status"`
	Priority Priority   `json:"priority"`
	Score    int        `json:"score"`

	// Interests
	InterestedProperties []string   `json:"interested_properties"`
	BudgetMin            *int       `json:"budget_min,omitempty"`
	BudgetMax            *int       `json:"budget_max,omitempty"`
	PreferredAreas       []string   `json:"preferred_areas"`
	PropertyType         string     `json:"property_type,omitempty"`
	Bedrooms             *int       `json:"bedrooms,omitempty"`
	MoveInDate           *time.Time `json:"move_in_date,omitempty"`

	AssignedAgentID *int64 `json:"assigned_agent_id,omitempty"`
	AssignedAgent   *Agent `json:"assigned_agent,omitempty"`

	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastContactAt  *time.Time `json:"last_contact_at,omitempty"`
	NextFollowUpAt *time.Time `json:"next_follow_up_at,omitempty"`

	Tags  []string `json:"tags"`
	Notes string   `json:"notes,omitempty"`
}

// HasMessagingHandle reports whether the lead can be reached on a messaging channel.
func (l *Lead) HasMessagingHandle() bool {
	return l.WhatsAppNumber != "" || l.InstagramHandle != ""
}

func (l *Lead) IsAssigned() bool {
	return l.AssignedAgentID != nil && *l.AssignedAgentID != 0
}

// AddInterestedProperty appends id unless it is already present.
func (l *Lead) AddInterestedProperty(id string) bool {
	if id == "" {
		return false
	}
	for _, existing := range l.InterestedProperties {
		if existing == id {
			return false
		}
	}
	l.InterestedProperties = append(l.InterestedProperties, id)
	return true
}
