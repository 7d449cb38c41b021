package lead

import (
	"time"

	"propertycrm/internal/domain"
)

type ListLeadsQuery struct {
	Status   string `form:"status"`
	Priority string `form:"priority"`
	AgentID  int64  `form:"agent_id"`
	Source   string `form:"source"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}

type CreateLeadRequest struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Email           string `json:"email" binding:"omitempty,email"`
	InstagramHandle string `json:"instagram_handle"`
	WhatsAppNumber  string `json:"whatsapp_number"`

	Source           string `json:"source"`
	SourcePostID     string `json:"source_post_id"`
	SourcePropertyID string `json:"source_property_id"`
	OriginalMessage  string `json:"original_message"`

	Status   string `json:"status"`
	Priority string `json:"priority"`

	InterestedProperties []string   `json:"interested_properties"`
	BudgetMin            *int       `json:"budget_min" binding:"omitempty,gte=0"`
	BudgetMax            *int       `json:"budget_max" binding:"omitempty,gte=0"`
	PreferredAreas       []string   `json:"preferred_areas"`
	PropertyType         string     `json:"property_type"`
	Bedrooms             *int       `json:"bedrooms" binding:"omitempty,gte=0"`
	MoveInDate           *time.Time `json:"move_in_date"`
	NextFollowUpAt       *time.Time `json:"next_follow_up_at"`

	AssignedAgentID *int64   `json:"assigned_agent_id"`
	Tags            []string `json:"tags"`
	Notes           string   `json:"notes"`
}

// UpdateLeadRequest is a partial update; nil fields are left alone.
type UpdateLeadRequest struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email" binding:"omitempty,email"`
	InstagramHandle *string `json:"instagram_handle"`
	WhatsAppNumber  *string `json:"whatsapp_number"`

	Status   *string `json:"status"`
	Priority *string `json:"priority"`

	InterestedProperties *[]string  `json:"interested_properties"`
	BudgetMin            *int       `json:"budget_min" binding:"omitempty,gte=0"`
	BudgetMax            *int       `json:"budget_max" binding:"omitempty,gte=0"`
	PreferredAreas       *[]string  `json:"preferred_areas"`
	PropertyType         *string    `json:"property_type"`
	Bedrooms             *int       `json:"bedrooms" binding:"omitempty,gte=0"`
	MoveInDate           *time.Time `json:"move_in_date"`
	NextFollowUpAt       *time.Time `json:"next_follow_up_at"`

	AssignedAgentID *int64    `json:"assigned_agent_id"`
	Tags            *[]string `json:"tags"`
	Notes           *string   `json:"notes"`
}

type CreateInteractionRequest struct {
	Type         string     `json:"type"`
	Channel      string     `json:"channel"`
	Direction    string     `json:"direction" binding:"omitempty,oneof=inbound outbound"`
	Subject      string     `json:"subject"`
	Message      string     `json:"message"`
	AgentID      *int64     `json:"agent_id"`
	Attachments  []string   `json:"attachments"`
	IsAutomated  bool       `json:"is_automated"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	FollowUpDate *time.Time `json:"follow_up_date"`
	Outcome      string     `json:"outcome"`
	NextAction   string     `json:"next_action"`
}

type InstagramInquiryRequest struct {
	InstagramHandle string `json:"instagram_handle" binding:"required"`
	Message         string `json:"message" binding:"required"`
	PostID          string `json:"post_id"`
	PropertyID      string `json:"property_id"`
}

type WhatsAppInquiryRequest struct {
	WhatsAppNumber string `json:"whatsapp_number" binding:"required"`
	Message        string `json:"message" binding:"required"`
	Name           string `json:"name"`
}

type InquiryResult struct {
	Lead      *domain.Lead `json:"lead"`
	IsNewLead bool         `json:"is_new_lead"`
}

type StatsResponse struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"by_status"`
	BySource     map[string]int64 `json:"by_source"`
	AverageScore float64          `json:"average_score"`
	Unassigned   int64            `json:"unassigned"`
}
