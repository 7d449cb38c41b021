package agent

import "propertycrm/internal/domain"

type CreateAgentRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone"`
	WhatsAppNumber string `json:"whatsapp_number"`

	SpecializationAreas []string `json:"specialization_areas"`
	SpecializationTypes []string `json:"specialization_types"`
	Languages           []string `json:"languages"`

	IsActive *bool `json:"is_active"`
	MaxLeads *int  `json:"max_leads" binding:"omitempty,gt=0"`
}

// UpdateAgentRequest is a partial update; nil fields are left alone.
type UpdateAgentRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone"`
	WhatsAppNumber *string `json:"whatsapp_number"`

	SpecializationAreas *[]string `json:"specialization_areas"`
	SpecializationTypes *[]string `json:"specialization_types"`
	Languages           *[]string `json:"languages"`

	TotalLeads      *int `json:"total_leads" binding:"omitempty,gte=0"`
	ConvertedLeads  *int `json:"converted_leads" binding:"omitempty,gte=0"`
	AvgResponseTime *int `json:"avg_response_time" binding:"omitempty,gte=0"`

	IsActive *bool `json:"is_active"`
	MaxLeads *int  `json:"max_leads" binding:"omitempty,gt=0"`
}

type ListAgentsQuery struct {
	ActiveOnly bool `form:"active_only"`
}

type AgentLeadsQuery struct {
	Status  string `form:"status"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

type Workload struct {
	AgentID           int64   `json:"agent_id"`
	AgentName         string  `json:"agent_name"`
	ActiveLeads       int64   `json:"active_leads"`
	MaxLeads          int     `json:"max_leads"`
	CapacityPct       float64 `json:"capacity_percentage"`
	OverdueFollowUps  int64   `json:"overdue_follow_ups"`
	ScheduledToday    int64   `json:"scheduled_today"`
	HighPriorityLeads int64   `json:"high_priority_leads"`
	CanTakeMore       bool    `json:"can_take_more"`
}

type Performance struct {
	Agent              *domain.Agent    `json:"agent"`
	PeriodDays         int              `json:"period_days"`
	LeadsByStatus      map[string]int64 `json:"leads_by_status"`
	NewLeads           int64            `json:"new_leads"`
	Interactions       int64            `json:"interactions"`
	AvgResponseMinutes float64          `json:"avg_response_minutes"`
	ConvertedLeads     int64            `json:"converted_leads"`
	ConversionRate     float64          `json:"conversion_rate"`
}
