package domain

import "time"

const DefaultAgentMaxLeads = 50

type Agent struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	WhatsAppNumber string `json:"whatsapp_number,omitempty"`

	SpecializationAreas []string `json:"specialization_areas"`
	SpecializationTypes []string `json:"specialization_types"`
	Languages           []string `json:"languages"`

	// Maintained by operators, not derived from lead rows.
	TotalLeads      int `json:"total_leads"`
	ConvertedLeads  int `json:"converted_leads"`
	AvgResponseTime int `json:"avg_response_time"`

	IsActive bool `json:"is_active"`
	MaxLeads int  `json:"max_leads"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Agent) ConversionRate() float64 {
	if a.TotalLeads <= 0 {
		return 0
	}
	return float64(a.ConvertedLeads) / float64(a.TotalLeads)
}

// AgentCandidate is an agent snapshot taken at assignment time together with
// its live workload. DecodeErr is set when a stored specialization list could
// not be read; the affected lists are empty in that case.
type AgentCandidate struct {
	Agent       Agent
	ActiveLeads int
	DecodeErr   error
}

func (c AgentCandidate) HasCapacity() bool {
	return c.Agent.IsActive && c.ActiveLeads < c.Agent.MaxLeads
}
