package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"propertycrm/internal/domain"
)

type leadModel struct {
	ID              int64  `gorm:"column:id;primaryKey"`
	Name            string `gorm:"column:name"`
	Phone           string `gorm:"column:phone"`
	Email           string `gorm:"column:email"`
	InstagramHandle string `gorm:"column:instagram_handle;index"`
	WhatsAppNumber  string `gorm:"column:whatsapp_number;index"`

	Source           string `gorm:"column:source;not null;default:unknown;index"`
	SourcePostID     string `gorm:"column:source_post_id"`
	SourcePropertyID string `gorm:"column:source_property_id"`
	OriginalMessage  string `gorm:"column:original_message"`

	Status   string `gorm:"column:status;not null;default:new;index"`
	Priority string `gorm:"column:priority;not null;default:medium"`
	Score    int    `gorm:"column:score;not null;default:0"`

	InterestedProperties string     `gorm:"column:interested_properties"`
	BudgetMin            *int       `gorm:"column:budget_min"`
	BudgetMax            *int       `gorm:"column:budget_max"`
	PreferredAreas       string     `gorm:"column:preferred_areas"`
	PropertyType         string     `gorm:"column:property_type"`
	Bedrooms             *int       `gorm:"column:bedrooms"`
	MoveInDate           *time.Time `gorm:"column:move_in_date"`

	AssignedAgentID *int64 `gorm:"column:assigned_agent_id;index"`

	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
	LastContactAt  *time.Time `gorm:"column:last_contact_at"`
	NextFollowUpAt *time.Time `gorm:"column:next_follow_up_at"`

	Tags  string `gorm:"column:tags"`
	Notes string `gorm:"column:notes"`
}

func (leadModel) TableName() string { return "leads" }

type agentModel struct {
	ID             int64  `gorm:"column:id;primaryKey"`
	Name           string `gorm:"column:name;not null"`
	Email          string `gorm:"column:email;not null;uniqueIndex"`
	Phone          string `gorm:"column:phone"`
	WhatsAppNumber string `gorm:"column:whatsapp_number"`

	SpecializationAreas string `gorm:"column:specialization_areas"`
	SpecializationTypes string `gorm:"column:specialization_types"`
	Languages           string `gorm:"column:languages"`

	TotalLeads      int `gorm:"column:total_leads;not null;default:0"`
	ConvertedLeads  int `gorm:"column:converted_leads;not null;default:0"`
	AvgResponseTime int `gorm:"column:avg_response_time;not null;default:0"`

	// Pointer so an explicit false survives gorm's zero-value defaulting.
	IsActive *bool `gorm:"column:is_active;not null;default:true"`
	MaxLeads int   `gorm:"column:max_leads;not null;default:50"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (agentModel) TableName() string { return "agents" }

type interactionModel struct {
	ID        int64  `gorm:"column:id;primaryKey"`
	LeadID    int64  `gorm:"column:lead_id;not null;index"`
	AgentID   *int64 `gorm:"column:agent_id;index"`
	Type      string `gorm:"column:type;not null"`
	Channel   string `gorm:"column:channel"`
	Direction string `gorm:"column:direction;not null;default:outbound"`

	Subject     string `gorm:"column:subject"`
	Message     string `gorm:"column:message"`
	Attachments string `gorm:"column:attachments"`
	IsAutomated bool   `gorm:"column:is_automated;not null;default:false"`

	CreatedAt    time.Time  `gorm:"column:created_at"`
	ScheduledAt  *time.Time `gorm:"column:scheduled_at"`
	CompletedAt  *time.Time `gorm:"column:completed_at"`
	FollowUpDate *time.Time `gorm:"column:follow_up_date"`

	Outcome    string `gorm:"column:outcome"`
	NextAction string `gorm:"column:next_action"`

	Lead leadModel `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`
}

func (interactionModel) TableName() string { return "interactions" }

type propertyModel struct {
	ID           int64  `gorm:"column:id;primaryKey"`
	Title        string `gorm:"column:title;not null"`
	Development  string `gorm:"column:development"`
	Address      string `gorm:"column:address"`
	Area         string `gorm:"column:area;index"`
	PropertyType string `gorm:"column:property_type"`
	Bedrooms     *int   `gorm:"column:bedrooms"`
	Bathrooms    *int   `gorm:"column:bathrooms"`
	SaleableArea string `gorm:"column:saleable_area"`
	GrossArea    string `gorm:"column:gross_area"`
	Floor        string `gorm:"column:floor"`
	Price        *int   `gorm:"column:price"`
	PricePerSqft *int   `gorm:"column:price_per_sqft"`

	Source     string `gorm:"column:source;uniqueIndex:idx_properties_source_ref"`
	SourceID   string `gorm:"column:source_id;uniqueIndex:idx_properties_source_ref"`
	ListingURL string `gorm:"column:listing_url"`

	Images         string `gorm:"column:images"`
	EnrichedImages string `gorm:"column:enriched_images"`

	AgentName   string `gorm:"column:agent_name"`
	AgentPhone  string `gorm:"column:agent_phone"`
	AgentAgency string `gorm:"column:agent_agency"`

	Status     string `gorm:"column:status;not null;default:draft;index"`
	IsActive   *bool  `gorm:"column:is_active;not null;default:true"`
	IsFeatured bool   `gorm:"column:is_featured;not null;default:false"`

	Caption      string     `gorm:"column:caption"`
	CaptionStyle string     `gorm:"column:caption_style"`
	Hashtags     string     `gorm:"column:hashtags"`
	Summary      string     `gorm:"column:summary"`
	EnrichedAt   *time.Time `gorm:"column:enriched_at"`

	InstagramPosts string `gorm:"column:instagram_posts"`
	TotalViews     int    `gorm:"column:total_views;not null;default:0"`
	TotalInquiries int    `gorm:"column:total_inquiries;not null;default:0"`

	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
	ScrapedAt *time.Time `gorm:"column:scraped_at"`
}

func (propertyModel) TableName() string { return "properties" }

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{&agentModel{}, &leadModel{}, &interactionModel{}, &propertyModel{}}
}

// List and set columns are stored as JSON arrays of strings. An empty column
// decodes to an empty slice.

func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(values)
	return string(b)
}

// encodeSet drops blanks and duplicates, keeping first-seen order.
func encodeSet(values []string) string {
	return encodeList(normalizeSet(values))
}

func decodeList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}, fmt.Errorf("decode string list %q: %w", truncate(raw, 40), err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// decodeLenient is used where a bad column must not fail the read.
func decodeLenient(raw string) []string {
	out, _ := decodeList(raw)
	return out
}

func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func boolPtr(v bool) *bool { return &v }

func derefBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func toDomainLead(m leadModel) *domain.Lead {
	return &domain.Lead{
		ID:                   m.ID,
		Name:                 m.Name,
		Phone:                m.Phone,
		Email:                m.Email,
		InstagramHandle:      m.InstagramHandle,
		WhatsAppNumber:       m.WhatsAppNumber,
		Source:               m.Source,
		SourcePostID:         m.SourcePostID,
		SourcePropertyID:     m.SourcePropertyID,
		OriginalMessage:      m.OriginalMessage,
		Status:               domain.LeadStatus(m.Status),
		Priority:             domain.Priority(m.Priority),
		Score:                m.Score,
		InterestedProperties: decodeLenient(m.InterestedProperties),
		BudgetMin:            m.BudgetMin,
		BudgetMax:            m.BudgetMax,
		PreferredAreas:       decodeLenient(m.PreferredAreas),
		PropertyType:         m.PropertyType,
		Bedrooms:             m.Bedrooms,
		MoveInDate:           m.MoveInDate,
		AssignedAgentID:      m.AssignedAgentID,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
		LastContactAt:        m.LastContactAt,
		NextFollowUpAt:       m.NextFollowUpAt,
		Tags:                 decodeLenient(m.Tags),
		Notes:                m.Notes,
	}
}

func toLeadModel(l *domain.Lead) leadModel {
	source := l.Source
	if source == "" {
		source = domain.SourceUnknown
	}
	status := l.Status
	if status == "" {
		status = domain.LeadNew
	}
	priority := l.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	return leadModel{
		ID:                   l.ID,
		Name:                 l.Name,
		Phone:                l.Phone,
		Email:                l.Email,
		InstagramHandle:      l.InstagramHandle,
		WhatsAppNumber:       l.WhatsAppNumber,
		Source:               source,
		SourcePostID:         l.SourcePostID,
		SourcePropertyID:     l.SourcePropertyID,
		OriginalMessage:      l.OriginalMessage,
		Status:               string(status),
		Priority:             string(priority),
		Score:                l.Score,
		InterestedProperties: encodeList(l.InterestedProperties),
		BudgetMin:            l.BudgetMin,
		BudgetMax:            l.BudgetMax,
		PreferredAreas:       encodeSet(l.PreferredAreas),
		PropertyType:         l.PropertyType,
		Bedrooms:             l.Bedrooms,
		MoveInDate:           l.MoveInDate,
		AssignedAgentID:      l.AssignedAgentID,
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
		LastContactAt:        l.LastContactAt,
		NextFollowUpAt:       l.NextFollowUpAt,
		Tags:                 encodeSet(l.Tags),
		Notes:                l.Notes,
	}
}

// toDomainAgent returns the first decode failure among the specialization
// columns; the failing column is left empty.
func toDomainAgent(m agentModel) (*domain.Agent, error) {
	var firstErr error
	decode := func(column, raw string) []string {
		out, err := decodeList(raw)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("agent %d %s: %w", m.ID, column, err)
		}
		return out
	}
	a := &domain.Agent{
		ID:                  m.ID,
		Name:                m.Name,
		Email:               m.Email,
		Phone:               m.Phone,
		WhatsAppNumber:      m.WhatsAppNumber,
		SpecializationAreas: decode("specialization_areas", m.SpecializationAreas),
		SpecializationTypes: decode("specialization_types", m.SpecializationTypes),
		Languages:           decode("languages", m.Languages),
		TotalLeads:          m.TotalLeads,
		ConvertedLeads:      m.ConvertedLeads,
		AvgResponseTime:     m.AvgResponseTime,
		IsActive:            derefBool(m.IsActive, true),
		MaxLeads:            m.MaxLeads,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	return a, firstErr
}

func toAgentModel(a *domain.Agent) agentModel {
	maxLeads := a.MaxLeads
	if maxLeads <= 0 {
		maxLeads = domain.DefaultAgentMaxLeads
	}
	return agentModel{
		ID:                  a.ID,
		Name:                a.Name,
		Email:               a.Email,
		Phone:               a.Phone,
		WhatsAppNumber:      a.WhatsAppNumber,
		SpecializationAreas: encodeSet(a.SpecializationAreas),
		SpecializationTypes: encodeSet(a.SpecializationTypes),
		Languages:           encodeSet(a.Languages),
		TotalLeads:          a.TotalLeads,
		ConvertedLeads:      a.ConvertedLeads,
		AvgResponseTime:     a.AvgResponseTime,
		IsActive:            boolPtr(a.IsActive),
		MaxLeads:            maxLeads,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func toDomainInteraction(m interactionModel) *domain.Interaction {
	return &domain.Interaction{
		ID:           m.ID,
		LeadID:       m.LeadID,
		AgentID:      m.AgentID,
		Type:         m.Type,
		Channel:      m.Channel,
		Direction:    m.Direction,
		Subject:      m.Subject,
		Message:      m.Message,
		Attachments:  decodeLenient(m.Attachments),
		IsAutomated:  m.IsAutomated,
		CreatedAt:    m.CreatedAt,
		ScheduledAt:  m.ScheduledAt,
		CompletedAt:  m.CompletedAt,
		FollowUpDate: m.FollowUpDate,
		Outcome:      m.Outcome,
		NextAction:   m.NextAction,
	}
}

func toInteractionModel(i *domain.Interaction) interactionModel {
	direction := i.Direction
	if direction == "" {
		direction = domain.DirectionOutbound
	}
	return interactionModel{
		ID:           i.ID,
		LeadID:       i.LeadID,
		AgentID:      i.AgentID,
		Type:         i.Type,
		Channel:      i.Channel,
		Direction:    direction,
		Subject:      i.Subject,
		Message:      i.Message,
		Attachments:  encodeList(i.Attachments),
		IsAutomated:  i.IsAutomated,
		CreatedAt:    i.CreatedAt,
		ScheduledAt:  i.ScheduledAt,
		CompletedAt:  i.CompletedAt,
		FollowUpDate: i.FollowUpDate,
		Outcome:      i.Outcome,
		NextAction:   i.NextAction,
	}
}

func toDomainProperty(m propertyModel) *domain.Property {
	return &domain.Property{
		ID:             m.ID,
		Title:          m.Title,
		Development:    m.Development,
		Address:        m.Address,
		Area:           m.Area,
		PropertyType:   m.PropertyType,
		Bedrooms:       m.Bedrooms,
		Bathrooms:      m.Bathrooms,
		SaleableArea:   m.SaleableArea,
		GrossArea:      m.GrossArea,
		Floor:          m.Floor,
		Price:          m.Price,
		PricePerSqft:   m.PricePerSqft,
		Source:         m.Source,
		SourceID:       m.SourceID,
		ListingURL:     m.ListingURL,
		Images:         decodeLenient(m.Images),
		EnrichedImages: decodeLenient(m.EnrichedImages),
		AgentName:      m.AgentName,
		AgentPhone:     m.AgentPhone,
		AgentAgency:    m.AgentAgency,
		Status:         domain.PropertyStatus(m.Status),
		IsActive:       derefBool(m.IsActive, true),
		IsFeatured:     m.IsFeatured,
		Caption:        m.Caption,
		CaptionStyle:   m.CaptionStyle,
		Hashtags:       decodeLenient(m.Hashtags),
		Summary:        m.Summary,
		EnrichedAt:     m.EnrichedAt,
		InstagramPosts: decodeLenient(m.InstagramPosts),
		TotalViews:     m.TotalViews,
		TotalInquiries: m.TotalInquiries,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		ScrapedAt:      m.ScrapedAt,
	}
}

func toPropertyModel(p *domain.Property) propertyModel {
	status := p.Status
	if status == "" {
		status = domain.PropertyDraft
	}
	return propertyModel{
		ID:             p.ID,
		Title:          p.Title,
		Development:    p.Development,
		Address:        p.Address,
		Area:           p.Area,
		PropertyType:   p.PropertyType,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		SaleableArea:   p.SaleableArea,
		GrossArea:      p.GrossArea,
		Floor:          p.Floor,
		Price:          p.Price,
		PricePerSqft:   p.PricePerSqft,
		Source:         p.Source,
		SourceID:       p.SourceID,
		ListingURL:     p.ListingURL,
		Images:         encodeList(p.Images),
		EnrichedImages: encodeList(p.EnrichedImages),
		AgentName:      p.AgentName,
		AgentPhone:     p.AgentPhone,
		AgentAgency:    p.AgentAgency,
		Status:         string(status),
		IsActive:       boolPtr(p.IsActive),
		IsFeatured:     p.IsFeatured,
		Caption:        p.Caption,
		CaptionStyle:   p.CaptionStyle,
		Hashtags:       encodeSet(p.Hashtags),
		Summary:        p.Summary,
		EnrichedAt:     p.EnrichedAt,
		InstagramPosts: encodeList(p.InstagramPosts),
		TotalViews:     p.TotalViews,
		TotalInquiries: p.TotalInquiries,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		ScrapedAt:      p.ScrapedAt,
	}
}
