package analytics

type Dashboard struct {
	PeriodDays       int              `json:"period_days"`
	TotalLeads       int64            `json:"total_leads"`
	NewLeads         int64            `json:"new_leads"`
	ConvertedLeads   int64            `json:"converted_leads"`
	ConversionRate   float64          `json:"conversion_rate"`
	UnassignedLeads  int64            `json:"unassigned_leads"`
	AverageScore     float64          `json:"average_score"`
	Interactions     int64            `json:"interactions"`
	AvgResponseHours float64          `json:"avg_response_hours"`
	LeadsByStatus    map[string]int64 `json:"leads_by_status"`
	LeadsBySource    map[string]int64 `json:"leads_by_source"`
}

type TrendPoint struct {
	Date        string `json:"date"`
	NewLeads    int64  `json:"new_leads"`
	Conversions int64  `json:"conversions"`
}

type LeadsTrend struct {
	PeriodDays int          `json:"period_days"`
	Points     []TrendPoint `json:"points"`
}

type SourcePerformance struct {
	Source            string  `json:"source"`
	TotalLeads        int64   `json:"total_leads"`
	ConvertedLeads    int64   `json:"converted_leads"`
	ConversionRate    float64 `json:"conversion_rate"`
	AvgScore          float64 `json:"avg_score"`
	HighPriorityLeads int64   `json:"high_priority_leads"`
}

type AgentComparison struct {
	AgentID          int64   `json:"agent_id"`
	Name             string  `json:"name"`
	IsActive         bool    `json:"is_active"`
	TotalLeads       int64   `json:"total_leads"`
	ConvertedLeads   int64   `json:"converted_leads"`
	ConversionRate   float64 `json:"conversion_rate"`
	AvgLeadScore     float64 `json:"avg_lead_score"`
	Interactions     int64   `json:"interactions"`
	AvgResponseHours float64 `json:"avg_response_hours"`
}

type PropertyPerformance struct {
	PropertyRef    string  `json:"property_ref"`
	PropertyID     *int64  `json:"property_id,omitempty"`
	Title          string  `json:"title,omitempty"`
	Area           string  `json:"area,omitempty"`
	Price          *int    `json:"price,omitempty"`
	TotalLeads     int64   `json:"total_leads"`
	ConvertedLeads int64   `json:"converted_leads"`
	ConversionRate float64 `json:"conversion_rate"`
	AvgScore       float64 `json:"avg_score"`
}

// Funnel counts are cumulative: a lead counts toward every stage up to its
// current status. Lost leads only count toward Total.
type Funnel struct {
	PeriodDays int         `json:"period_days"`
	Stages     FunnelStage `json:"stages"`
	Rates      FunnelRates `json:"rates"`
}

type FunnelStage struct {
	Total     int64 `json:"total_leads"`
	Contacted int64 `json:"contacted"`
	Qualified int64 `json:"qualified"`
	Viewing   int64 `json:"viewing_scheduled"`
	Applied   int64 `json:"applied"`
	Converted int64 `json:"converted"`
}

type FunnelRates struct {
	ContactRate       float64 `json:"contact_rate"`
	QualificationRate float64 `json:"qualification_rate"`
	ViewingRate       float64 `json:"viewing_rate"`
	ApplicationRate   float64 `json:"application_rate"`
	ConversionRate    float64 `json:"conversion_rate"`
}

type ScoreBand struct {
	Range          string  `json:"range"`
	Label          string  `json:"label"`
	Count          int64   `json:"count"`
	ConvertedLeads int64   `json:"converted_leads"`
	ConversionRate float64 `json:"conversion_rate"`
}

type StatusScore struct {
	Status   string  `json:"status"`
	AvgScore float64 `json:"avg_score"`
	Count    int64   `json:"count"`
}

type LeadScoring struct {
	ScoreBands   []ScoreBand   `json:"score_bands"`
	StatusScores []StatusScore `json:"status_scores"`
}
