package property

import (
	"time"

	"propertycrm/internal/domain"
)

type ListPropertiesQuery struct {
	Search  string `form:"search"`
	Status  string `form:"status"`
	Source  string `form:"source"`
	Area    string `form:"area"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// ListingInput is one scraped listing as delivered by a scraper run.
type ListingInput struct {
	Title        string `json:"title" binding:"required"`
	Development  string `json:"development"`
	Address      string `json:"address"`
	Area         string `json:"area"`
	PropertyType string `json:"property_type"`
	Bedrooms     *int   `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms    *int   `json:"bathrooms" binding:"omitempty,gte=0"`
	SaleableArea string `json:"saleable_area"`
	GrossArea    string `json:"gross_area"`
	Floor        string `json:"floor"`
	Price        *int   `json:"price" binding:"omitempty,gte=0"`
	PricePerSqft *int   `json:"price_per_sqft" binding:"omitempty,gte=0"`

	Source     string   `json:"source" binding:"required"`
	SourceID   string   `json:"source_id" binding:"required"`
	ListingURL string   `json:"listing_url"`
	Images     []string `json:"images"`

	AgentName   string `json:"agent_name"`
	AgentPhone  string `json:"agent_phone"`
	AgentAgency string `json:"agent_agency"`

	ScrapedAt *time.Time `json:"scraped_at"`
}

type ImportRequest struct {
	Listings []ListingInput `json:"listings" binding:"required,min=1,dive"`
}

type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// View adds display fields to a stored listing.
type View struct {
	domain.Property
	PriceDisplay string `json:"price_display,omitempty"`
	ScrapedAgo   string `json:"scraped_ago,omitempty"`
}

type StatsResponse struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	BySource       map[string]int64 `json:"by_source"`
	Featured       int64            `json:"featured"`
	AveragePrice   float64          `json:"average_price"`
	TotalViews     int64            `json:"total_views"`
	TotalInquiries int64            `json:"total_inquiries"`
}
