package domain

import "time"

type PropertyStatus string

const (
	PropertyDraft     PropertyStatus = "draft"
	PropertyPending   PropertyStatus = "pending"
	PropertyPublished PropertyStatus = "published"
)

func (s PropertyStatus) Valid() bool {
	return s == PropertyDraft || s == PropertyPending || s == PropertyPublished
}

// Listing sources the scrapers feed from.
const (
	Source28Hse      = "28hse"
	SourceSquarefoot = "squarefoot"
	SourceCentaline  = "centaline"
)

// Property is a scraped rental listing plus the marketing copy generated for it.
type Property struct {
	ID int64 `json:"id"`

	Title        string `json:"title"`
	Development  string `json:"development,omitempty"`
	Address      string `json:"address,omitempty"`
	Area         string `json:"area,omitempty"`
	PropertyType string `json:"property_type,omitempty"`
	Bedrooms     *int   `json:"bedrooms,omitempty"`
	Bathrooms    *int   `json:"bathrooms,omitempty"`
	SaleableArea string `json:"saleable_area,omitempty"`
	GrossArea    string `json:"gross_area,omitempty"`
	Floor        string `json:"floor,omitempty"`
	Price        *int   `json:"price,omitempty"`
	PricePerSqft *int   `json:"price_per_sqft,omitempty"`

	Source     string `json:"source,omitempty"`
	SourceID   string `json:"source_id,omitempty"`
	ListingURL string `json:"listing_url,omitempty"`

	Images         []string `json:"images"`
	EnrichedImages []string `json:"enriched_images"`

	AgentName   string `json:"agent_name,omitempty"`
	AgentPhone  string `json:"agent_phone,omitempty"`
	AgentAgency string `json:"agent_agency,omitempty"`

	Status     PropertyStatus `json:"status"`
	IsActive   bool           `json:"is_active"`
	IsFeatured bool           `json:"is_featured"`

	Caption      string     `json:"caption,omitempty"`
	CaptionStyle string     `json:"caption_style,omitempty"`
	Hashtags     []string   `json:"hashtags"`
	Summary      string     `json:"summary,omitempty"`
	EnrichedAt   *time.Time `json:"enriched_at,omitempty"`

	InstagramPosts []string `json:"instagram_posts"`
	TotalViews     int      `json:"total_views"`
	TotalInquiries int      `json:"total_inquiries"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ScrapedAt *time.Time `json:"scraped_at,omitempty"`
}
