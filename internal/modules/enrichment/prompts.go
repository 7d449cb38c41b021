package enrichment

import (
	"fmt"
	"strings"

	"propertycrm/internal/domain"
	"propertycrm/internal/pkg/utils"
)

const (
	StyleEngaging     = "engaging"
	StyleProfessional = "professional"
	StyleCasual       = "casual"
)

func validStyle(s string) bool {
	return s == StyleEngaging || s == StyleProfessional || s == StyleCasual
}

const (
	captionSystem  = "You are a professional property marketing expert who creates engaging Instagram captions for Hong Kong rental properties. Always write in Traditional Chinese and include relevant hashtags."
	summarySystem  = "You create very concise property summaries for image overlays in Traditional Chinese."
	hashtagSystem  = "You generate relevant hashtags for Hong Kong property listings."
	callToAction   = "\n\n💬 有興趣？立即DM查詢詳情！\n📱 WhatsApp聯絡我們"
	maxHashtags    = 15
	maxSummaryLine = 3
)

var defaultHashtags = []string{
	"#租屋", "#香港租屋", "#物業出租", "#apartment", "#rental",
	"#hongkong", "#hkproperty", "#hkrental", "#property",
}

var styleRequirements = map[string]string{
	StyleEngaging: `- Use emojis to make it visually appealing
- Highlight the best features
- Create excitement and urgency
- Include relevant hashtags (#租屋 #香港租屋 #物業 etc.)
- Keep it under 200 characters`,
	StyleProfessional: `- Professional and informative tone
- Focus on facts and features
- Include relevant hashtags
- Clear and concise`,
	StyleCasual: `- Casual and friendly tone
- Use everyday language
- Include relevant hashtags
- Make it feel personal and approachable`,
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func roomsLabel(p *domain.Property) string {
	if p.Bedrooms == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *p.Bedrooms)
}

func captionPrompt(p *domain.Property, style string) string {
	return fmt.Sprintf(`Create a %s Instagram caption for this Hong Kong rental property:

Property: %s
Development: %s
Price: %s
Area: %s
Rooms: %s
Floor: %s
Location: %s

Requirements:
- Write in Traditional Chinese
%s`,
		style, orNA(p.Title), orNA(p.Development), orNA(utils.FormatPrice(p.Price)),
		orNA(p.SaleableArea), roomsLabel(p), orNA(p.Floor), orNA(p.Address),
		styleRequirements[style])
}

func summaryPrompt(p *domain.Property) string {
	return fmt.Sprintf(`Create a very concise property summary (max 3 lines) for image overlay:

Property: %s
Price: %s
Area: %s
Rooms: %s

Requirements:
- Traditional Chinese
- Maximum 3 lines
- Each line max 20 characters
- Include key selling points
- No hashtags`,
		orNA(p.Title), orNA(utils.FormatPrice(p.Price)), orNA(p.SaleableArea), roomsLabel(p))
}

func hashtagPrompt(p *domain.Property) string {
	return fmt.Sprintf(`Generate relevant Instagram hashtags for this Hong Kong rental property:

Location: %s
Development: %s
Rooms: %s

Requirements:
- Mix of Traditional Chinese and English hashtags
- Include location-based hashtags
- Include property type hashtags
- Maximum 15 hashtags`,
		orNA(p.Address), orNA(p.Development), roomsLabel(p))
}

func fallbackCaption(p *domain.Property) string {
	var b strings.Builder
	title := p.Title
	if title == "" {
		title = "物業出租"
	}
	fmt.Fprintf(&b, "🏠 %s\n", title)
	if price := utils.FormatPrice(p.Price); price != "" {
		fmt.Fprintf(&b, "💰 租金: %s\n", price)
	}
	b.WriteString("\n📍 優質物業，歡迎查詢！\n")
	b.WriteString("💬 DM了解更多詳情\n\n")
	b.WriteString("#租屋 #香港租屋 #物業出租 #apartment #rental #hongkong")
	return b.String()
}

func fallbackSummary(p *domain.Property) string {
	name := p.Development
	if name == "" {
		name = p.Title
	}
	var lines []string
	if name != "" {
		lines = append(lines, truncateRunes(name, 15))
	}
	if price := utils.FormatPrice(p.Price); price != "" {
		lines = append(lines, price)
	}
	if p.SaleableArea != "" {
		lines = append(lines, "面積: "+p.SaleableArea)
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
