package chatbot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	IntentGreeting = "greeting"
	IntentBudget   = "budget"
	IntentBedrooms = "bedrooms"
	IntentArea     = "area"
	IntentSearch   = "search"
	IntentAgent    = "agent"
	IntentHelp     = "help"
	IntentFallback = "fallback"
)

// Reply is the bot's answer to one message.
type Reply struct {
	Intent      string   `json:"intent"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

var (
	numberRe = regexp.MustCompile(`\d+(?:,\d{3})*`)
	wordRe   = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

var (
	greetingWords = []string{"hello", "hi", "hey", "你好", "hola"}
	budgetWords   = []string{"price", "cost", "budget", "under", "below", "$"}
	roomWords     = []string{"room", "rooms", "bedroom", "bedrooms", "bed", "beds"}
	areaWords     = []string{"area", "location", "district", "where", "central", "causeway", "tsim", "wan chai", "admiralty"}
	searchWords   = []string{"search", "find", "show", "available", "properties"}
	agentWords    = []string{"agent", "contact", "call", "speak", "talk", "meet"}
	helpWords     = []string{"help", "what can you do", "options"}
)

// knownAreas maps message keywords to the district label stored in the session.
var knownAreas = []struct {
	keywords []string
	label    string
}{
	{[]string{"central", "admiralty"}, "Central/Admiralty"},
	{[]string{"causeway"}, "Causeway Bay"},
	{[]string{"tsim"}, "Tsim Sha Tsui"},
	{[]string{"wan chai"}, "Wan Chai"},
}

// message is a normalised user message. Single words match whole tokens so
// "this" does not read as "hi"; phrases and symbols match as substrings.
type message struct {
	text  string
	words map[string]bool
}

func parseMessage(raw string) message {
	text := strings.ToLower(strings.TrimSpace(raw))
	m := message{text: text, words: make(map[string]bool)}
	for _, w := range wordRe.FindAllString(text, -1) {
		m.words[w] = true
	}
	return m
}

func (m message) has(keys []string) bool {
	for _, k := range keys {
		if strings.Contains(k, " ") || !wordRe.MatchString(k) || !isASCII(k) {
			if strings.Contains(m.text, k) {
				return true
			}
			continue
		}
		if m.words[k] {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

func (m message) firstNumber() (int, bool) {
	raw := numberRe.FindString(m.text)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Respond picks an intent for raw and updates sess in place. Intents are
// tried in a fixed order and the first match wins.
func Respond(sess *Session, raw string) Reply {
	m := parseMessage(raw)

	switch {
	case m.has(greetingWords):
		sess.Stage = IntentGreeting
		return Reply{
			Intent:  IntentGreeting,
			Message: "Hello! 👋 I'm your property assistant. I can help you find the perfect rental property in Hong Kong. What type of property are you looking for?",
			Suggestions: []string{
				"Show me 1-bedroom apartments",
				"I need a 2-bedroom place",
				"What's available under $20,000?",
				"Properties in Central area",
			},
		}

	case m.has(budgetWords):
		sess.Stage = IntentBudget
		if n, ok := m.firstNumber(); ok {
			sess.Preferences.Budget = &n
			return Reply{
				Intent:      IntentBudget,
				Message:     fmt.Sprintf("Great! I'll help you find properties under $%s. What area are you interested in?", humanize.Comma(int64(n))),
				Suggestions: []string{"Central/Admiralty", "Causeway Bay", "Tsim Sha Tsui", "Wan Chai", "Any area is fine"},
			}
		}
		return Reply{
			Intent:      IntentBudget,
			Message:     "What's your budget range? Please let me know your maximum monthly rent.",
			Suggestions: []string{"Under $15,000", "$15,000 - $25,000", "$25,000 - $40,000", "Above $40,000"},
		}

	case m.has(roomWords):
		sess.Stage = IntentBedrooms
		if n, ok := m.firstNumber(); ok {
			sess.Preferences.Rooms = strconv.Itoa(n)
			return Reply{
				Intent:      IntentBedrooms,
				Message:     fmt.Sprintf("Perfect! Looking for %d-bedroom properties. What's your budget range?", n),
				Suggestions: []string{"Under $20,000", "$20,000 - $30,000", "$30,000 - $50,000", "Budget is flexible"},
			}
		}
		return Reply{
			Intent:      IntentBedrooms,
			Message:     "How many bedrooms do you need?",
			Suggestions: []string{"Studio/1 bedroom", "2 bedrooms", "3 bedrooms", "4+ bedrooms"},
		}

	case m.has(areaWords):
		sess.Stage = IntentArea
		for _, a := range knownAreas {
			if m.has(a.keywords) {
				sess.Preferences.Area = a.label
				return Reply{
					Intent:      IntentArea,
					Message:     fmt.Sprintf("Excellent choice! %s is a great area. Let me search for available properties that match your criteria.", a.label),
					Suggestions: []string{"Search now", "Add more preferences", "Show me all options", "Contact an agent"},
				}
			}
		}
		return Reply{
			Intent:      IntentArea,
			Message:     "Which area interests you most?",
			Suggestions: []string{"Hong Kong Island", "Kowloon", "New Territories", "No preference"},
		}

	case m.has(searchWords):
		sess.Stage = IntentSearch
		criteria := sess.Preferences.criteria()
		if criteria == "" {
			return Reply{
				Intent:  IntentSearch,
				Message: "I'd be happy to search for properties! Please tell me your preferences first - budget, number of bedrooms, and preferred area.",
				Suggestions: []string{
					"I need a 2-bedroom under $25,000",
					"Show me 1-bedroom in Central",
					"Budget under $20,000",
					"Any 3-bedroom apartment",
				},
			}
		}
		sess.LastSearch = criteria
		return Reply{
			Intent:      IntentSearch,
			Message:     fmt.Sprintf("🔍 Searching for properties with your criteria: %s\n\nI found several matching properties! You can view them in the listings above. Would you like me to connect you with an agent for more details?", criteria),
			Suggestions: []string{"Contact an agent", "Refine my search", "Save these results", "Start over"},
		}

	case m.has(agentWords):
		sess.Stage = IntentAgent
		return Reply{
			Intent:      IntentAgent,
			Message:     "I'll connect you with one of our experienced property agents! 👨‍💼\n\nOur agents can:\n• Arrange property viewings\n• Provide detailed property information\n• Assist with rental applications\n• Answer specific questions\n\nPlease provide your contact details and preferred contact method.",
			Suggestions: []string{"WhatsApp contact", "Phone call", "Email contact", "Schedule viewing"},
		}

	case m.has(helpWords):
		return Reply{
			Intent:      IntentHelp,
			Message:     "I'm here to help you find the perfect rental property! 🏠\n\nI can help you with:\n• Finding properties by budget, size, and location\n• Providing property details and photos\n• Connecting you with our agents\n• Scheduling property viewings\n• Answering questions about rentals\n\nWhat would you like to do?",
			Suggestions: []string{"Find properties", "Contact an agent", "Learn about areas", "Rental process info"},
		}
	}

	return Reply{
		Intent:      IntentFallback,
		Message:     "I understand you're looking for property information. Could you please be more specific about what you need? For example, your budget, preferred number of bedrooms, or area of interest?",
		Suggestions: []string{"I need help finding a property", "What's my budget options?", "Show me available areas", "Contact an agent"},
	}
}

func (p Preferences) criteria() string {
	var parts []string
	if p.Budget != nil {
		parts = append(parts, "Budget: Under $"+humanize.Comma(int64(*p.Budget)))
	}
	if p.Rooms != "" {
		parts = append(parts, "Bedrooms: "+p.Rooms)
	}
	if p.Area != "" {
		parts = append(parts, "Area: "+p.Area)
	}
	return strings.Join(parts, ", ")
}
