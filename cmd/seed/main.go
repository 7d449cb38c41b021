package main

import (
	"context"
	"fmt"
	"time"

	"propertycrm/internal/app"
	"propertycrm/internal/config"
	"propertycrm/internal/domain"
	"propertycrm/internal/modules/agent"
	"propertycrm/internal/modules/lead"
	"propertycrm/internal/modules/property"
	"propertycrm/internal/pkg/logger"

	"go.uber.org/zap"
)

func intPtr(v int) *int { return &v }

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	db, err := app.OpenDB(ctx, cfg, log, true)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	a := app.Build(cfg, log, db, nil, nil)
	defer a.Close()

	// Cleanup old data (children first)
	log.Info("cleaning old data")
	for _, table := range []string{"interactions", "leads", "properties", "agents"} {
		if err := db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatal("cleanup failed", zap.String("table", table), zap.Error(err))
		}
	}

	// ================== AGENTS ==================
	log.Info("creating agents")
	agents := []agent.CreateAgentRequest{
		{
			Name:                "Amy Chan",
			Email:               "amy.chan@propertycrm.hk",
			Phone:               "+852 9123 4501",
			WhatsAppNumber:      "+85291234501",
			SpecializationAreas: []string{"Central", "Admiralty", "Wan Chai"},
			SpecializationTypes: []string{"apartment", "serviced"},
			Languages:           []string{"en", "zh-HK"},
			MaxLeads:            intPtr(30),
		},
		{
			Name:                "Ben Wong",
			Email:               "ben.wong@propertycrm.hk",
			Phone:               "+852 9123 4502",
			SpecializationAreas: []string{"Tsim Sha Tsui", "Mong Kok"},
			SpecializationTypes: []string{"apartment"},
			Languages:           []string{"zh-HK", "zh-CN"},
			MaxLeads:            intPtr(20),
		},
		{
			Name:                "Carmen Lee",
			Email:               "carmen.lee@propertycrm.hk",
			SpecializationAreas: []string{"Causeway Bay", "North Point"},
			SpecializationTypes: []string{"studio", "apartment"},
			Languages:           []string{"en"},
		},
	}
	for _, req := range agents {
		ag, err := a.Agents.Create(ctx, req)
		if err != nil {
			log.Fatal("create agent failed", zap.String("email", req.Email), zap.Error(err))
		}
		log.Info("agent created", zap.Int64("id", ag.ID), zap.String("name", ag.Name))
	}

	// ================== PROPERTIES ==================
	log.Info("importing listings")
	scraped := time.Now().UTC().Add(-6 * time.Hour)
	listings := []property.ListingInput{
		{
			Title:        "Harbour View 2BR",
			Development:  "The Harbourside",
			Area:         "Central",
			PropertyType: "apartment",
			Bedrooms:     intPtr(2),
			Bathrooms:    intPtr(1),
			SaleableArea: "650 sqft",
			Price:        intPtr(45000),
			Source:       domain.Source28Hse,
			SourceID:     "28hse-1001",
			ScrapedAt:    &scraped,
		},
		{
			Title:        "Cosy Studio near MTR",
			Area:         "Causeway Bay",
			PropertyType: "studio",
			Bedrooms:     intPtr(0),
			SaleableArea: "280 sqft",
			Price:        intPtr(16500),
			Source:       domain.SourceSquarefoot,
			SourceID:     "sqf-2001",
			ScrapedAt:    &scraped,
		},
		{
			Title:        "Family 3BR with Clubhouse",
			Development:  "Harbour Green",
			Area:         "Tsim Sha Tsui",
			PropertyType: "apartment",
			Bedrooms:     intPtr(3),
			Bathrooms:    intPtr(2),
			SaleableArea: "980 sqft",
			Price:        intPtr(62000),
			Source:       domain.SourceCentaline,
			SourceID:     "ctl-3001",
			ScrapedAt:    &scraped,
		},
	}
	res, err := a.Properties.Import(ctx, listings)
	if err != nil {
		log.Fatal("import listings failed", zap.Error(err))
	}
	log.Info("listings imported", zap.Int("created", res.Created), zap.Int("updated", res.Updated))

	// ================== LEADS ==================
	log.Info("creating leads")
	followUp := time.Now().UTC().Add(24 * time.Hour)
	leads := []lead.CreateLeadRequest{
		{
			Name:            "Chan Tai Man",
			WhatsAppNumber:  "+85261234567",
			Email:           "taiman@example.com",
			Source:          domain.SourceWhatsApp,
			OriginalMessage: "Looking for a 2 bedroom in Central",
			Priority:        string(domain.PriorityHigh),
			BudgetMin:       intPtr(35000),
			BudgetMax:       intPtr(50000),
			PreferredAreas:  []string{"Central"},
			PropertyType:    "apartment",
			Bedrooms:        intPtr(2),
			NextFollowUpAt:  &followUp,
		},
		{
			Name:            "Priya Shah",
			InstagramHandle: "priya.hk",
			Source:          domain.SourceInstagram,
			SourcePostID:    "ig-post-77",
			OriginalMessage: "Is the studio still available?",
			BudgetMax:       intPtr(18000),
			PreferredAreas:  []string{"Causeway Bay"},
			PropertyType:    "studio",
		},
		{
			Name:           "Lam Ka Yan",
			Phone:          "+852 5555 0199",
			Priority:       string(domain.PriorityUrgent),
			BudgetMin:      intPtr(55000),
			BudgetMax:      intPtr(70000),
			PreferredAreas: []string{"Tsim Sha Tsui"},
			Bedrooms:       intPtr(3),
		},
		{
			Name:     "Walk-in enquiry",
			Status:   string(domain.LeadContacted),
			Priority: string(domain.PriorityLow),
		},
	}
	for _, req := range leads {
		l, err := a.Leads.Create(ctx, req)
		if err != nil {
			log.Fatal("create lead failed", zap.String("name", req.Name), zap.Error(err))
		}
		assigned := "unassigned"
		if l.IsAssigned() {
			assigned = fmt.Sprintf("agent %d", *l.AssignedAgentID)
		}
		log.Info("lead created",
			zap.Int64("id", l.ID),
			zap.String("name", l.Name),
			zap.Int("score", l.Score),
			zap.String("assigned", assigned),
		)

		if l.Source == domain.SourceWhatsApp {
			if _, err := a.Leads.AddInteraction(ctx, l.ID, lead.CreateInteractionRequest{
				Type:      domain.InteractionMessage,
				Channel:   domain.ChannelWhatsApp,
				Direction: domain.DirectionOutbound,
				Message:   "Thanks for reaching out! When would you like to view?",
				AgentID:   l.AssignedAgentID,
			}); err != nil {
				log.Fatal("add interaction failed", zap.Int64("lead_id", l.ID), zap.Error(err))
			}
		}
	}

	log.Info("seed complete")
}
