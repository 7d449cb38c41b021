package enrichment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"propertycrm/internal/domain"
	"propertycrm/internal/metrics"
	"propertycrm/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrInvalidStyle     = errors.New("style must be engaging, professional or casual")
)

// Content is the generated marketing copy for one listing.
type Content struct {
	PropertyID int64     `json:"property_id"`
	Style      string    `json:"style"`
	Caption    string    `json:"caption"`
	Hashtags   []string  `json:"hashtags"`
	Summary    string    `json:"summary"`
	Fallback   bool      `json:"fallback"`
	EnrichedAt time.Time `json:"enriched_at"`
}

type Service struct {
	store     *repository.Store
	generator Generator
	log       *zap.Logger
	now       func() time.Time
}

// NewService builds the enricher. A nil generator makes every call use the
// template copy.
func NewService(store *repository.Store, generator Generator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     store,
		generator: generator,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) GenerateContent(ctx context.Context, propertyID int64, style string) (*Content, error) {
	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		style = StyleEngaging
	}
	if !validStyle(style) {
		return nil, ErrInvalidStyle
	}

	p, err := s.store.Properties.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	c := &Content{PropertyID: p.ID, Style: style, EnrichedAt: s.now()}

	caption, err := s.generate(ctx, Request{System: captionSystem, Prompt: captionPrompt(p, style), Temperature: 0.7, MaxTokens: 300})
	if err != nil {
		s.fallback(p, "caption", err)
		c.Caption = fallbackCaption(p)
		c.Fallback = true
	} else {
		c.Caption = caption + callToAction
	}

	tags, err := s.generate(ctx, Request{System: hashtagSystem, Prompt: hashtagPrompt(p), Temperature: 0.6, MaxTokens: 200})
	if err != nil {
		s.fallback(p, "hashtags", err)
		c.Fallback = true
	}
	c.Hashtags = extractHashtags(tags)

	summary, err := s.generate(ctx, Request{System: summarySystem, Prompt: summaryPrompt(p), Temperature: 0.5, MaxTokens: 100})
	if err != nil {
		s.fallback(p, "summary", err)
		summary = fallbackSummary(p)
		c.Fallback = true
	}
	c.Summary = clampLines(summary, maxSummaryLine)

	if err := s.store.Properties.SaveContent(ctx, p.ID, c.Caption, c.Style, c.Hashtags, c.Summary, c.EnrichedAt); err != nil {
		return nil, fmt.Errorf("save content: %w", err)
	}

	outcome := "generated"
	if c.Fallback {
		outcome = "fallback"
	}
	metrics.ContentGenerations.WithLabelValues(outcome).Inc()
	return c, nil
}

func (s *Service) generate(ctx context.Context, req Request) (string, error) {
	if s.generator == nil {
		return "", errors.New("no generator configured")
	}
	return s.generator.Generate(ctx, req)
}

func (s *Service) fallback(p *domain.Property, part string, err error) {
	s.log.Warn("content generation fell back to template",
		zap.Int64("property_id", p.ID),
		zap.String("part", part),
		zap.Error(err),
	)
}
