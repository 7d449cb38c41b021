package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"propertycrm/internal/domain"
	"propertycrm/internal/metrics"
	"propertycrm/internal/modules/scoring"
	"propertycrm/internal/repository"

	"go.uber.org/zap"
)

// InstagramInquiry turns an Instagram DM or comment into a lead. Repeat
// senders are matched by handle; new ones are auto-assigned.
func (s *Service) InstagramInquiry(ctx context.Context, req InstagramInquiryRequest) (*InquiryResult, error) {
	handle := strings.TrimSpace(req.InstagramHandle)
	if handle == "" {
		return nil, ErrMissingContact
	}
	propertyID := strings.TrimSpace(req.PropertyID)

	return s.inquiry(ctx, domain.ChannelInstagram, req.Message, propertyID,
		func(tx *repository.Store) (*domain.Lead, error) {
			return tx.Leads.FindByInstagramHandle(ctx, handle)
		},
		func() *domain.Lead {
			l := &domain.Lead{
				InstagramHandle:  handle,
				Source:           domain.SourceInstagram,
				SourcePostID:     strings.TrimSpace(req.PostID),
				SourcePropertyID: propertyID,
				OriginalMessage:  req.Message,
			}
			l.AddInterestedProperty(propertyID)
			return l
		},
		nil,
	)
}

func (s *Service) WhatsAppInquiry(ctx context.Context, req WhatsAppInquiryRequest) (*InquiryResult, error) {
	number := strings.TrimSpace(req.WhatsAppNumber)
	if number == "" {
		return nil, ErrMissingContact
	}

	return s.inquiry(ctx, domain.ChannelWhatsApp, req.Message, "",
		func(tx *repository.Store) (*domain.Lead, error) {
			return tx.Leads.FindByWhatsAppNumber(ctx, number)
		},
		func() *domain.Lead {
			return &domain.Lead{
				Name:            strings.TrimSpace(req.Name),
				WhatsAppNumber:  number,
				Source:          domain.SourceWhatsApp,
				OriginalMessage: req.Message,
			}
		},
		func(l *domain.Lead) {
			if l.Name == "" {
				l.Name = strings.TrimSpace(req.Name)
			}
		},
	)
}

func (s *Service) inquiry(
	ctx context.Context,
	channel, message, propertyID string,
	find func(tx *repository.Store) (*domain.Lead, error),
	build func() *domain.Lead,
	refresh func(l *domain.Lead),
) (*InquiryResult, error) {
	res := &InquiryResult{}
	var picked bool
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		now := s.now()

		l, err := find(tx)
		switch {
		case err == nil:
			l.LastContactAt = &now
			l.AddInterestedProperty(propertyID)
			if refresh != nil {
				refresh(l)
			}
			l.UpdatedAt = now
			if err := tx.Leads.Save(ctx, l); err != nil {
				return fmt.Errorf("save lead: %w", err)
			}
		case errors.Is(err, repository.ErrNotFound):
			l = build()
			l.Status = domain.LeadNew
			l.Priority = domain.PriorityMedium
			agent, err := s.picker.PickAgent(ctx, tx, l)
			if err != nil {
				return err
			}
			picked = true
			if agent != nil {
				l.AssignedAgentID = &agent.ID
			}
			if err := tx.Leads.Create(ctx, l); err != nil {
				return fmt.Errorf("create lead: %w", err)
			}
			res.IsNewLead = true
		default:
			return err
		}

		in := &domain.Interaction{
			LeadID:    l.ID,
			Type:      domain.InteractionMessage,
			Channel:   channel,
			Direction: domain.DirectionInbound,
			Message:   message,
			CreatedAt: now,
		}
		if err := tx.Interactions.Create(ctx, in); err != nil {
			return fmt.Errorf("record inquiry: %w", err)
		}
		if propertyID != "" {
			if err := tx.Properties.IncrementInquiries(ctx, propertyID); err != nil {
				return fmt.Errorf("count inquiry: %w", err)
			}
		}
		if err := scoring.Rescore(ctx, tx, l, now); err != nil {
			return err
		}
		res.Lead = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	if picked {
		metrics.RecordAssignment(metrics.ModeAuto, res.Lead.AssignedAgentID != nil)
	}

	s.log.Info("inquiry received",
		zap.String("channel", channel),
		zap.Int64("lead_id", res.Lead.ID),
		zap.Bool("new_lead", res.IsNewLead),
		zap.Int("score", res.Lead.Score),
	)
	return res, nil
}
