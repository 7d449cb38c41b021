package chatbot

import (
	"context"
	"strings"
	"time"

	"propertycrm/internal/metrics"

	"go.uber.org/zap"
)

const defaultUserID = "default"

type Service struct {
	sessions SessionStore
	log      *zap.Logger
	now      func() time.Time
}

func NewService(sessions SessionStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		sessions: sessions,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func normalizeUser(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return defaultUserID
	}
	return userID
}

// HandleMessage answers one message and persists the updated session.
func (s *Service) HandleMessage(ctx context.Context, userID, text string) (*Reply, error) {
	userID = normalizeUser(userID)

	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = newSession()
	}

	reply := Respond(sess, text)
	sess.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, userID, sess); err != nil {
		return nil, err
	}

	metrics.ChatbotIntents.WithLabelValues(reply.Intent).Inc()
	s.log.Debug("chatbot reply", zap.String("user_id", userID), zap.String("intent", reply.Intent))
	return &reply, nil
}

func (s *Service) Reset(ctx context.Context, userID string) error {
	return s.sessions.Delete(ctx, normalizeUser(userID))
}

func (s *Service) ActiveSessions(ctx context.Context) (int, error) {
	return s.sessions.Count(ctx)
}
