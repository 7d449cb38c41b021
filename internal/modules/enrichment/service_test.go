package enrichment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"propertycrm/internal/domain"
	"propertycrm/internal/repository"
	"propertycrm/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func systemIs(system string) any {
	return mock.MatchedBy(func(r Request) bool { return r.System == system })
}

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T, gen Generator) (*Service, *repository.Store, *domain.Property) {
	t.Helper()
	store := testutil.NewStore(t)
	price := 45000
	p := &domain.Property{
		Title:        "Harbour View 2BR",
		Development:  "The Harbourfront Landmark",
		SaleableArea: "650 sqft",
		Price:        &price,
		Source:       domain.Source28Hse,
		SourceID:     "a1",
	}
	_, err := store.Properties.Upsert(context.Background(), p)
	require.NoError(t, err)

	svc := NewService(store, gen, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, store, p
}

func TestGenerateContent(t *testing.T) {
	gen := new(MockGenerator)
	svc, store, p := setup(t, gen)
	ctx := context.Background()

	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r Request) bool {
		return r.System == captionSystem && strings.Contains(r.Prompt, "professional") && strings.Contains(r.Prompt, "HK$45,000")
	})).Return("海景兩房 #海景 #租屋", nil).Once()
	gen.On("Generate", mock.Anything, systemIs(hashtagSystem)).Return("#西九龍 #海景 #西九龍", nil).Once()
	gen.On("Generate", mock.Anything, systemIs(summarySystem)).Return("一\n\n二\n三\n四", nil).Once()

	c, err := svc.GenerateContent(ctx, p.ID, "Professional")
	require.NoError(t, err)
	gen.AssertExpectations(t)

	assert.False(t, c.Fallback)
	assert.Equal(t, StyleProfessional, c.Style)
	assert.True(t, strings.HasSuffix(c.Caption, callToAction))
	assert.Equal(t, []string{"#西九龍", "#海景"}, c.Hashtags[:2])
	assert.Len(t, c.Hashtags, 2+len(defaultHashtags))
	assert.Equal(t, "一\n二\n三", c.Summary)

	stored, err := store.Properties.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Caption, stored.Caption)
	assert.Equal(t, "professional", stored.CaptionStyle)
	require.NotNil(t, stored.EnrichedAt)
}

func TestGenerateContentFallsBack(t *testing.T) {
	gen := new(MockGenerator)
	svc, _, p := setup(t, gen)

	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	c, err := svc.GenerateContent(context.Background(), p.ID, "")
	require.NoError(t, err)
	assert.True(t, c.Fallback)
	assert.Equal(t, StyleEngaging, c.Style)
	assert.Contains(t, c.Caption, "🏠 Harbour View 2BR")
	assert.Contains(t, c.Caption, "HK$45,000")
	assert.Equal(t, defaultHashtags, c.Hashtags)
	assert.Equal(t, "The Harbourfron\nHK$45,000\n面積: 650 sqft", c.Summary)
}

func TestGenerateContentWithoutGenerator(t *testing.T) {
	svc, _, p := setup(t, nil)

	c, err := svc.GenerateContent(context.Background(), p.ID, "casual")
	require.NoError(t, err)
	assert.True(t, c.Fallback)

	_, err = svc.GenerateContent(context.Background(), p.ID, "poetic")
	assert.ErrorIs(t, err, ErrInvalidStyle)

	_, err = svc.GenerateContent(context.Background(), 999, "casual")
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestExtractHashtagsCaps(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("#tag")
		b.WriteRune(rune('a' + i))
		b.WriteString(" ")
	}
	tags := extractHashtags(b.String())
	assert.Len(t, tags, maxHashtags)
	assert.Equal(t, "#taga", tags[0])
}
