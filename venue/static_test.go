package venue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSearcher_FiltersByCuisine(t *testing.T) {
	s := NewStaticSearcher(DefaultFixtures())

	got, err := s.SearchVenues(context.Background(), "italian", "", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Trattoria Lucia", got[0].Name)
}

func TestStaticSearcher_FiltersByLocation(t *testing.T) {
	s := NewStaticSearcher(DefaultFixtures())

	got, err := s.SearchVenues(context.Background(), "", "downtown", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Trattoria Lucia", got[0].Name)
	assert.Equal(t, "The Brass Spoon", got[1].Name)
}

func TestStaticSearcher_EmptyCriteriaMatchEverything(t *testing.T) {
	s := NewStaticSearcher(DefaultFixtures())

	got, err := s.SearchVenues(context.Background(), "", "", 0)
	require.NoError(t, err)
	assert.Len(t, got, len(DefaultFixtures()))
}

func TestStaticSearcher_RespectsLimit(t *testing.T) {
	s := NewStaticSearcher(DefaultFixtures())

	got, err := s.SearchVenues(context.Background(), "", "", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStaticSearcher_NoMatch(t *testing.T) {
	s := NewStaticSearcher(DefaultFixtures())

	got, err := s.SearchVenues(context.Background(), "ethiopian", "", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStaticSearcher_CancelledContext(t *testing.T) {
	s := NewStaticSearcher(DefaultFixtures())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SearchVenues(ctx, "", "", 5)
	assert.Error(t, err)
}

func TestCuisineTags(t *testing.T) {
	tags := cuisineTags([]string{"italian_restaurant", "restaurant", "food", "point_of_interest"}, "italian")
	assert.Equal(t, []string{"Italian"}, tags)

	// Multi-word type identifiers get every word capitalized.
	tags = cuisineTags([]string{"middle_eastern_restaurant"}, "")
	assert.Equal(t, []string{"Middle Eastern"}, tags)

	// No usable types: fall back to the queried cuisine.
	tags = cuisineTags([]string{"restaurant", "establishment"}, "tibetan")
	assert.Equal(t, []string{"tibetan"}, tags)

	tags = cuisineTags(nil, "")
	assert.Empty(t, tags)
}
