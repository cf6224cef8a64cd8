package recommend

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tubelet/tubelet/internal/store"
)

type memCatalog map[string]store.VideoRecord

func (m memCatalog) LoadAll(context.Context) (map[string]store.VideoRecord, error) {
	out := make(map[string]store.VideoRecord, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

func testCatalog() memCatalog {
	created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return memCatalog{
		"video_1": {ID: "video_1", Title: "Getting Started with AI", Category: "AI Basics",
			Tags: []string{"ai", "machine-learning", "beginner", "introduction"}, CreatedAt: created},
		"video_2": {ID: "video_2", Title: "Understanding Neural Networks", Category: "Deep Learning",
			Tags: []string{"ai", "neural-networks", "deep-learning", "intermediate"}, CreatedAt: created},
		"video_3": {ID: "video_3", Title: "Computer Vision Fundamentals", Category: "Computer Vision",
			Tags: []string{"computer-vision", "ai", "image-processing", "opencv"}, CreatedAt: created},
	}
}

func TestRecommendExcludesSelf(t *testing.T) {
	e := New(testCatalog(), nil)
	recs, err := e.Recommend(context.Background(), "video_1", 10)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	for _, r := range recs {
		assert.NotEqual(t, "video_1", r.Video.ID)
	}
}

func TestRecommendUnknownReference(t *testing.T) {
	e := New(testCatalog(), nil)
	_, err := e.Recommend(context.Background(), "ghost", 3)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecommendScoresWithinBounds(t *testing.T) {
	e := New(testCatalog(), rand.New(rand.NewSource(42)))
	for i := 0; i < 50; i++ {
		recs, err := e.Recommend(context.Background(), "video_1", 10)
		require.NoError(t, err)
		for _, r := range recs {
			assert.Greater(t, r.RelevanceScore, 0.0)
			assert.LessOrEqual(t, r.RelevanceScore, 1.0)
		}
	}
}

func TestRecommendRankingWithoutJitter(t *testing.T) {
	created := time.Now().UTC()
	catalog := memCatalog{
		"ref":       {ID: "ref", Category: "AI", Tags: []string{"ai", "ml"}, CreatedAt: created},
		"close":     {ID: "close", Category: "AI", Tags: []string{"ai", "ml", "extra"}, CreatedAt: created},
		"unrelated": {ID: "unrelated", Category: "Cooking", Tags: []string{"pasta"}, CreatedAt: created},
	}
	e := New(catalog, nil)

	recs, err := e.Recommend(context.Background(), "ref", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// two shared tags plus same category clamps to 1.0
	assert.Equal(t, "close", recs[0].Video.ID)
	assert.InDelta(t, 1.0, recs[0].RelevanceScore, 1e-9)
	assert.Equal(t, "Similar topics: ai, ml | Same category: AI", recs[0].Reason)

	// no shared tags, different category: 0.5*0.3
	assert.Equal(t, "unrelated", recs[1].Video.ID)
	assert.InDelta(t, 0.15, recs[1].RelevanceScore, 1e-9)
	assert.Equal(t, "Recommended for you", recs[1].Reason)
}

func TestRecommendLimitAndTieBreak(t *testing.T) {
	created := time.Now().UTC()
	catalog := memCatalog{
		"ref": {ID: "ref", Category: "AI", Tags: []string{"ai"}, CreatedAt: created},
		"b":   {ID: "b", Category: "Other", Tags: nil, CreatedAt: created},
		"a":   {ID: "a", Category: "Other", Tags: nil, CreatedAt: created},
		"c":   {ID: "c", Category: "Other", Tags: nil, CreatedAt: created},
	}
	e := New(catalog, nil)

	recs, err := e.Recommend(context.Background(), "ref", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// equal scores fall back to id order
	assert.Equal(t, "a", recs[0].Video.ID)
	assert.Equal(t, "b", recs[1].Video.ID)
}

func TestRecommendZeroLimit(t *testing.T) {
	e := New(testCatalog(), nil)
	recs, err := e.Recommend(context.Background(), "video_1", 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendDeterministicWithFixedSeed(t *testing.T) {
	first := New(testCatalog(), rand.New(rand.NewSource(7)))
	second := New(testCatalog(), rand.New(rand.NewSource(7)))

	a, err := first.Recommend(context.Background(), "video_1", 3)
	require.NoError(t, err)
	b, err := second.Recommend(context.Background(), "video_1", 3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

type failingCatalog struct{}

func (failingCatalog) LoadAll(context.Context) (map[string]store.VideoRecord, error) {
	return nil, errors.New("disk gone")
}

func TestRecommendCatalogFailure(t *testing.T) {
	e := New(failingCatalog{}, nil)
	_, err := e.Recommend(context.Background(), "video_1", 3)
	assert.Error(t, err)
}
