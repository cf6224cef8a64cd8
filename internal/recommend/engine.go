// Package recommend ranks catalog videos by content similarity to a
// reference video.
//
// The score for a candidate is a weighted combination of tag overlap and
// category match:
//
//	score = overlap * 0.7 + categoryMatch * 0.3 + jitter
//
// where overlap is the raw count of shared tags, categoryMatch is 1.0 for
// the same category and 0.5 otherwise, and jitter is a uniform draw from
// [-0.1, 0.1] for variety. Scores are clamped to 1.0; candidates at or
// below zero are dropped.
package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tubelet/tubelet/internal/metrics"
	"github.com/tubelet/tubelet/internal/store"
)

const (
	tagWeight      = 0.7
	categoryWeight = 0.3
	jitterSpan     = 0.1
)

// Catalog is the read side of the metadata store the engine ranks over.
type Catalog interface {
	LoadAll(ctx context.Context) (map[string]store.VideoRecord, error)
}

// Recommendation pairs a candidate video with its relevance and a
// human-readable reason.
type Recommendation struct {
	Video          store.VideoRecord `json:"video"`
	RelevanceScore float64           `json:"relevance_score"`
	Reason         string            `json:"reason"`
}

// Engine computes content-based recommendations. A nil random source
// disables jitter, which makes output fully deterministic.
type Engine struct {
	catalog Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an engine over catalog. rng may be nil to disable jitter;
// pass a seeded source for production variety.
func New(catalog Catalog, rng *rand.Rand) *Engine {
	return &Engine{catalog: catalog, rng: rng}
}

// Recommend returns up to limit candidates ranked by descending score,
// ties broken by ascending video id. The reference video never appears in
// its own results. Returns store.ErrNotFound when id is unknown.
func (e *Engine) Recommend(ctx context.Context, id string, limit int) ([]Recommendation, error) {
	start := time.Now()
	defer func() { metrics.ObserveRecommendDuration(time.Since(start)) }()

	if limit <= 0 {
		return []Recommendation{}, nil
	}

	records, err := e.catalog.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	ref, ok := records[id]
	if !ok {
		return nil, fmt.Errorf("video %q: %w", id, store.ErrNotFound)
	}
	refTags := ref.TagSet()

	// iterate in id order so a seeded source yields the same jitter per
	// candidate on every call
	ids := make([]string, 0, len(records))
	for vid := range records {
		ids = append(ids, vid)
	}
	sort.Strings(ids)

	recs := make([]Recommendation, 0, len(records)-1)
	for _, vid := range ids {
		if vid == id {
			continue
		}
		cand := records[vid]

		shared := sharedTags(refTags, cand.Tags)
		overlap := float64(len(shared))
		categoryMatch := 0.5
		if cand.Category == ref.Category {
			categoryMatch = 1.0
		}

		score := overlap*tagWeight + categoryMatch*categoryWeight + e.jitter()
		if score <= 0 {
			continue
		}
		if score > 1.0 {
			score = 1.0
		}

		recs = append(recs, Recommendation{
			Video:          cand,
			RelevanceScore: score,
			Reason:         buildReason(shared, cand.Category == ref.Category, ref.Category),
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].RelevanceScore != recs[j].RelevanceScore {
			return recs[i].RelevanceScore > recs[j].RelevanceScore
		}
		return recs[i].Video.ID < recs[j].Video.ID
	})

	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (e *Engine) jitter() float64 {
	if e.rng == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return (e.rng.Float64()*2 - 1) * jitterSpan
}

// sharedTags returns the candidate tags present in refTags, sorted for
// stable reason strings.
func sharedTags(refTags map[string]struct{}, candTags []string) []string {
	var shared []string
	for _, t := range candTags {
		if _, ok := refTags[t]; ok {
			shared = append(shared, t)
		}
	}
	sort.Strings(shared)
	return shared
}

func buildReason(shared []string, sameCategory bool, category string) string {
	var parts []string
	if len(shared) > 0 {
		parts = append(parts, "Similar topics: "+strings.Join(shared, ", "))
	}
	if sameCategory {
		parts = append(parts, "Same category: "+category)
	}
	if len(parts) == 0 {
		return "Recommended for you"
	}
	return strings.Join(parts, " | ")
}
