package services

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"

	localCache "github.com/lunarfall/ballot/pkg/internal/cache"
	"github.com/lunarfall/ballot/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// minBarWidth keeps option bars visible on result charts even for options
// with next to no votes.
const minBarWidth = 6

// Tally derives the per-option counts for a poll from its recorded votes.
// Every option appears in the result, options without votes with a zero
// count. Votes referencing the poll always count toward the total, so the
// total equals the ledger length for that poll.
func Tally(poll models.Poll, votes []models.Vote) models.PollMetric {
	byOptions := make(map[string]int64, len(poll.Options))
	for _, option := range poll.Options {
		byOptions[option.ID] = 0
	}

	var total int64
	for _, vote := range votes {
		if vote.PollID != poll.ID {
			continue
		}
		total++
		if _, ok := byOptions[vote.OptionID]; ok {
			byOptions[vote.OptionID]++
		}
	}

	denominator := total
	if denominator < 1 {
		denominator = 1
	}

	byOptionsPercentage := make(map[string]float64, len(byOptions))
	barWidths := make(map[string]int, len(byOptions))
	for id, count := range byOptions {
		byOptionsPercentage[id] = float64(count) / float64(denominator)
		width := int(count * 100 / denominator)
		if width < minBarWidth {
			width = minBarWidth
		}
		barWidths[id] = width
	}

	return models.PollMetric{
		TotalVotes:          total,
		ByOptions:           byOptions,
		ByOptionsPercentage: byOptionsPercentage,
		BarWidths:           barWidths,
	}
}

// GetPollMetric returns the tally for a poll, backed by the local cache
// when it is initialized. The cached value is advisory: it is flushed on
// every successful vote and purge, and expires on its own regardless.
func (e *VotingEngine) GetPollMetric(poll models.Poll) models.PollMetric {
	if localCache.S == nil {
		return e.computePollMetric(poll)
	}

	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	ctx := context.Background()

	metricCacheKey := pollMetricCacheKey(poll.ID)
	metricCache, err := marshal.Get(ctx, metricCacheKey, new(models.PollMetric))
	if err == nil {
		return *metricCache.(*models.PollMetric)
	}

	metric := e.computePollMetric(poll)
	_ = marshal.Set(
		ctx,
		metricCacheKey,
		metric,
		store.WithExpiration(5*time.Minute),
		store.WithTags([]string{"poll-metric", fmt.Sprintf("poll#%d", poll.ID)}),
	)

	return metric
}

func (e *VotingEngine) computePollMetric(poll models.Poll) models.PollMetric {
	votes, err := e.Ledger.VotesFor(poll.ID)
	if err != nil {
		log.Error().Err(err).Uint("poll", poll.ID).Msg("An error occurred when tallying poll votes...")
		return models.PollMetric{}
	}
	return Tally(poll, votes)
}

// FlushPollMetric drops the cached tally of one poll after its ledger
// changed.
func (e *VotingEngine) FlushPollMetric(pollID uint) {
	if localCache.S == nil {
		return
	}

	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	_ = marshal.Delete(context.Background(), pollMetricCacheKey(pollID))
}

func pollMetricCacheKey(pollID uint) string {
	return fmt.Sprintf("poll-metric#%d", pollID)
}
