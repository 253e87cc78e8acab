package cache

import (
	"github.com/dgraph-io/ristretto"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/spf13/viper"
)

var S *ristretto_store.RistrettoStore

func NewStore() error {
	maxCost := viper.GetInt64("performance.cache_max_cost")
	if maxCost <= 0 {
		maxCost = 128 << 20
	}
	numCounters := viper.GetInt64("performance.cache_counters")
	if numCounters <= 0 {
		numCounters = 10_000
	}

	cacher, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return err
	}

	S = ristretto_store.NewRistretto(cacher)
	return nil
}
