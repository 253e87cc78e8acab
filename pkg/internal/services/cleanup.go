package services

import (
	"github.com/rs/zerolog/log"
)

// DoAutoDatabaseCleanup sweeps votes that lost their poll to a concurrent
// deletion. Scheduled from main; safe to run at any time.
func (e *VotingEngine) DoAutoDatabaseCleanup() {
	log.Debug().Msg("Now cleaning up orphan votes...")

	count, err := e.Ledger.PurgeOrphans()
	if err != nil {
		log.Error().Err(err).Msg("An error occurred when cleaning up orphan votes...")
		return
	}

	log.Debug().Int64("count", count).Msg("Clean up orphan votes accomplished.")
}
