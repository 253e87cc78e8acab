package models

import (
	"time"

	"gorm.io/datatypes"
)

type Poll struct {
	BaseModel

	Question     string                          `json:"question"`
	Options      datatypes.JSONSlice[PollOption] `json:"options"`
	ClosingAt    *time.Time                      `json:"closing_at"`
	ManualClosed bool                            `json:"manual_closed"`
	AccountID    uint                            `json:"account_id"`

	Metric *PollMetric `json:"metric,omitempty" gorm:"-"`
}

// HasOption reports whether the given option id belongs to this poll.
func (p Poll) HasOption(optionID string) bool {
	for _, option := range p.Options {
		if option.ID == optionID {
			return true
		}
	}
	return false
}

type PollOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type PollMetric struct {
	TotalVotes          int64              `json:"total_votes"`
	ByOptions           map[string]int64   `json:"by_options"`
	ByOptionsPercentage map[string]float64 `json:"by_options_percentage"`
	BarWidths           map[string]int     `json:"bar_widths"`
}
