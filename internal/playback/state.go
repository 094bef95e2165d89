package playback

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/venuecast/venuecast-backend/pkg/types"
)

// Phase is the scheduler's lifecycle position.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePlaying Phase = "playing"
	PhasePaused  Phase = "paused"
)

// Item is the playback snapshot of an approved submission. It carries
// everything the display needs so the scheduler never re-reads the database
// mid-rotation.
type Item struct {
	ID              string           `json:"id"`
	Kind            string           `json:"type"`
	Text            string           `json:"text,omitempty"`
	TextColor       string           `json:"textColor,omitempty"`
	FilePath        *string          `json:"filePath,omitempty"`
	GiftOrder       *types.GiftOrder `json:"giftOrder,omitempty"`
	Sender          string           `json:"sender"`
	Price           decimal.Decimal  `json:"price"`
	DurationSeconds int              `json:"durationSeconds"`
}

// State is the persisted scheduler document. Epoch fields are unix
// milliseconds; remaining time is never stored, always recomputed, so a
// restart mid-rotation resumes the countdown instead of resetting it.
type State struct {
	Phase            Phase  `json:"phase"`
	Current          *Item  `json:"current,omitempty"`
	StartedAtMS      int64  `json:"startedAtMs,omitempty"`
	DurationSeconds  int    `json:"durationSeconds,omitempty"`
	PauseStartedAtMS int64  `json:"pauseStartedAtMs,omitempty"`
	PauseSeconds     int    `json:"pauseSeconds,omitempty"`
	Backlog          []Item `json:"backlog"`
	Generation       int64  `json:"generation"`
	UpdatedAtMS      int64  `json:"updatedAtMs"`
}

// NewState returns an empty idle document.
func NewState() *State {
	return &State{Phase: PhaseIdle, Backlog: []Item{}}
}

// RemainingSeconds recomputes the active countdown from the start epoch. A
// start epoch in the future (clock skew) clamps to the full duration rather
// than going negative.
func (s *State) RemainingSeconds(now time.Time) int {
	if s.Phase != PhasePlaying || s.Current == nil {
		return 0
	}
	elapsed := (now.UnixMilli() - s.StartedAtMS) / 1000
	if elapsed < 0 {
		return s.DurationSeconds
	}
	remaining := s.DurationSeconds - int(elapsed)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PauseRemainingSeconds recomputes the inter-item gap countdown.
func (s *State) PauseRemainingSeconds(now time.Time) int {
	if s.Phase != PhasePaused {
		return 0
	}
	elapsed := (now.UnixMilli() - s.PauseStartedAtMS) / 1000
	if elapsed < 0 {
		return s.PauseSeconds
	}
	remaining := s.PauseSeconds - int(elapsed)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ProgressFraction is a UI convenience in [0,1]; zero-duration items report 1.
func (s *State) ProgressFraction(now time.Time) float64 {
	if s.Phase != PhasePlaying || s.Current == nil || s.DurationSeconds <= 0 {
		return 1
	}
	f := float64(s.DurationSeconds-s.RemainingSeconds(now)) / float64(s.DurationSeconds)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// StateDTO is the client-facing projection with derived countdowns resolved
// against the server clock.
type StateDTO struct {
	Phase                 Phase   `json:"phase"`
	Current               *Item   `json:"activeItem,omitempty"`
	RemainingSeconds      int     `json:"remainingSeconds"`
	PausePhase            bool    `json:"pausePhase"`
	PauseRemainingSeconds int     `json:"pauseRemainingSeconds"`
	BacklogLength         int     `json:"backlogLength"`
	StartedAtMS           int64   `json:"startedAtMs,omitempty"`
	DurationSeconds       int     `json:"durationSeconds,omitempty"`
	PauseStartedAtMS      int64   `json:"pauseStartedAtMs,omitempty"`
	ProgressFraction      float64 `json:"progressFraction"`
	Generation            int64   `json:"generation"`
	ServerTimeMS          int64   `json:"serverTimeMs"`
}

// Snapshot projects the document for clients at the given instant.
func (s *State) Snapshot(now time.Time) StateDTO {
	return StateDTO{
		Phase:                 s.Phase,
		Current:               s.Current,
		RemainingSeconds:      s.RemainingSeconds(now),
		PausePhase:            s.Phase == PhasePaused,
		PauseRemainingSeconds: s.PauseRemainingSeconds(now),
		BacklogLength:         len(s.Backlog),
		StartedAtMS:           s.StartedAtMS,
		DurationSeconds:       s.DurationSeconds,
		PauseStartedAtMS:      s.PauseStartedAtMS,
		ProgressFraction:      s.ProgressFraction(now),
		Generation:            s.Generation,
		ServerTimeMS:          now.UnixMilli(),
	}
}
