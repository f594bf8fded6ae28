package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UnknownTeam marks a roster player with no known NHL team affiliation.
// Such players are excluded from schedule lookups.
const UnknownTeam = "UNK"

// StatusActive is the roster status that participates in recommendations.
const StatusActive = "active"

// TeamRef identifies an NHL team by its three-letter code.
type TeamRef struct {
	Abbrev string `json:"abbrev"`
}

// Game is a single NHL game as stored in the schedule cache.
type Game struct {
	ID         string    `json:"id,omitempty"`
	HomeTeam   TeamRef   `json:"homeTeam"`
	AwayTeam   TeamRef   `json:"awayTeam"`
	GameDate   time.Time `json:"gameDate"`
	BackToBack bool      `json:"backToBack"`
}

// Key returns the identity used to deduplicate games across team schedules.
// The explicit game ID wins when present; otherwise the (home, away, date)
// composite serves as a fallback key.
func (g Game) Key() string {
	if g.ID != "" {
		return g.ID
	}
	return fmt.Sprintf("%s-%s-%s", g.HomeTeam.Abbrev, g.AwayTeam.Abbrev, g.GameDate.UTC().Format("2006-01-02"))
}

// Player is one roster slot in a fantasy team snapshot.
type Player struct {
	PlayerID string `json:"playerId,omitempty"`
	Name     string `json:"name"`
	Position string `json:"position"`
	NHLTeam  string `json:"nhlTeam"`
	Status   string `json:"status"`
}

// ScoringSettings holds a league's scoring configuration. Only the presence
// of category codes drives guidance rationale, not the weights.
type ScoringSettings struct {
	Type       string             `json:"type"`
	Categories map[string]float64 `json:"categories"`
}

// HasCategory reports whether the league scores the given category code.
func (s ScoringSettings) HasCategory(code string) bool {
	_, ok := s.Categories[code]
	return ok
}

// ItemKind tags the variant of a guidance item.
type ItemKind string

const (
	ItemStartBench      ItemKind = "start_bench"
	ItemScheduleInsight ItemKind = "schedule_insight"
)

// GuidanceItem is one atomic recommendation or insight. StartBench items
// populate PlayerIn/PlayerOut/Reason; ScheduleInsight items populate Message.
// FallbackReason is set when a value was carried over from a prior season.
type GuidanceItem struct {
	Kind           ItemKind `json:"type"`
	PlayerIn       string   `json:"playerIn,omitempty"`
	PlayerOut      string   `json:"playerOut,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	Message        string   `json:"message,omitempty"`
	SourceSeason   string   `json:"sourceSeason"`
	FallbackReason *string  `json:"fallbackReason"`
}

// League is a configured fantasy league.
type League struct {
	ID          string          `gorm:"primaryKey" json:"league_id"`
	Name        string          `gorm:"not null" json:"name"`
	CurrentWeek int             `json:"current_week"`
	Settings    ScoringSettings `gorm:"serializer:json" json:"settings"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// RosterSnapshot is a team's roster for one league week.
type RosterSnapshot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeagueID  string    `gorm:"index:idx_roster_lookup;not null" json:"league_id"`
	TeamID    string    `gorm:"index:idx_roster_lookup;not null" json:"team_id"`
	Week      int       `gorm:"index:idx_roster_lookup" json:"week"`
	Players   []Player  `gorm:"serializer:json" json:"players"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GuidanceRun is one persisted guidance computation for a team.
type GuidanceRun struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LeagueID     string         `gorm:"index:idx_run_lookup;not null" json:"league_id"`
	TeamID       string         `gorm:"index:idx_run_lookup;not null" json:"team_id"`
	Week         int            `json:"week"`
	Items        []GuidanceItem `gorm:"serializer:json" json:"items"`
	Bullets      []string       `gorm:"serializer:json" json:"tl_dr"`
	Warnings     []string       `gorm:"serializer:json" json:"warnings,omitempty"`
	ScoringType  string         `json:"scoring_type"`
	SourceSeason string         `json:"source_season"`
	CreatedAt    time.Time      `json:"created_at"`
}
