package schedule

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fantasy-helper/guidance-service/internal/models"
)

// ScheduleResolver resolves a (team, date range) pair to an ordered schedule.
type ScheduleResolver interface {
	Resolve(ctx context.Context, teamCode string, start, end time.Time) Result
}

// Aggregator merges the per-team schedules needed for every active roster
// player into one deduplicated game set.
type Aggregator struct {
	resolver ScheduleResolver
	logger   *logrus.Logger
}

// NewAggregator creates an aggregator over the given resolver.
func NewAggregator(resolver ScheduleResolver, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		resolver: resolver,
		logger:   logger,
	}
}

// Aggregate resolves the schedule of every distinct NHL team with an active
// roster player and concatenates the results, deduplicating by game key.
// Each distinct team is resolved exactly once regardless of how many players
// share it; players without a known affiliation are skipped. On key
// collisions the later record wins while keeping the first record's position.
func (a *Aggregator) Aggregate(ctx context.Context, roster []models.Player, weekStart, weekEnd time.Time) Result {
	var warnings []string
	var games []models.Game
	index := make(map[string]int)
	seen := make(map[string]bool)

	for _, player := range roster {
		if player.Status != models.StatusActive {
			continue
		}
		if player.NHLTeam == "" || player.NHLTeam == models.UnknownTeam {
			continue
		}
		if seen[player.NHLTeam] {
			continue
		}
		seen[player.NHLTeam] = true

		res := a.resolver.Resolve(ctx, player.NHLTeam, weekStart, weekEnd)
		warnings = append(warnings, res.Warnings...)

		for _, g := range res.Games {
			key := g.Key()
			if i, ok := index[key]; ok {
				games[i] = g
				continue
			}
			index[key] = len(games)
			games = append(games, g)
		}
	}

	a.logger.WithFields(logrus.Fields{
		"teams_resolved": len(seen),
		"games":          len(games),
	}).Debug("Aggregated week schedule")

	return Result{Games: games, Warnings: warnings}
}
