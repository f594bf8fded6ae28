package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fantasy-helper/guidance-service/internal/models"
	"github.com/fantasy-helper/guidance-service/pkg/metrics"
)

// Fetcher retrieves a full season schedule for a team from an upstream source.
type Fetcher interface {
	FetchSeason(ctx context.Context, teamCode, season string) ([]models.Game, error)
}

// Store is the opaque cache for full-season schedules, keyed by (team, season).
// No TTL or invalidation is required; entries are refetched only on miss.
type Store interface {
	GetSeason(ctx context.Context, teamCode, season string) ([]models.Game, bool, error)
	PutSeason(ctx context.Context, teamCode, season string, games []models.Game) error
}

// Result carries a resolved schedule along with any non-fatal warnings
// collected on the way. Collaborator failures degrade to an empty game list
// with a warning instead of an error.
type Result struct {
	Games    []models.Game
	Warnings []string
}

// Resolver answers (team, date range) schedule queries from the cache,
// fetching and caching a full season on miss and annotating back-to-back
// game pairs within the requested range.
type Resolver struct {
	store   Store
	fetcher Fetcher
	logger  *logrus.Logger
}

// NewResolver creates a schedule resolver over the given cache and fetcher.
func NewResolver(store Store, fetcher Fetcher, logger *logrus.Logger) *Resolver {
	return &Resolver{
		store:   store,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Resolve returns the team's games within [start, end] inclusive, in the
// source's chronological order, with back-to-back flags computed over the
// filtered sequence. The season is derived from the start date.
func (r *Resolver) Resolve(ctx context.Context, teamCode string, start, end time.Time) Result {
	season := SeasonCode(start)
	log := r.logger.WithFields(logrus.Fields{
		"team_code": teamCode,
		"season":    season,
	})

	games, ok, err := r.store.GetSeason(ctx, teamCode, season)
	if err != nil {
		log.WithError(err).Warn("Schedule cache read failed, treating as miss")
		ok = false
	}

	if ok {
		metrics.ScheduleCacheHits.Inc()
	} else {
		metrics.ScheduleCacheMisses.Inc()

		fetched, ferr := r.fetcher.FetchSeason(ctx, teamCode, season)
		if ferr != nil {
			metrics.SeasonFetchErrors.Inc()
			log.WithError(ferr).Warn("Season schedule fetch failed, degrading to empty schedule")
			return Result{Warnings: []string{
				fmt.Sprintf("no schedule available for %s (%s): fetch failed", teamCode, season),
			}}
		}
		metrics.SeasonFetches.Inc()

		if perr := r.store.PutSeason(ctx, teamCode, season, fetched); perr != nil {
			log.WithError(perr).Warn("Schedule cache write failed")
		}

		// Read back what was stored rather than trusting the write echo.
		games, ok, err = r.store.GetSeason(ctx, teamCode, season)
		if err != nil || !ok {
			if err != nil {
				log.WithError(err).Warn("Schedule cache re-read failed after fetch")
			}
			return Result{Warnings: []string{
				fmt.Sprintf("no schedule available for %s (%s): cache read-back failed", teamCode, season),
			}}
		}
	}

	return Result{Games: filterRange(games, start, end)}
}

// filterRange keeps games whose calendar date falls within [start, end]
// inclusive and flags back-to-back pairs. A game is back-to-back when the
// previous game in the filtered sequence is exactly one calendar day earlier;
// the earlier game of a detected pair is marked retroactively. Games adjacent
// to the window but outside it never contribute a flag. The source order is
// assumed chronological and is not re-sorted.
func filterRange(games []models.Game, start, end time.Time) []models.Game {
	startDay := dateOnly(start)
	endDay := dateOnly(end)

	var filtered []models.Game
	for _, g := range games {
		day := dateOnly(g.GameDate)
		if day.Before(startDay) || day.After(endDay) {
			continue
		}

		g.BackToBack = false
		if n := len(filtered); n > 0 {
			prevDay := dateOnly(filtered[n-1].GameDate)
			if day.Sub(prevDay) == 24*time.Hour {
				g.BackToBack = true
				filtered[n-1].BackToBack = true
			}
		}
		filtered = append(filtered, g)
	}
	return filtered
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
