package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fantasy-helper/guidance-service/internal/guidance"
	"github.com/fantasy-helper/guidance-service/internal/models"
	"github.com/fantasy-helper/guidance-service/internal/schedule"
	"github.com/fantasy-helper/guidance-service/pkg/metrics"
)

// weekLength is the span of the guidance window starting at the as-of date.
const weekLength = 7 * 24 * time.Hour

// GuidanceStore is the persistence surface one guidance run needs.
type GuidanceStore interface {
	GetLeague(leagueID string) (*models.League, error)
	GetRoster(leagueID, teamID string, week int) (*models.RosterSnapshot, error)
	SaveRun(run *models.GuidanceRun) error
}

// GuidanceService runs the full guidance pipeline for one team week:
// roster lookup, schedule aggregation, recommendation computation,
// summarization, best-effort rewrite, and persistence of the run.
type GuidanceService struct {
	store      GuidanceStore
	aggregator *schedule.Aggregator
	engine     *guidance.Engine
	rewriter   Rewriter
	logger     *logrus.Logger
}

// NewGuidanceService wires the guidance pipeline.
func NewGuidanceService(store GuidanceStore, aggregator *schedule.Aggregator, engine *guidance.Engine, rewriter Rewriter, logger *logrus.Logger) *GuidanceService {
	if rewriter == nil {
		rewriter = NoopRewriter{}
	}
	return &GuidanceService{
		store:      store,
		aggregator: aggregator,
		engine:     engine,
		rewriter:   rewriter,
		logger:     logger,
	}
}

// RunTeam computes, summarizes, and persists guidance for one team week.
// The week window starts at the as-of date and spans seven days.
func (s *GuidanceService) RunTeam(ctx context.Context, leagueID, teamID string, week int, asOf time.Time) (*models.GuidanceRun, error) {
	log := s.logger.WithFields(logrus.Fields{
		"league_id": leagueID,
		"team_id":   teamID,
		"week":      week,
	})

	league, err := s.store.GetLeague(leagueID)
	if err != nil {
		metrics.Runs.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("league %s not found: %w", leagueID, err)
	}

	roster, err := s.store.GetRoster(leagueID, teamID, week)
	if err != nil {
		metrics.Runs.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("no roster for team %s week %d: %w", teamID, week, err)
	}

	weekStart := asOf
	weekEnd := asOf.Add(weekLength)

	agg := s.aggregator.Aggregate(ctx, roster.Players, weekStart, weekEnd)

	currentSeason := schedule.SeasonCode(asOf)
	lastSeason := schedule.PreviousSeason(currentSeason)

	items, warnings := s.engine.Compute(roster.Players, agg.Games, currentSeason, lastSeason, league.Settings)
	warnings = append(agg.Warnings, warnings...)

	bullets := guidance.TLDR(items)
	pretty := s.rewriter.Rewrite(ctx, bullets)

	run := &models.GuidanceRun{
		LeagueID:     leagueID,
		TeamID:       teamID,
		Week:         week,
		Items:        items,
		Bullets:      pretty,
		Warnings:     warnings,
		ScoringType:  league.Settings.Type,
		SourceSeason: currentSeason,
	}

	if err := s.store.SaveRun(run); err != nil {
		metrics.Runs.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to persist guidance run: %w", err)
	}

	metrics.Runs.WithLabelValues("success").Inc()
	log.WithFields(logrus.Fields{
		"items":    len(items),
		"warnings": len(warnings),
	}).Info("Guidance run completed")

	return run, nil
}
