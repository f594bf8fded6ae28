package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/fantasy-helper/guidance-service/internal/models"
)

// BatchStore lists the leagues and rostered teams a batch run covers.
type BatchStore interface {
	ListLeagues() ([]models.League, error)
	ListRosterTeams(leagueID string, week int) ([]string, error)
}

// TeamRunner runs the guidance pipeline for a single team week.
type TeamRunner interface {
	RunTeam(ctx context.Context, leagueID, teamID string, week int, asOf time.Time) (*models.GuidanceRun, error)
}

// BatchRunner executes the nightly guidance run across all configured
// leagues. Failures are isolated per team: a failing unit is logged and
// skipped while the batch continues.
type BatchRunner struct {
	store    BatchStore
	guidance TeamRunner
	cron     *cron.Cron
	spec     string
	logger   *logrus.Logger
}

// NewBatchRunner creates a batch runner with the given cron expression.
func NewBatchRunner(store BatchStore, guidanceService TeamRunner, spec string, logger *logrus.Logger) *BatchRunner {
	return &BatchRunner{
		store:    store,
		guidance: guidanceService,
		cron:     cron.New(),
		spec:     spec,
		logger:   logger,
	}
}

// Start schedules the nightly run. The cron scheduler runs until Stop.
func (b *BatchRunner) Start() error {
	_, err := b.cron.AddFunc(b.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		b.RunAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule nightly run: %w", err)
	}

	b.cron.Start()
	b.logger.WithField("cron", b.spec).Info("Nightly guidance runner scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running batch to finish.
func (b *BatchRunner) Stop() {
	ctx := b.cron.Stop()
	<-ctx.Done()
}

// RunAll processes every league and every team with a stored roster for the
// league's current week. Per-team errors are logged and do not abort the
// batch; the result counts are returned for observability.
func (b *BatchRunner) RunAll(ctx context.Context) (succeeded, failed int) {
	start := time.Now()
	asOf := time.Now().UTC()

	leagues, err := b.store.ListLeagues()
	if err != nil {
		b.logger.WithError(err).Error("Nightly run aborted: failed to list leagues")
		return 0, 0
	}

	for _, league := range leagues {
		log := b.logger.WithField("league_id", league.ID)

		teams, err := b.store.ListRosterTeams(league.ID, league.CurrentWeek)
		if err != nil {
			log.WithError(err).Error("Skipping league: failed to list rosters")
			continue
		}

		for _, teamID := range teams {
			if ctx.Err() != nil {
				b.logger.WithError(ctx.Err()).Warn("Nightly run cancelled")
				return succeeded, failed
			}

			if _, err := b.guidance.RunTeam(ctx, league.ID, teamID, league.CurrentWeek, asOf); err != nil {
				failed++
				log.WithError(err).WithField("team_id", teamID).Error("Guidance run failed for team")
				continue
			}
			succeeded++
		}
	}

	b.logger.WithFields(logrus.Fields{
		"succeeded": succeeded,
		"failed":    failed,
		"duration":  time.Since(start).String(),
	}).Info("Nightly guidance run finished")

	return succeeded, failed
}
