package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fantasy-helper/guidance-service/internal/models"
)

// DB wraps the gorm connection.
type DB struct {
	*gorm.DB
}

// NewConnection opens the postgres connection with the service connection
// pool settings and verifies it with a ping.
func NewConnection(databaseURL string, isDevelopment bool) (*DB, error) {
	logLevel := gormlogger.Error
	if isDevelopment {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithField("service", "guidance-service").Info("Database connection established successfully")

	return &DB{db}, nil
}

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Store provides persistence for leagues, roster snapshots, and guidance runs.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewStore creates a store and migrates its schema.
func NewStore(db *DB, logger *logrus.Logger) (*Store, error) {
	if err := db.AutoMigrate(&models.League{}, &models.RosterSnapshot{}, &models.GuidanceRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db.DB, logger: logger}, nil
}

// UpsertLeague creates or updates a league configuration.
func (s *Store) UpsertLeague(league *models.League) error {
	return s.db.Save(league).Error
}

// GetLeague loads a league by ID.
func (s *Store) GetLeague(leagueID string) (*models.League, error) {
	var league models.League
	if err := s.db.First(&league, "id = ?", leagueID).Error; err != nil {
		return nil, err
	}
	return &league, nil
}

// ListLeagues returns all configured leagues.
func (s *Store) ListLeagues() ([]models.League, error) {
	var leagues []models.League
	if err := s.db.Order("id").Find(&leagues).Error; err != nil {
		return nil, err
	}
	return leagues, nil
}

// UpsertRoster stores a team's roster snapshot for a week, replacing any
// previous snapshot for the same (league, team, week).
func (s *Store) UpsertRoster(snapshot *models.RosterSnapshot) error {
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}

	var existing models.RosterSnapshot
	err := s.db.Where("league_id = ? AND team_id = ? AND week = ?",
		snapshot.LeagueID, snapshot.TeamID, snapshot.Week).First(&existing).Error
	if err == nil {
		snapshot.ID = existing.ID
		snapshot.CreatedAt = existing.CreatedAt
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	return s.db.Save(snapshot).Error
}

// GetRoster loads a team's roster snapshot for a week.
func (s *Store) GetRoster(leagueID, teamID string, week int) (*models.RosterSnapshot, error) {
	var snapshot models.RosterSnapshot
	err := s.db.Where("league_id = ? AND team_id = ? AND week = ?", leagueID, teamID, week).
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ListRosterTeams returns the team IDs with a stored roster snapshot for a
// league week.
func (s *Store) ListRosterTeams(leagueID string, week int) ([]string, error) {
	var teams []string
	err := s.db.Model(&models.RosterSnapshot{}).
		Where("league_id = ? AND week = ?", leagueID, week).
		Order("team_id").
		Pluck("team_id", &teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// SaveRun persists a completed guidance run.
func (s *Store) SaveRun(run *models.GuidanceRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	return s.db.Create(run).Error
}

// LatestRun returns the most recent guidance run for a team.
func (s *Store) LatestRun(leagueID, teamID string) (*models.GuidanceRun, error) {
	var run models.GuidanceRun
	err := s.db.Where("league_id = ? AND team_id = ?", leagueID, teamID).
		Order("created_at DESC").First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}
