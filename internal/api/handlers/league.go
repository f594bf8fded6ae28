package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fantasy-helper/guidance-service/internal/models"
	"github.com/fantasy-helper/guidance-service/internal/providers"
	"github.com/fantasy-helper/guidance-service/internal/storage"
)

// LeagueHandler manages league configuration and roster snapshots.
type LeagueHandler struct {
	store  *storage.Store
	logger *logrus.Logger
}

// NewLeagueHandler creates a league handler.
func NewLeagueHandler(store *storage.Store, logger *logrus.Logger) *LeagueHandler {
	return &LeagueHandler{
		store:  store,
		logger: logger,
	}
}

// UpsertLeague creates or updates a league.
// PUT /api/v1/leagues/:leagueId
func (h *LeagueHandler) UpsertLeague(c *gin.Context) {
	var league models.League
	if err := c.ShouldBindJSON(&league); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid league payload: " + err.Error()})
		return
	}
	league.ID = c.Param("leagueId")

	if err := h.store.UpsertLeague(&league); err != nil {
		h.logger.WithError(err).WithField("league_id", league.ID).Error("Failed to upsert league")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store league"})
		return
	}

	c.JSON(http.StatusOK, league)
}

// GetLeague returns a league configuration.
// GET /api/v1/leagues/:leagueId
func (h *LeagueHandler) GetLeague(c *gin.Context) {
	league, err := h.store.GetLeague(c.Param("leagueId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "league not found"})
		return
	}
	c.JSON(http.StatusOK, league)
}

// rosterPayload is the roster upsert request body. Players may carry a full
// NHL team name instead of a code; names are mapped before storage.
type rosterPayload struct {
	Week    int             `json:"week" binding:"required"`
	Players []models.Player `json:"players" binding:"required"`
}

// UpsertRoster stores a team's roster snapshot for a week.
// PUT /api/v1/leagues/:leagueId/teams/:teamId/roster
func (h *LeagueHandler) UpsertRoster(c *gin.Context) {
	var payload rosterPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid roster payload: " + err.Error()})
		return
	}

	for i := range payload.Players {
		p := &payload.Players[i]
		if p.NHLTeam == "" {
			p.NHLTeam = models.UnknownTeam
			continue
		}
		// Accept either a three-letter code or a full team name.
		if len(p.NHLTeam) != 3 {
			p.NHLTeam = providers.TeamCode(p.NHLTeam)
		}
	}

	snapshot := &models.RosterSnapshot{
		LeagueID: c.Param("leagueId"),
		TeamID:   c.Param("teamId"),
		Week:     payload.Week,
		Players:  payload.Players,
	}

	if err := h.store.UpsertRoster(snapshot); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"league_id": snapshot.LeagueID,
			"team_id":   snapshot.TeamID,
		}).Error("Failed to upsert roster")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store roster"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
