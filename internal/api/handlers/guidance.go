package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fantasy-helper/guidance-service/internal/services"
	"github.com/fantasy-helper/guidance-service/internal/storage"
)

// GuidanceHandler exposes on-demand guidance runs and run history.
type GuidanceHandler struct {
	guidance *services.GuidanceService
	store    *storage.Store
	logger   *logrus.Logger
}

// NewGuidanceHandler creates a guidance handler.
func NewGuidanceHandler(guidanceService *services.GuidanceService, store *storage.Store, logger *logrus.Logger) *GuidanceHandler {
	return &GuidanceHandler{
		guidance: guidanceService,
		store:    store,
		logger:   logger,
	}
}

// RunNow computes and persists guidance for a team immediately.
// POST /api/v1/leagues/:leagueId/teams/:teamId/guidance?week=N
func (h *GuidanceHandler) RunNow(c *gin.Context) {
	leagueID := c.Param("leagueId")
	teamID := c.Param("teamId")

	week, err := strconv.Atoi(c.DefaultQuery("week", "1"))
	if err != nil || week < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week parameter"})
		return
	}

	run, err := h.guidance.RunTeam(c.Request.Context(), leagueID, teamID, week, time.Now().UTC())
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"league_id": leagueID,
			"team_id":   teamID,
		}).Error("On-demand guidance run failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetLatest returns the most recent guidance run for a team.
// GET /api/v1/leagues/:leagueId/teams/:teamId/guidance/latest
func (h *GuidanceHandler) GetLatest(c *gin.Context) {
	leagueID := c.Param("leagueId")
	teamID := c.Param("teamId")

	run, err := h.store.LatestRun(leagueID, teamID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no guidance runs found for team"})
		return
	}

	c.JSON(http.StatusOK, run)
}
