package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/fantasy-helper/guidance-service/internal/models"
)

// teamMapping maps full NHL team names (as fantasy providers report them) to
// the three-letter codes used by the schedule API.
var teamMapping = map[string]string{
	"Anaheim Ducks": "ANA", "Arizona Coyotes": "ARI", "Boston Bruins": "BOS",
	"Buffalo Sabres": "BUF", "Calgary Flames": "CGY", "Carolina Hurricanes": "CAR",
	"Chicago Blackhawks": "CHI", "Colorado Avalanche": "COL", "Columbus Blue Jackets": "CBJ",
	"Dallas Stars": "DAL", "Detroit Red Wings": "DET", "Edmonton Oilers": "EDM",
	"Florida Panthers": "FLA", "Los Angeles Kings": "LAK", "Minnesota Wild": "MIN",
	"Montreal Canadiens": "MTL", "Nashville Predators": "NSH", "New Jersey Devils": "NJD",
	"New York Islanders": "NYI", "New York Rangers": "NYR", "Ottawa Senators": "OTT",
	"Philadelphia Flyers": "PHI", "Pittsburgh Penguins": "PIT", "San Jose Sharks": "SJS",
	"Seattle Kraken": "SEA", "St. Louis Blues": "STL", "Tampa Bay Lightning": "TBL",
	"Toronto Maple Leafs": "TOR", "Vancouver Canucks": "VAN", "Vegas Golden Knights": "VGK",
	"Washington Capitals": "WSH", "Winnipeg Jets": "WPG",
}

// TeamCode maps a full NHL team name to its three-letter code, returning the
// unknown sentinel for unrecognized names.
func TeamCode(teamName string) string {
	if code, ok := teamMapping[teamName]; ok {
		return code
	}
	return models.UnknownTeam
}

// NHLClient fetches full-season club schedules from the NHL web API.
type NHLClient struct {
	client         *http.Client
	baseURL        string
	circuitBreaker *gobreaker.CircuitBreaker
	rateLimiter    *RateLimiter
	logger         *logrus.Logger
}

// clubScheduleResponse mirrors the club-schedule-season API payload.
type clubScheduleResponse struct {
	Games []clubGame `json:"games"`
}

type clubGame struct {
	ID           int64     `json:"id"`
	GameDate     string    `json:"gameDate"`
	StartTimeUTC time.Time `json:"startTimeUTC"`
	HomeTeam     struct {
		Abbrev string `json:"abbrev"`
	} `json:"homeTeam"`
	AwayTeam struct {
		Abbrev string `json:"abbrev"`
	} `json:"awayTeam"`
}

// NewNHLClient creates an NHL schedule API client with a request timeout,
// rate limiting, and circuit breaker protection. The breaker opens once
// consecutive failures exceed breakerThreshold.
func NewNHLClient(baseURL string, timeout time.Duration, breakerThreshold int, logger *logrus.Logger) *NHLClient {
	if breakerThreshold <= 0 {
		breakerThreshold = 3
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nhl-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > uint32(breakerThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Info("NHL API circuit breaker state changed")
		},
	})

	return &NHLClient{
		client:         &http.Client{Timeout: timeout},
		baseURL:        baseURL,
		circuitBreaker: cb,
		rateLimiter:    NewRateLimiter(60, time.Minute),
		logger:         logger,
	}
}

// FetchSeason retrieves the full season schedule for a team. The caller is
// expected to cache the result; this client performs no caching of its own.
func (c *NHLClient) FetchSeason(ctx context.Context, teamCode, season string) ([]models.Game, error) {
	if !c.rateLimiter.Allow() {
		return nil, fmt.Errorf("NHL API rate limit exceeded")
	}

	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.fetchClubSchedule(ctx, teamCode, season)
	})
	if err != nil {
		return nil, fmt.Errorf("NHL schedule fetch failed for %s/%s: %w", teamCode, season, err)
	}

	resp := result.(*clubScheduleResponse)
	games := make([]models.Game, 0, len(resp.Games))
	for _, g := range resp.Games {
		game, cerr := convertClubGame(g)
		if cerr != nil {
			c.logger.WithError(cerr).WithFields(logrus.Fields{
				"team_code": teamCode,
				"season":    season,
			}).Warn("Skipping unparseable game record")
			continue
		}
		games = append(games, game)
	}

	c.logger.WithFields(logrus.Fields{
		"team_code": teamCode,
		"season":    season,
		"games":     len(games),
	}).Debug("Fetched season schedule")

	return games, nil
}

func (c *NHLClient) fetchClubSchedule(ctx context.Context, teamCode, season string) (*clubScheduleResponse, error) {
	url := fmt.Sprintf("%s/club-schedule-season/%s/%s", c.baseURL, teamCode, season)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("schedule API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule response: %w", err)
	}

	var schedule clubScheduleResponse
	if err := json.Unmarshal(body, &schedule); err != nil {
		return nil, fmt.Errorf("failed to parse schedule response: %w", err)
	}

	return &schedule, nil
}

func convertClubGame(g clubGame) (models.Game, error) {
	var id string
	if g.ID != 0 {
		id = strconv.FormatInt(g.ID, 10)
	}

	gameDate := g.StartTimeUTC
	if gameDate.IsZero() {
		parsed, err := time.Parse("2006-01-02", g.GameDate)
		if err != nil {
			return models.Game{}, fmt.Errorf("game has no usable date: %w", err)
		}
		gameDate = parsed.UTC()
	}

	return models.Game{
		ID:       id,
		HomeTeam: models.TeamRef{Abbrev: g.HomeTeam.Abbrev},
		AwayTeam: models.TeamRef{Abbrev: g.AwayTeam.Abbrev},
		GameDate: gameDate,
	}, nil
}
