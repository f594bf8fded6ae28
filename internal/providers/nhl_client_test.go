package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantasy-helper/guidance-service/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func TestTeamCode(t *testing.T) {
	assert.Equal(t, "BOS", TeamCode("Boston Bruins"))
	assert.Equal(t, "VGK", TeamCode("Vegas Golden Knights"))
	assert.Equal(t, models.UnknownTeam, TeamCode("Hartford Whalers"))
	assert.Equal(t, models.UnknownTeam, TeamCode(""))
}

func TestFetchSeason_ParsesClubSchedule(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"games": [
				{
					"id": 2025020001,
					"gameDate": "2025-10-07",
					"startTimeUTC": "2025-10-07T23:00:00Z",
					"homeTeam": {"abbrev": "BOS"},
					"awayTeam": {"abbrev": "TOR"}
				},
				{
					"gameDate": "2025-10-09",
					"homeTeam": {"abbrev": "MTL"},
					"awayTeam": {"abbrev": "BOS"}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewNHLClient(server.URL, 5*time.Second, 3, testLogger())
	games, err := client.FetchSeason(context.Background(), "BOS", "20252026")

	require.NoError(t, err)
	assert.Equal(t, "/club-schedule-season/BOS/20252026", gotPath)
	require.Len(t, games, 2)

	assert.Equal(t, "2025020001", games[0].ID)
	assert.Equal(t, "BOS", games[0].HomeTeam.Abbrev)
	assert.Equal(t, "TOR", games[0].AwayTeam.Abbrev)
	assert.Equal(t, time.Date(2025, 10, 7, 23, 0, 0, 0, time.UTC), games[0].GameDate)
	assert.False(t, games[0].BackToBack, "fetcher never sets back-to-back flags")

	// Second game has no id and no start time; the calendar date is used.
	assert.Empty(t, games[1].ID)
	assert.Equal(t, time.Date(2025, 10, 9, 0, 0, 0, 0, time.UTC), games[1].GameDate)
}

func TestFetchSeason_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewNHLClient(server.URL, 5*time.Second, 3, testLogger())
	games, err := client.FetchSeason(context.Background(), "BOS", "20252026")

	assert.Error(t, err)
	assert.Nil(t, games)
}

func TestFetchSeason_BreakerOpensAtConfiguredThreshold(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewNHLClient(server.URL, 5*time.Second, 1, testLogger())

	for i := 0; i < 3; i++ {
		_, err := client.FetchSeason(context.Background(), "BOS", "20252026")
		assert.Error(t, err)
	}

	// With a threshold of 1 the breaker opens after the second consecutive
	// failure, so the third call never reaches the server.
	assert.Equal(t, 2, hits)
}

func TestFetchSeason_SkipsUnparseableGames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"games": [
				{"gameDate": "not-a-date", "homeTeam": {"abbrev": "BOS"}, "awayTeam": {"abbrev": "TOR"}},
				{"gameDate": "2025-10-09", "homeTeam": {"abbrev": "MTL"}, "awayTeam": {"abbrev": "BOS"}}
			]
		}`))
	}))
	defer server.Close()

	client := NewNHLClient(server.URL, 5*time.Second, 3, testLogger())
	games, err := client.FetchSeason(context.Background(), "BOS", "20252026")

	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "MTL", games[0].HomeTeam.Abbrev)
}
