package guidance

import (
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

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig(), testLogger())
}

func player(name, position, team string) models.Player {
	return models.Player{Name: name, Position: position, NHLTeam: team, Status: models.StatusActive}
}

func games(team string, count int, b2b int) []models.Game {
	out := make([]models.Game, 0, count)
	base := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		out = append(out, models.Game{
			HomeTeam:   models.TeamRef{Abbrev: team},
			AwayTeam:   models.TeamRef{Abbrev: "OPP"},
			GameDate:   base.AddDate(0, 0, i*2),
			BackToBack: i < b2b,
		})
	}
	return out
}

func noScoring() models.ScoringSettings {
	return models.ScoringSettings{}
}

func scoringWith(categories ...string) models.ScoringSettings {
	cats := map[string]float64{}
	for _, c := range categories {
		cats[c] = 1
	}
	return models.ScoringSettings{Type: "head", Categories: cats}
}

func TestCompute_StartBenchByGameVolume(t *testing.T) {
	roster := []models.Player{
		player("A", "C", "BOS"),
		player("B", "C", "TOR"),
	}
	schedule := append(games("BOS", 4, 0), games("TOR", 2, 0)...)

	items, warnings := newTestEngine().Compute(roster, schedule, "20252026", "20242025", noScoring())

	require.Len(t, items, 1)
	assert.Empty(t, warnings)
	item := items[0]
	assert.Equal(t, models.ItemStartBench, item.Kind)
	assert.Equal(t, "A", item.PlayerIn)
	assert.Equal(t, "B", item.PlayerOut)
	assert.Equal(t, "4 games vs 2 games", item.Reason)
	assert.Equal(t, "20252026", item.SourceSeason)
	assert.Nil(t, item.FallbackReason)
}

func TestCompute_BackToBackNoteInReason(t *testing.T) {
	roster := []models.Player{
		player("A", "C", "BOS"),
		player("B", "C", "TOR"),
	}
	schedule := append(games("BOS", 4, 1), games("TOR", 2, 0)...)

	items, _ := newTestEngine().Compute(roster, schedule, "20252026", "20242025", noScoring())

	require.Len(t, items, 1)
	assert.Equal(t, "4 games vs 2 games; B2B games: 1", items[0].Reason)
}

func TestCompute_ScoringContextClausePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		scoring  models.ScoringSettings
		expected string
	}{
		{"goals and assists", scoringWith("G", "A", "SOG", "HIT"), "4 games vs 2 games; More games = more scoring opportunities"},
		{"shots on goal", scoringWith("SOG", "HIT", "BLK"), "4 games vs 2 games; More games = more shots on goal"},
		{"hits", scoringWith("HIT", "BLK"), "4 games vs 2 games; More games = more hits"},
		{"blocks", scoringWith("BLK"), "4 games vs 2 games; More games = more blocks"},
		{"goals without assists gets no clause", scoringWith("G"), "4 games vs 2 games"},
		{"no categories", noScoring(), "4 games vs 2 games"},
	}

	roster := []models.Player{
		player("A", "C", "BOS"),
		player("B", "C", "TOR"),
	}
	schedule := append(games("BOS", 4, 0), games("TOR", 2, 0)...)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, _ := newTestEngine().Compute(roster, schedule, "20252026", "20242025", tt.scoring)
			require.Len(t, items, 1)
			assert.Equal(t, tt.expected, items[0].Reason)
		})
	}
}

func TestCompute_SinglePlayerGroupIsSkipped(t *testing.T) {
	roster := []models.Player{
		player("A", "C", "BOS"),
		player("B", "G", "TOR"),
	}
	schedule := append(games("BOS", 4, 0), games("TOR", 2, 0)...)

	items, _ := newTestEngine().Compute(roster, schedule, "20252026", "20242025", noScoring())

	assert.Empty(t, items)
}

func TestCompute_EqualCountsEmitNothing(t *testing.T) {
	roster := []models.Player{
		player("A", "C", "BOS"),
		player("B", "C", "TOR"),
	}
	schedule := append(games("BOS", 3, 0), games("TOR", 3, 0)...)

	items, _ := newTestEngine().Compute(roster, schedule, "20252026", "20242025", noScoring())

	assert.Empty(t, items)
}

func TestCompute_AdjacentPairWalkContinuesPastTies(t *testing.T) {
	roster := []models.Player{
		player("Zed", "C", "BOS"),
		player("Amy", "C", "TOR"),
		player("Bob", "C", "NYR"),
	}
	schedule := append(games("BOS", 3, 0), games("TOR", 3, 0)...)
	schedule = append(schedule, games("NYR", 2, 0)...)

	items, _ := newTestEngine().Compute(roster, schedule, "20252026", "20242025", noScoring())

	// Ties break lexicographically: Amy, Zed, Bob. The Amy/Zed pair is equal
	// and emits nothing; Zed/Bob emits one item.
	require.Len(t, items, 1)
	assert.Equal(t, "Zed", items[0].PlayerIn)
	assert.Equal(t, "Bob", items[0].PlayerOut)
	assert.Equal(t, "3 games vs 2 games", items[0].Reason)
}

func TestCompute_InactivePlayersIgnored(t *testing.T) {
	roster := []models.Player{
		player("A", "C", "BOS"),
		{Name: "B", Position: "C", NHLTeam: "TOR", Status: "injured_reserve"},
	}
	schedule := append(games("BOS", 4, 0), games("TOR", 2, 0)...)

	items, _ := newTestEngine().Compute(roster, schedule, "20252026", "20242025", noScoring())

	assert.Empty(t, items, "a group of one active player makes no start/bench decision")
}

func TestCompute_UnknownAffiliationSkipPolicy(t *testing.T) {
	roster := []models.Player{
		player("A", "C", "BOS"),
		player("B", "C", models.UnknownTeam),
	}
	schedule := games("BOS", 4, 0)

	items, warnings := newTestEngine().Compute(roster, schedule, "20252026", "20242025", noScoring())

	assert.Empty(t, items, "one countable player cannot form a pair")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "B")
}

func TestCompute_UnknownAffiliationPreferKnownPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UnknownPolicy = UnknownPolicyPreferKnown
	engine := NewEngine(cfg, testLogger())

	roster := []models.Player{
		player("A", "C", "BOS"),
		player("B", "C", models.UnknownTeam),
	}
	schedule := games("BOS", 4, 0)

	items, warnings := engine.Compute(roster, schedule, "20252026", "20242025", noScoring())

	require.Len(t, items, 1)
	assert.Empty(t, warnings)
	assert.Equal(t, "A", items[0].PlayerIn)
	assert.Equal(t, "B", items[0].PlayerOut)
	assert.Equal(t, "4 games vs 0 games", items[0].Reason)
}

func TestCompute_ScheduleInsightAppendedLast(t *testing.T) {
	roster := []models.Player{
		player("A", "C", "BOS"),
		player("B", "C", "TOR"),
	}
	schedule := append(games("BOS", 6, 2), games("TOR", 4, 0)...)

	items, _ := newTestEngine().Compute(roster, schedule, "20252026", "20242025", noScoring())

	require.Len(t, items, 2)
	assert.Equal(t, models.ItemStartBench, items[0].Kind)
	last := items[1]
	assert.Equal(t, models.ItemScheduleInsight, last.Kind)
	assert.Equal(t, "Week has 10 total games with 2 back-to-back games", last.Message)
	assert.Equal(t, "20252026", last.SourceSeason)
	assert.Nil(t, last.FallbackReason)
}

func TestCompute_NoInsightWithoutBackToBackGames(t *testing.T) {
	roster := []models.Player{
		player("A", "C", "BOS"),
		player("B", "C", "TOR"),
	}
	schedule := append(games("BOS", 4, 0), games("TOR", 2, 0)...)

	items, _ := newTestEngine().Compute(roster, schedule, "20252026", "20242025", noScoring())

	require.Len(t, items, 1)
	assert.Equal(t, models.ItemStartBench, items[0].Kind)
}

func TestCompute_PositionGroupsFollowRosterOrder(t *testing.T) {
	roster := []models.Player{
		player("D1", "D", "BOS"),
		player("C1", "C", "NYR"),
		player("D2", "D", "TOR"),
		player("C2", "C", "MTL"),
	}
	schedule := append(games("BOS", 4, 0), games("TOR", 2, 0)...)
	schedule = append(schedule, games("NYR", 3, 0)...)
	schedule = append(schedule, games("MTL", 1, 0)...)

	items, _ := newTestEngine().Compute(roster, schedule, "20252026", "20242025", noScoring())

	require.Len(t, items, 2)
	assert.Equal(t, "D1", items[0].PlayerIn, "D group first: first-seen position order")
	assert.Equal(t, "C1", items[1].PlayerIn)
}

func TestCompute_EmptyInputs(t *testing.T) {
	items, warnings := newTestEngine().Compute(nil, nil, "20252026", "20242025", noScoring())

	assert.Empty(t, items)
	assert.Empty(t, warnings)
}
