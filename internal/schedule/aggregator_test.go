package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantasy-helper/guidance-service/internal/models"
)

type fakeScheduleResolver struct {
	byTeam map[string]Result
	calls  []string
}

func (f *fakeScheduleResolver) Resolve(_ context.Context, teamCode string, _, _ time.Time) Result {
	f.calls = append(f.calls, teamCode)
	return f.byTeam[teamCode]
}

func activePlayer(name, position, team string) models.Player {
	return models.Player{Name: name, Position: position, NHLTeam: team, Status: models.StatusActive}
}

func TestAggregate_OneResolvePerDistinctTeam(t *testing.T) {
	resolver := &fakeScheduleResolver{byTeam: map[string]Result{
		"BOS": {Games: []models.Game{gameOn("2025-10-06", "BOS", "TOR")}},
		"TOR": {Games: []models.Game{gameOn("2025-10-07", "TOR", "MTL")}},
	}}
	agg := NewAggregator(resolver, testLogger())

	roster := []models.Player{
		activePlayer("A", "C", "BOS"),
		activePlayer("B", "LW", "BOS"),
		activePlayer("C", "C", "TOR"),
		activePlayer("D", "G", models.UnknownTeam),
		{Name: "E", Position: "D", NHLTeam: "NYR", Status: "bench"},
	}

	res := agg.Aggregate(context.Background(), roster, time.Now(), time.Now().AddDate(0, 0, 7))

	assert.Equal(t, []string{"BOS", "TOR"}, resolver.calls,
		"each affiliated team resolved once; unknown and inactive players skipped")
	assert.Len(t, res.Games, 2)
}

func TestAggregate_DeduplicatesByExplicitGameID(t *testing.T) {
	shared := gameOn("2025-10-06", "BOS", "TOR")
	shared.ID = "2025020001"

	resolver := &fakeScheduleResolver{byTeam: map[string]Result{
		"BOS": {Games: []models.Game{shared}},
		"TOR": {Games: []models.Game{shared}},
	}}
	agg := NewAggregator(resolver, testLogger())

	roster := []models.Player{
		activePlayer("A", "C", "BOS"),
		activePlayer("B", "C", "TOR"),
	}

	res := agg.Aggregate(context.Background(), roster, time.Now(), time.Now().AddDate(0, 0, 7))

	require.Len(t, res.Games, 1)
	assert.Equal(t, "2025020001", res.Games[0].ID)
}

func TestAggregate_DeduplicatesByCompositeKey(t *testing.T) {
	// Two records with no explicit id but identical (home, away, date)
	// collapse to one entry.
	resolver := &fakeScheduleResolver{byTeam: map[string]Result{
		"BOS": {Games: []models.Game{gameOn("2025-10-06", "BOS", "TOR")}},
		"TOR": {Games: []models.Game{gameOn("2025-10-06", "BOS", "TOR")}},
	}}
	agg := NewAggregator(resolver, testLogger())

	roster := []models.Player{
		activePlayer("A", "C", "BOS"),
		activePlayer("B", "C", "TOR"),
	}

	res := agg.Aggregate(context.Background(), roster, time.Now(), time.Now().AddDate(0, 0, 7))

	assert.Len(t, res.Games, 1)
}

func TestAggregate_LastWriteWinsOnCollision(t *testing.T) {
	first := gameOn("2025-10-06", "BOS", "TOR")
	second := gameOn("2025-10-06", "BOS", "TOR")
	second.BackToBack = true

	resolver := &fakeScheduleResolver{byTeam: map[string]Result{
		"BOS": {Games: []models.Game{first}},
		"TOR": {Games: []models.Game{second}},
	}}
	agg := NewAggregator(resolver, testLogger())

	roster := []models.Player{
		activePlayer("A", "C", "BOS"),
		activePlayer("B", "C", "TOR"),
	}

	res := agg.Aggregate(context.Background(), roster, time.Now(), time.Now().AddDate(0, 0, 7))

	require.Len(t, res.Games, 1)
	assert.True(t, res.Games[0].BackToBack, "later record replaces the earlier one")
}

func TestAggregate_DeduplicationIsIdempotent(t *testing.T) {
	g := gameOn("2025-10-06", "BOS", "TOR")
	resolver := &fakeScheduleResolver{byTeam: map[string]Result{
		"BOS": {Games: []models.Game{g, g}},
	}}
	agg := NewAggregator(resolver, testLogger())

	roster := []models.Player{
		activePlayer("A", "C", "BOS"),
	}

	res := agg.Aggregate(context.Background(), roster, time.Now(), time.Now().AddDate(0, 0, 7))

	assert.Len(t, res.Games, 1)
}

func TestAggregate_CollectsResolverWarnings(t *testing.T) {
	resolver := &fakeScheduleResolver{byTeam: map[string]Result{
		"BOS": {Warnings: []string{"no schedule available for BOS (20252026): fetch failed"}},
	}}
	agg := NewAggregator(resolver, testLogger())

	roster := []models.Player{
		activePlayer("A", "C", "BOS"),
	}

	res := agg.Aggregate(context.Background(), roster, time.Now(), time.Now().AddDate(0, 0, 7))

	assert.Empty(t, res.Games)
	assert.Len(t, res.Warnings, 1)
}
