package guidance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantasy-helper/guidance-service/internal/models"
)

func TestTLDR_RendersItemsInOrder(t *testing.T) {
	items := []models.GuidanceItem{
		{
			Kind:      models.ItemStartBench,
			PlayerIn:  "A",
			PlayerOut: "B",
			Reason:    "4 games vs 2 games",
		},
		{
			Kind:    models.ItemScheduleInsight,
			Message: "Week has 10 total games with 2 back-to-back games",
		},
	}

	bullets := TLDR(items)

	require.Len(t, bullets, 2, "one bullet per recognized item")
	assert.Equal(t, "Start A over B (4 games vs 2 games)", bullets[0])
	assert.Equal(t, "Week has 10 total games with 2 back-to-back games", bullets[1])
}

func TestTLDR_SkipsUnrecognizedKinds(t *testing.T) {
	items := []models.GuidanceItem{
		{Kind: models.ItemKind("mystery"), Message: "ignored"},
		{Kind: models.ItemStartBench, PlayerIn: "A", PlayerOut: "B", Reason: "3 games vs 1 games"},
	}

	bullets := TLDR(items)

	require.Len(t, bullets, 1)
	assert.Equal(t, "Start A over B (3 games vs 1 games)", bullets[0])
}

func TestTLDR_EmptyInput(t *testing.T) {
	assert.Empty(t, TLDR(nil))
	assert.Empty(t, TLDR([]models.GuidanceItem{}))
}
