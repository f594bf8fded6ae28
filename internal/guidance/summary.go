package guidance

import (
	"fmt"

	"github.com/fantasy-helper/guidance-service/internal/models"
)

// TLDR renders guidance items as short textual bullets, one per recognized
// item, preserving input order. Unrecognized item kinds are skipped.
func TLDR(items []models.GuidanceItem) []string {
	bullets := []string{}
	for _, item := range items {
		switch item.Kind {
		case models.ItemStartBench:
			bullets = append(bullets, fmt.Sprintf("Start %s over %s (%s)", item.PlayerIn, item.PlayerOut, item.Reason))
		case models.ItemScheduleInsight:
			bullets = append(bullets, item.Message)
		}
	}
	return bullets
}
