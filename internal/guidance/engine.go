package guidance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fantasy-helper/guidance-service/internal/models"
)

// UnknownPolicy controls how players without a known NHL team affiliation
// participate in start/bench ranking. Such players can never be counted, so
// in a two-player group the default policy produces no recommendation.
type UnknownPolicy string

const (
	// UnknownPolicySkip excludes unaffiliated players from the ranking
	// entirely; they neither give nor receive recommendations.
	UnknownPolicySkip UnknownPolicy = "skip"

	// UnknownPolicyPreferKnown ranks unaffiliated players with zero games,
	// so counted teammates with at least one game can still be recommended
	// over them.
	UnknownPolicyPreferKnown UnknownPolicy = "prefer_known"
)

// ParseUnknownPolicy maps a configuration string to a policy, defaulting to skip.
func ParseUnknownPolicy(s string) UnknownPolicy {
	if UnknownPolicy(s) == UnknownPolicyPreferKnown {
		return UnknownPolicyPreferKnown
	}
	return UnknownPolicySkip
}

// Thresholds holds per-position activity thresholds. They are carried in the
// configuration so deployments and tests can vary them, but the current
// ranking is driven purely by game volume.
type Thresholds struct {
	SkaterGamesPlayed  int
	GoalieGamesStarted int
}

// DefaultThresholds returns the standard threshold set.
func DefaultThresholds() Thresholds {
	return Thresholds{SkaterGamesPlayed: 8, GoalieGamesStarted: 5}
}

// Config configures a guidance engine.
type Config struct {
	Thresholds    Thresholds
	UnknownPolicy UnknownPolicy
}

// DefaultConfig returns the engine configuration matching production behavior.
func DefaultConfig() Config {
	return Config{
		Thresholds:    DefaultThresholds(),
		UnknownPolicy: UnknownPolicySkip,
	}
}

// Engine computes start/bench recommendations and schedule insights from a
// roster, an aggregated week schedule, and league scoring settings.
type Engine struct {
	cfg    Config
	logger *logrus.Logger
}

// NewEngine creates a guidance engine.
func NewEngine(cfg Config, logger *logrus.Logger) *Engine {
	if cfg.UnknownPolicy == "" {
		cfg.UnknownPolicy = UnknownPolicySkip
	}
	return &Engine{cfg: cfg, logger: logger}
}

type playerVolume struct {
	name     string
	nhlTeam  string
	games    int
	b2bGames int
}

// Compute produces ordered guidance items for one team week. Position groups
// are processed in the order positions first appear on the active roster;
// within a group, start/bench pairs follow game volume descending with
// lexicographic player-name tie-break. A single schedule insight is appended
// when the week contains at least one back-to-back game. The returned
// warnings describe players that could not be ranked; missing data never
// produces an error, only fewer items.
func (e *Engine) Compute(roster []models.Player, schedule []models.Game, currentSeason, lastSeason string, scoring models.ScoringSettings) ([]models.GuidanceItem, []string) {
	items := []models.GuidanceItem{}
	var warnings []string

	byPosition := make(map[string][]models.Player)
	var positionOrder []string
	for _, player := range roster {
		if player.Status != models.StatusActive {
			continue
		}
		pos := player.Position
		if pos == "" {
			pos = "UNKNOWN"
		}
		if _, ok := byPosition[pos]; !ok {
			positionOrder = append(positionOrder, pos)
		}
		byPosition[pos] = append(byPosition[pos], player)
	}

	for _, position := range positionOrder {
		players := byPosition[position]
		if len(players) < 2 {
			continue
		}

		var ranked []playerVolume
		for _, player := range players {
			if player.NHLTeam == "" || player.NHLTeam == models.UnknownTeam {
				switch e.cfg.UnknownPolicy {
				case UnknownPolicyPreferKnown:
					ranked = append(ranked, playerVolume{name: player.Name, nhlTeam: models.UnknownTeam})
				default:
					warnings = append(warnings,
						fmt.Sprintf("player %s has no known team affiliation and was excluded from %s ranking", player.Name, position))
				}
				continue
			}

			pv := playerVolume{name: player.Name, nhlTeam: player.NHLTeam}
			for _, g := range schedule {
				if g.HomeTeam.Abbrev != player.NHLTeam && g.AwayTeam.Abbrev != player.NHLTeam {
					continue
				}
				pv.games++
				if g.BackToBack {
					pv.b2bGames++
				}
			}
			ranked = append(ranked, pv)
		}

		if len(ranked) < 2 {
			continue
		}

		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].games != ranked[j].games {
				return ranked[i].games > ranked[j].games
			}
			return ranked[i].name < ranked[j].name
		})

		for i := 0; i < len(ranked)-1; i++ {
			in, out := ranked[i], ranked[i+1]
			if in.games <= out.games {
				continue
			}
			items = append(items, models.GuidanceItem{
				Kind:         models.ItemStartBench,
				PlayerIn:     in.name,
				PlayerOut:    out.name,
				Reason:       e.buildReason(in, out, scoring),
				SourceSeason: currentSeason,
			})
		}
	}

	totalGames := len(schedule)
	b2bGames := 0
	for _, g := range schedule {
		if g.BackToBack {
			b2bGames++
		}
	}
	if b2bGames > 0 {
		items = append(items, models.GuidanceItem{
			Kind:         models.ItemScheduleInsight,
			Message:      fmt.Sprintf("Week has %d total games with %d back-to-back games", totalGames, b2bGames),
			SourceSeason: currentSeason,
		})
	}

	e.logger.WithFields(logrus.Fields{
		"items":    len(items),
		"warnings": len(warnings),
		"season":   currentSeason,
	}).Debug("Computed guidance")

	return items, warnings
}

// buildReason composes the recommendation rationale: game counts first, then
// a back-to-back note when the recommended player has one, then a single
// scoring-context clause chosen by category precedence.
func (e *Engine) buildReason(in, out playerVolume, scoring models.ScoringSettings) string {
	parts := []string{fmt.Sprintf("%d games vs %d games", in.games, out.games)}

	if in.b2bGames > 0 {
		parts = append(parts, fmt.Sprintf("B2B games: %d", in.b2bGames))
	}

	switch {
	case scoring.HasCategory("G") && scoring.HasCategory("A"):
		parts = append(parts, "More games = more scoring opportunities")
	case scoring.HasCategory("SOG"):
		parts = append(parts, "More games = more shots on goal")
	case scoring.HasCategory("HIT"):
		parts = append(parts, "More games = more hits")
	case scoring.HasCategory("BLK"):
		parts = append(parts, "More games = more blocks")
	}

	return strings.Join(parts, "; ")
}
