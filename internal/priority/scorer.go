package priority

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/PinjariAbdul/smart-task-analyser/internal/dag"
	"github.com/PinjariAbdul/smart-task-analyser/internal/task"
)

// MinScore and MaxScore bound every priority score.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Factor names.
const (
	FactorUrgency    = "urgency"
	FactorImportance = "importance"
	FactorUnblocks   = "unblocks"
	FactorEffort     = "effort"
)

// significantPoints is the smallest contribution an explanation cites.
const significantPoints = 0.5

// maxListedDependents caps the ids named in an "unblocks" explanation.
const maxListedDependents = 3

// Factor is one term of a score: what it measured and how many points it
// contributed.
type Factor struct {
	Name   string  `json:"name"`
	Detail string  `json:"detail"`
	Points float64 `json:"points"`
}

// Result is a task with its priority score and explanation.
type Result struct {
	task.Task
	PriorityScore float64 `json:"priority_score"`
	Explanation   string  `json:"explanation"`
}

// Scorer computes scores for one strategy, weights and reference time. It
// holds no mutable state and is safe for concurrent use.
type Scorer struct {
	weights Weights
	now     time.Time
	factors factorFunc
}

// factorFunc produces the weighted terms of one strategy.
type factorFunc func(s *Scorer, t task.Task, g *dag.Graph) []Factor

// NewScorer resolves strategy to its scoring function once. Weights only
// affect Balanced and are normalized here.
func NewScorer(strategy Strategy, weights Weights, now time.Time) (*Scorer, error) {
	norm, err := weights.Normalize()
	if err != nil {
		return nil, err
	}
	s := &Scorer{weights: norm, now: now}
	switch strategy {
	case Balanced:
		s.factors = balancedFactors
	case Urgency:
		s.factors = urgencyFactors
	case Importance:
		s.factors = importanceFactors
	case Effort:
		s.factors = effortFactors
	default:
		return nil, &StrategyNotSupportedError{Name: strategy.String()}
	}
	return s, nil
}

// Score computes t's score in [MinScore, MaxScore], rounded to two
// decimals, and explains it.
func (s *Scorer) Score(t task.Task, g *dag.Graph) Result {
	factors := s.factors(s, t, g)
	total := 0.0
	for _, f := range factors {
		total += f.Points
	}
	return Result{
		Task:          t,
		PriorityScore: round2(clamp(total)),
		Explanation:   explain(factors),
	}
}

// ScoreAll scores every task, preserving input order.
func (s *Scorer) ScoreAll(tasks []task.Task, g *dag.Graph) []Result {
	results := make([]Result, len(tasks))
	for i, t := range tasks {
		results[i] = s.Score(t, g)
	}
	return results
}

// balancedFactors: wU·U + wI·I + wB·B + wF·F.
func balancedFactors(s *Scorer, t task.Task, g *dag.Graph) []Factor {
	days := t.DueDate.DaysFrom(s.now)
	desc := g.Descendants(t.ID)
	return []Factor{
		{FactorUrgency, dueDetail(days), s.weights.Urgency * UrgencyFactor(days)},
		{FactorImportance, importanceDetail(t.Importance), s.weights.Importance * ImportanceFactor(t.Importance)},
		{FactorUnblocks, unblocksDetail(desc), s.weights.Unblocks * UnblocksFactor(len(desc))},
		{FactorEffort, effortDetail(t.EstimatedHours), s.weights.Effort * QuickWinFactor(t.EstimatedHours)},
	}
}

// urgencyFactors: U·(0.85 + 0.15·E). The effort share grows with the
// urgency itself, so it matters for tasks due soon and fades for distant ones.
func urgencyFactors(s *Scorer, t task.Task, _ *dag.Graph) []Factor {
	days := t.DueDate.DaysFrom(s.now)
	u := UrgencyFactor(days)
	return []Factor{
		{FactorUrgency, dueDetail(days), 0.85 * u},
		{FactorEffort, hoursText(t.EstimatedHours) + " effort widens urgency", 0.15 * EffortWeight(t.EstimatedHours) * u},
	}
}

// importanceFactors: I. Due date ties are broken by the ranker.
func importanceFactors(_ *Scorer, t task.Task, _ *dag.Graph) []Factor {
	return []Factor{
		{FactorImportance, importanceDetail(t.Importance), ImportanceFactor(t.Importance)},
	}
}

// effortFactors: F.
func effortFactors(_ *Scorer, t task.Task, _ *dag.Graph) []Factor {
	return []Factor{
		{FactorEffort, effortDetail(t.EstimatedHours), QuickWinFactor(t.EstimatedHours)},
	}
}

// UrgencyFactor maps days until due to [0, 100]. Overdue tasks score
// 90 plus one point per day late, capped at 100; otherwise the score
// starts at 90 on the due day and halves every seven days.
func UrgencyFactor(days int) float64 {
	if days < 0 {
		return 90 + math.Min(float64(-days), 10)
	}
	return 90 * math.Pow(0.5, float64(days)/7)
}

// ImportanceFactor scales an importance rating to [0, 100].
func ImportanceFactor(importance int) float64 {
	return clamp(10 * float64(importance))
}

// UnblocksFactor maps the number of transitive dependents to [0, 100):
// the first dependent is worth 25 points and each further one adds 25 %
// of what remains.
func UnblocksFactor(n int) float64 {
	return 100 * (1 - math.Pow(0.75, float64(n)))
}

// QuickWinFactor maps estimated hours to (0, 100]: zero hours scores 100,
// four hours 50, twelve hours 25.
func QuickWinFactor(hours float64) float64 {
	return 100 / (1 + hours/4)
}

// EffortWeight maps estimated hours to [0, 1], saturating at two days of work.
func EffortWeight(hours float64) float64 {
	return math.Min(hours, 16) / 16
}

// explain lists the significant factors, largest contribution first.
func explain(factors []Factor) string {
	cited := make([]Factor, 0, len(factors))
	for _, f := range factors {
		if f.Points >= significantPoints {
			cited = append(cited, f)
		}
	}
	if len(cited) == 0 {
		return "no significant priority factors"
	}
	sort.SliceStable(cited, func(i, j int) bool {
		return cited[i].Points > cited[j].Points
	})

	parts := make([]string, len(cited))
	for i, f := range cited {
		parts[i] = fmt.Sprintf("%s (+%.1f)", f.Detail, f.Points)
	}
	return strings.Join(parts, "; ")
}

func dueDetail(days int) string {
	switch {
	case days < 0:
		return "overdue by " + plural(-days, "day")
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	default:
		return "due in " + plural(days, "day")
	}
}

func importanceDetail(importance int) string {
	return fmt.Sprintf("importance %d/%d", importance, task.MaxImportance)
}

func unblocksDetail(desc []string) string {
	if len(desc) == 0 {
		return "blocks no other tasks"
	}
	listed := desc
	if len(listed) > maxListedDependents {
		listed = listed[:maxListedDependents]
	}
	names := strings.Join(listed, ", ")
	if more := len(desc) - len(listed); more > 0 {
		names += fmt.Sprintf(" +%d more", more)
	}
	return fmt.Sprintf("unblocks %s: %s", plural(len(desc), "task"), names)
}

func effortDetail(hours float64) string {
	if hours <= 2 {
		return "quick win: " + hoursText(hours)
	}
	return hoursText(hours) + " estimated effort"
}

func hoursText(hours float64) string {
	return humanize.Ftoa(hours) + "h"
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func clamp(v float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
