// Package optim searches planner settings for the best score over a fixed
// set of moves.
package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
)

var ErrNoResult = errors.New("no parameter combination could be scored")

// Objective scores one parameter combination; lower is better.
type Objective func(params map[string]float64) (float64, error)

// Trial is one evaluated combination. Err is set when the objective failed.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of combinations Search evaluates.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every combination in order and returns the best one
// along with every trial. Ties keep the earlier combination.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, []Trial, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	trials := make([]Trial, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64, len(g.paramNames)), objective, func(t Trial) {
		trials = append(trials, t)
		if t.Err == nil && t.Score < best {
			best = t.Score
			bestParams = t.Params
		}
	})
	if err != nil {
		return nil, 0, trials, err
	}
	if bestParams == nil {
		return nil, 0, trials, ErrNoResult
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	record func(Trial),
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := maps.Clone(current)
		score, err := objective(params)
		if err == nil && math.IsNaN(score) {
			err = fmt.Errorf("objective returned NaN for %v", params)
		}
		record(Trial{Params: params, Score: score, Err: err})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, objective, record); err != nil {
			return err
		}
	}
	return nil
}
