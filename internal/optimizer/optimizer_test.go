package optimizer

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToWindowInputs(t *testing.T) {
	got, err := ToWindowInputs([]Entry{
		{Unit: 1, Code: "AR", Days: []int{2, 0, 1}},
		{Unit: 50, Code: "TR", Days: []int{364}},
	})
	require.NoError(t, err)
	assert.Equal(t, []models.WindowInput{
		{Unit: 1, Code: "AR", Days: []int{1, 2, 3}},
		{Unit: 50, Code: "TR", Days: []int{365}},
	}, got)
}

func TestToWindowInputs_Rejects(t *testing.T) {
	_, err := ToWindowInputs([]Entry{{Unit: 0, Code: "AR", Days: []int{1}}})
	assert.ErrorContains(t, err, "unit 0")

	_, err = ToWindowInputs([]Entry{{Unit: 51, Code: "AR", Days: []int{1}}})
	assert.Error(t, err)

	_, err = ToWindowInputs([]Entry{{Unit: 1, Code: "AR", Days: []int{365}}})
	assert.ErrorContains(t, err, "day index 365")
}

func TestPeakLoad(t *testing.T) {
	windows := []models.WindowInput{
		{Unit: 1, Code: "AR", Days: []int{1, 2, 3}},
		{Unit: 1, Code: "CK", Days: []int{2}},
		{Unit: 2, Code: "CK", Days: []int{2, 3}},
		{Unit: 3, Code: "MP", Days: []int{3}},
	}
	// day 3 has units 1, 2 and 3; a unit counts once per day
	assert.Equal(t, 3, PeakLoad(windows))
	assert.Equal(t, 0, PeakLoad(nil))
}

func newSolver(maxDuration time.Duration) *RandomSearch {
	s := NewRandomSearch(synth.NewWithRand(rand.New(rand.NewPCG(1, 2))), maxDuration)
	s.reportEvery = 1
	return s
}

func drain(t *testing.T, ch <-chan Progress) []Progress {
	t.Helper()
	var out []Progress
	for p := range ch {
		out = append(out, p)
	}
	return out
}

func TestRandomSearch_FixedParams(t *testing.T) {
	params, err := models.NewParams(models.MethodGeneticAlgorithm, models.ModeFixedParams).Population(2).Generations(3).Build()
	require.NoError(t, err)

	ch, err := newSolver(time.Minute).Solve(context.Background(), params)
	require.NoError(t, err)
	updates := drain(t, ch)

	require.NotEmpty(t, updates)
	last := updates[len(updates)-1]
	require.NotNil(t, last.Final)
	assert.Equal(t, 6, last.Iteration)
	assert.NotEmpty(t, last.Final.Entries)

	for i := 1; i < len(updates); i++ {
		assert.LessOrEqual(t, updates[i].BestScore, updates[i-1].BestScore, "best score never gets worse")
	}
	for _, p := range updates[:len(updates)-1] {
		assert.Nil(t, p.Final)
	}

	windows, err := ToWindowInputs(last.Final.Entries)
	require.NoError(t, err)
	assert.Equal(t, last.BestScore, float64(PeakLoad(windows)))
}

func TestRandomSearch_AntColonyDrawBudget(t *testing.T) {
	params, err := models.NewParams(models.MethodAntColony, models.ModeFixedParams).Ants(2).Iterations(2).Build()
	require.NoError(t, err)

	ch, err := newSolver(time.Minute).Solve(context.Background(), params)
	require.NoError(t, err)
	updates := drain(t, ch)
	assert.Equal(t, 4, updates[len(updates)-1].Iteration)
}

func TestRandomSearch_FixedTimeIsCapped(t *testing.T) {
	params, err := models.NewParams(models.MethodGeneticAlgorithm, models.ModeFixedTime).Population(10).TimeSeconds(3600).Build()
	require.NoError(t, err)

	start := time.Now()
	ch, err := newSolver(100 * time.Millisecond).Solve(context.Background(), params)
	require.NoError(t, err)
	updates := drain(t, ch)

	assert.Less(t, time.Since(start), 5*time.Second)
	require.NotNil(t, updates[len(updates)-1].Final)
}

func TestRandomSearch_LongestTimeBudgetIsCapped(t *testing.T) {
	params, err := models.NewParams(models.MethodGeneticAlgorithm, models.ModeFixedTime).Population(10).TimeSeconds(models.MaxTimeSeconds).Build()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	ch, err := newSolver(100 * time.Millisecond).Solve(ctx, params)
	require.NoError(t, err)
	updates := drain(t, ch)

	assert.Less(t, time.Since(start), 2*time.Second)
	require.NotEmpty(t, updates)
	require.NotNil(t, updates[len(updates)-1].Final, "the run ends on its own budget, not the outer deadline")
}

func TestRandomSearch_RejectsOversizedTime(t *testing.T) {
	huge := models.MaxTimeSeconds * 1000
	params := models.OptimizerParams{
		Method:      models.MethodGeneticAlgorithm,
		Mode:        models.ModeFixedTime,
		Population:  &[]int{10}[0],
		TimeSeconds: &huge,
	}
	_, err := newSolver(100*time.Millisecond).Solve(context.Background(), params)
	assert.ErrorContains(t, err, "time")
}

func TestDrawBudget_Saturates(t *testing.T) {
	big := math.MaxInt / 2
	params := models.OptimizerParams{Method: models.MethodAntColony, Ants: &big, Iterations: &big}
	assert.Equal(t, math.MaxInt, drawBudget(params))

	two, three := 2, 3
	params = models.OptimizerParams{Method: models.MethodGeneticAlgorithm, Population: &two, Generations: &three}
	assert.Equal(t, 6, drawBudget(params))
	assert.Equal(t, 1, drawBudget(models.OptimizerParams{}))
}

func TestRandomSearch_Cancel(t *testing.T) {
	params, err := models.NewParams(models.MethodGeneticAlgorithm, models.ModeFixedTime).Population(10).TimeSeconds(3600).Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := newSolver(time.Hour).Solve(ctx, params)
	require.NoError(t, err)

	<-ch
	cancel()
	for range ch {
	}
}

func TestRandomSearch_InvalidParams(t *testing.T) {
	_, err := newSolver(time.Minute).Solve(context.Background(), models.OptimizerParams{Method: models.MethodAntColony, Mode: models.ModeFixedParams})
	assert.Error(t, err)
}
