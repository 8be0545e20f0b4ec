package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/crm/internal/alphabet"
)

// letterWorld builds the A-B-C CRM used throughout spec §8's scenarios.
func letterWorld(t *testing.T) *CRM {
	t.Helper()
	crm, err := NewBuilder().
		Events("A", "B", "C").
		Arity(1).
		Initial(0, 0).
		AddTransition(0, "A", 0, []int{1}, RewardDef{Constant: ptr(-0.1)}).
		AddTransition(0, "B", 1, []int{0}, RewardDef{Constant: ptr(-0.1)}).
		AddTransition(0, "C", 0, []int{0}, RewardDef{Constant: ptr(-0.1)}).
		AddDefault(0, 0, []int{0}, RewardDef{Constant: ptr(-0.1)}).
		AddTransition(1, "A", 1, []int{0}, RewardDef{Constant: ptr(-0.1)}).
		AddTransition(1, "B", 1, []int{0}, RewardDef{Constant: ptr(-0.1)}).
		AddTransition(1, "C / (NZ)", 1, []int{-1}, RewardDef{Constant: ptr(-0.1)}).
		AddTransition(1, "C / (Z)", -1, []int{0}, RewardDef{Constant: ptr(1.0)}).
		AddDefault(1, 1, []int{0}, RewardDef{Constant: ptr(-0.1)}).
		Reachable(0, 0).
		Reachable(0, 1).
		Reachable(1, 0).
		Reachable(1, 2).
		Build()
	require.NoError(t, err)
	return crm
}

func ptr(f float64) *float64 { return &f }

func TestCRM_Step_ScenarioS1(t *testing.T) {
	crm := letterWorld(t)
	u, c := 0, []int{0}

	events := []alphabet.EventSet{
		alphabet.NewEventSet(),
		alphabet.NewEventSet("A"),
		alphabet.NewEventSet("A"),
		alphabet.NewEventSet("B"),
		alphabet.NewEventSet("C"),
		alphabet.NewEventSet("C"),
	}
	wantStates := [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 2}, {1, 1}, {1, 0}}
	wantRewards := []float64{-0.1, -0.1, -0.1, -0.1, -0.1, -0.1}

	for i, e := range events {
		var reward RewardEmitter
		var err error
		u, c, reward, err = crm.Step(u, c, e)
		require.NoError(t, err)
		assert.Equal(t, wantStates[i][0], u)
		assert.Equal(t, wantStates[i][1], c[0])
		r, err := reward.Emit(nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, wantRewards[i], r)
	}
}

func TestCRM_Step_ScenarioS2_TerminatesInTwoSteps(t *testing.T) {
	crm := letterWorld(t)
	u, c := 0, []int{0}

	u, c, reward, err := crm.Step(u, c, alphabet.NewEventSet("B"))
	require.NoError(t, err)
	assert.Equal(t, 1, u)
	assert.Equal(t, 0, c[0])
	r, _ := reward.Emit(nil, nil, nil)
	assert.Equal(t, -0.1, r)

	u, c, reward, err = crm.Step(u, c, alphabet.NewEventSet("C"))
	require.NoError(t, err)
	assert.Equal(t, -1, u)
	assert.Equal(t, 0, c[0])
	r, _ = reward.Emit(nil, nil, nil)
	assert.Equal(t, 1.0, r)
	assert.True(t, crm.IsTerminal(u))
}

func TestCRM_Step_ScenarioS3(t *testing.T) {
	crm := letterWorld(t)
	u, c := 0, []int{0}
	events := []alphabet.EventSet{
		alphabet.NewEventSet("A"),
		alphabet.NewEventSet("B"),
		alphabet.NewEventSet("C"),
		alphabet.NewEventSet("C"),
	}
	wantStates := [][2]int{{0, 1}, {1, 1}, {1, 0}, {-1, 0}}
	wantRewards := []float64{-0.1, -0.1, -0.1, 1.0}

	for i, e := range events {
		var reward RewardEmitter
		var err error
		u, c, reward, err = crm.Step(u, c, e)
		require.NoError(t, err)
		assert.Equal(t, wantStates[i][0], u)
		assert.Equal(t, wantStates[i][1], c[0])
		r, _ := reward.Emit(nil, nil, nil)
		assert.Equal(t, wantRewards[i], r)
	}
}

func TestCRM_Step_ScenarioS4_NoEventsNeverTerminates(t *testing.T) {
	crm := letterWorld(t)
	u, c := 0, []int{0}
	for i := 0; i < 200; i++ {
		var reward RewardEmitter
		var err error
		u, c, reward, err = crm.Step(u, c, alphabet.NewEventSet())
		require.NoError(t, err)
		assert.Equal(t, 0, u)
		assert.Equal(t, 0, c[0])
		r, _ := reward.Emit(nil, nil, nil)
		assert.Equal(t, -0.1, r)
	}
	assert.False(t, crm.IsTerminal(u))
}

func TestCRM_Step_OnTerminalState_ReturnsTerminalStepError(t *testing.T) {
	crm := letterWorld(t)
	_, _, _, err := crm.Step(-1, []int{0}, alphabet.NewEventSet())
	require.Error(t, err)
}

func TestCRM_DefaultEdgeAlwaysEvaluatedLast(t *testing.T) {
	crm, err := NewBuilder().
		Events("A").
		Arity(1).
		Initial(0, 0).
		AddDefault(0, 0, []int{0}, RewardDef{Constant: ptr(0)}).
		AddTransition(0, "A", 0, []int{1}, RewardDef{Constant: ptr(0)}).
		Reachable(0, 0).
		Build()
	require.NoError(t, err)
	assert.False(t, crm.expressionOf(0, 0).IsDefault())
	assert.True(t, crm.expressionOf(0, 1).IsDefault())
}

func TestBuild_RejectsMissingDefault(t *testing.T) {
	_, err := NewBuilder().
		Events("A").
		Arity(1).
		Initial(0, 0).
		AddTransition(0, "A", 0, []int{1}, RewardDef{Constant: ptr(0)}).
		Reachable(0, 0).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MISSING_DEFAULT")
}

func TestBuild_RejectsArityMismatchOnDelta(t *testing.T) {
	_, err := NewBuilder().
		Events("A").
		Arity(2).
		Initial(0, 0, 0).
		AddDefault(0, 0, []int{0, 0}, RewardDef{Constant: ptr(0)}).
		AddTransition(0, "A", 0, []int{1}, RewardDef{Constant: ptr(0)}).
		Reachable(0, 0, 0).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARITY_MISMATCH")
}

func TestBuild_RejectsUnknownDestinationState(t *testing.T) {
	_, err := NewBuilder().
		Events("A").
		Arity(1).
		Initial(0, 0).
		AddDefault(0, 0, []int{0}, RewardDef{Constant: ptr(0)}).
		AddTransition(0, "A", 99, []int{0}, RewardDef{Constant: ptr(0)}).
		Reachable(0, 0).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN_STATE")
}

func TestBuild_RejectsEmptyReachableSet(t *testing.T) {
	_, err := NewBuilder().
		Events("A").
		Arity(1).
		Initial(0, 0).
		AddDefault(0, 0, []int{0}, RewardDef{Constant: ptr(0)}).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMPTY_REACHABLE_SET")
}

func TestBuild_FunctionalRewardDef(t *testing.T) {
	crm, err := NewBuilder().
		Events("A").
		Arity(1).
		Initial(0, 0).
		AddDefault(0, 0, []int{1}, FunctionalRewardDef(func(obs, action, nextObs any) float64 {
			return 7.0
		})).
		Reachable(0, 0).
		Build()
	require.NoError(t, err)

	_, _, reward, err := crm.Step(0, []int{0}, alphabet.NewEventSet())
	require.NoError(t, err)
	r, err := reward.Emit(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 7.0, r)
}

func TestLoadDefinition_BuildsLetterWorldFromYAML(t *testing.T) {
	doc := []byte(`
events: [A, B, C]
arity: 1
initial: 0
initial_counters: [0]
terminal: []
states:
  - state: 0
    transitions:
      - {expr: "A", dst: 0, delta: [1], reward: {constant: -0.1}}
      - {expr: "B", dst: 1, delta: [0], reward: {constant: -0.1}}
      - {expr: "", dst: 0, delta: [0], reward: {constant: -0.1}}
  - state: 1
    transitions:
      - {expr: "C / (NZ)", dst: 1, delta: [-1], reward: {constant: -0.1}}
      - {expr: "C / (Z)", dst: -1, delta: [0], reward: {constant: 1.0}}
      - {expr: "", dst: 1, delta: [0], reward: {constant: -0.1}}
reachable:
  - {state: 0, counters: [0]}
  - {state: 1, counters: [0]}
`)
	crm, err := LoadDefinition(doc)
	require.NoError(t, err)

	u, c, reward, err := crm.Step(0, []int{0}, alphabet.NewEventSet("B"))
	require.NoError(t, err)
	assert.Equal(t, 1, u)
	assert.Equal(t, 0, c[0])
	r, _ := reward.Emit(nil, nil, nil)
	assert.Equal(t, -0.1, r)
}

func TestLoadDefinition_RejectsMalformedYAML(t *testing.T) {
	_, err := LoadDefinition([]byte("not: [valid"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PARSE_ERROR")
}

func TestBuild_ScriptedReward(t *testing.T) {
	crm, err := NewBuilder().
		Events("A").
		Arity(1).
		Initial(0, 0).
		AddDefault(0, 0, []int{0}, RewardDef{Script: "1 + 1"}).
		Reachable(0, 0).
		Build()
	require.NoError(t, err)

	_, _, reward, err := crm.Step(0, []int{0}, alphabet.NewEventSet())
	require.NoError(t, err)
	r, err := reward.Emit(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, r)
}
