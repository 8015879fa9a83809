package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerrooms/internal/cards"
	"github.com/lox/pokerrooms/internal/randutil"
	"github.com/lox/pokerrooms/internal/room"
)

// scriptedRand replays fixed draws so each branch can be pinned.
type scriptedRand struct {
	floats []float64
	next   int
}

func (s *scriptedRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	f := s.floats[s.next%len(s.floats)]
	s.next++
	return f
}

func (s *scriptedRand) IntN(int) int { return 0 }

func script(f ...float64) *scriptedRand { return &scriptedRand{floats: f} }

func preflop(hole string, pot, currentBet, myBet, chips int) Observation {
	return Observation{
		Phase:      room.PhasePreflop,
		HoleCards:  cards.MustParseCards(hole),
		Pot:        pot,
		CurrentBet: currentBet,
		MyBet:      myBet,
		MyChips:    chips,
		BigBlind:   20,
		Opponents:  1,
	}
}

func TestPreflopStrengthOrdering(t *testing.T) {
	t.Parallel()

	aces := PreflopStrength(cards.MustParseCards("AsAh"))
	deuces := PreflopStrength(cards.MustParseCards("2s2h"))
	aks := PreflopStrength(cards.MustParseCards("AsKs"))
	ako := PreflopStrength(cards.MustParseCards("AsKd"))
	trash := PreflopStrength(cards.MustParseCards("7h2c"))

	assert.InDelta(t, 1.0, aces, 1e-9)
	assert.InDelta(t, 0.5, deuces, 1e-9)
	assert.Greater(t, aks, ako, "suited beats offsuit")
	assert.GreaterOrEqual(t, aks, StrongThreshold)
	assert.Less(t, trash, MediumThreshold)
	assert.Equal(t, PreflopStrength(cards.MustParseCards("KdAs")), ako, "order of hole cards does not matter")
}

func TestPostflopStrength(t *testing.T) {
	t.Parallel()

	quads := Strength(cards.MustParseCards("AsAh"), cards.MustParseCards("AdAcKs"))
	assert.InDelta(t, 1.0, quads, 1e-9)

	air := Strength(cards.MustParseCards("7h2c"), cards.MustParseCards("AsKdJc"))
	assert.Less(t, air, MediumThreshold)

	board := Strength(cards.MustParseCards("2c3d"), cards.MustParseCards("AsKsQsJsTs"))
	assert.Less(t, board, StrongThreshold, "playing the board is discounted")

	assert.Zero(t, Strength(nil, nil))
}

func TestDecideStrongHandRaises(t *testing.T) {
	t.Parallel()

	obs := preflop("AsAh", 30, 20, 0, 1000)
	d := Decide(obs, script(0.5, 0.0, 0.0, 0.0))

	require.Equal(t, room.ActionRaise, d.Action.Kind)
	assert.Equal(t, 57, d.Action.Amount)
	assert.Equal(t, TauntConfident, d.Taunt)
}

func TestDecideStrongHandCallsWhenNotRaising(t *testing.T) {
	t.Parallel()

	obs := preflop("AsAh", 30, 20, 0, 1000)
	d := Decide(obs, script(0.0, 0.99, 0.99))
	assert.Equal(t, room.ActionCall, d.Action.Kind)
	assert.Equal(t, TauntNone, d.Taunt, "taunt roll above the chance drops the line")

	obs.CurrentBet = 0
	d = Decide(obs, script(0.0, 0.99))
	assert.Equal(t, room.ActionCheck, d.Action.Kind)
}

func TestDecideRaiseIsCappedAtStack(t *testing.T) {
	t.Parallel()

	obs := preflop("KsKh", 1000, 50, 20, 60)
	d := Decide(obs, script(0.5, 0.0, 0.9, 0.9))

	require.Equal(t, room.ActionRaise, d.Action.Kind)
	assert.Equal(t, 80, d.Action.Amount, "all in for chips plus current bet")
}

func TestDecideDoesNotRaiseWithoutChipsBehind(t *testing.T) {
	t.Parallel()

	// facing more than the stack: the only options are call or fold
	obs := preflop("AsAh", 500, 400, 0, 100)
	d := Decide(obs, script(0.5, 0.0, 0.9))
	assert.Equal(t, room.ActionCall, d.Action.Kind)
}

func TestDecideMediumHandUsesPotOdds(t *testing.T) {
	t.Parallel()

	obs := preflop("Ts9s", 30, 20, 0, 1000)
	require.GreaterOrEqual(t, Strength(obs.HoleCards, nil), MediumThreshold)
	require.Less(t, Strength(obs.HoleCards, nil), StrongThreshold)

	d := Decide(obs, script(0.5, 0.9, 0.9))
	assert.Equal(t, room.ActionCall, d.Action.Kind)

	d = Decide(obs, script(0.0, 0.9, 0.9))
	assert.Equal(t, room.ActionFold, d.Action.Kind)

	obs.CurrentBet = 0
	d = Decide(obs, script(0.0, 0.9))
	assert.Equal(t, room.ActionCheck, d.Action.Kind)
}

func TestDecideWeakHand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		currentBet int
		draws      []float64
		want       room.ActionKind
		wantTaunt  Taunt
	}{
		{"folds to a bet", 20, []float64{0.5, 0.9, 0.0}, room.ActionFold, TauntFold},
		{"checks when free", 0, []float64{0.5, 0.9}, room.ActionCheck, TauntNone},
		{"bluffs on a low roll", 20, []float64{1.0, 0.0, 0.0, 0.0}, room.ActionRaise, TauntBluff},
		{"bluff chance is bounded", 20, []float64{1.0, 0.16, 0.0}, room.ActionFold, TauntFold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			obs := preflop("7h2c", 30, tt.currentBet, 0, 1000)
			d := Decide(obs, script(tt.draws...))
			assert.Equal(t, tt.want, d.Action.Kind)
			assert.Equal(t, tt.wantTaunt, d.Taunt)
		})
	}
}

func TestDecideAlwaysLegal(t *testing.T) {
	t.Parallel()

	rng := randutil.New(7)
	deck := cards.NewShuffledDeck(rng)
	for i := 0; i < 200; i++ {
		if deck.Remaining() < 7 {
			deck = cards.NewShuffledDeck(rng)
		}
		hole := deck.DealN(2)
		board := deck.DealN(i % 6)
		if len(board) > 0 && len(board) < 3 {
			board = nil
		}
		obs := Observation{
			Phase:      room.PhaseFlop,
			HoleCards:  hole,
			Community:  board,
			Pot:        rng.IntN(500),
			CurrentBet: rng.IntN(200),
			MyChips:    1 + rng.IntN(500),
			BigBlind:   20,
		}
		obs.MyBet = min(obs.CurrentBet, rng.IntN(100))

		d := Decide(obs, rng)
		switch d.Action.Kind {
		case room.ActionCheck:
			assert.Zero(t, obs.ToCall(), "checked facing a bet")
		case room.ActionRaise:
			assert.Greater(t, d.Action.Amount, obs.CurrentBet)
			assert.LessOrEqual(t, d.Action.Amount, obs.MyChips+obs.MyBet)
		case room.ActionCall, room.ActionFold:
		default:
			t.Fatalf("unexpected action %q", d.Action.Kind)
		}
	}
}

func TestObservationFromView(t *testing.T) {
	t.Parallel()

	hole := cards.MustParseCards("AsKs")
	v := room.View{
		YourID:     "bot",
		Phase:      room.PhaseFlop,
		Pot:        120,
		CurrentBet: 40,
		BigBlind:   20,
		Players: []room.PlayerView{
			{ID: "alice", Chips: 900, CurrentBet: 40},
			{ID: "bot", Chips: 500, CurrentBet: 10, HoleCards: hole},
			{ID: "carol", Folded: true},
		},
		CommunityCards: cards.MustParseCards("2d7hJc"),
	}

	obs, ok := ObservationFromView(v)
	require.True(t, ok)
	assert.Equal(t, hole, obs.HoleCards)
	assert.Equal(t, 30, obs.ToCall())
	assert.Equal(t, 1, obs.Opponents)
	assert.InDelta(t, 30.0/150.0, obs.PotOdds(), 1e-9)

	v.YourID = "carol"
	_, ok = ObservationFromView(v)
	assert.False(t, ok, "a folded seat has nothing to decide")
}

func TestTauntLine(t *testing.T) {
	t.Parallel()

	assert.Empty(t, TauntLine(TauntNone, script()))
	assert.Equal(t, tauntLines[TauntBluff][0], TauntLine(TauntBluff, script()))
}
