package room

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewHidesOtherHoleCardsAndDeck(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, 3, DefaultSettings())
	r.Players[2].IsAI = true
	r.Players[0].Token = "alice-secret"
	r.Players[1].Token = "bob-secret"
	startTestGame(t, r)

	v := r.ViewFor("alice")
	assert.Equal(t, "alice", v.YourID)
	assert.Equal(t, "alice", v.ActingPlayerID)
	assert.Equal(t, 20, v.ToCall)
	assert.Equal(t, 21, v.MinRaise)

	for _, p := range v.Players {
		if p.ID == "alice" {
			assert.Equal(t, r.Players[0].HoleCards, p.HoleCards)
		} else {
			assert.Empty(t, p.HoleCards, "hole cards of %s leaked", p.ID)
		}
		assert.Equal(t, 2, p.CardCount)
	}

	data, err := json.Marshal(v)
	require.NoError(t, err)
	for _, c := range r.Deck.Cards {
		assert.NotContains(t, string(data), `"`+c.String()+`"`, "deck card %s leaked", c)
	}
	for _, c := range r.Players[2].HoleCards {
		assert.NotContains(t, string(data), `"`+c.String()+`"`)
	}
	assert.NotContains(t, string(data), `"deck"`)
	assert.NotContains(t, string(data), "secret", "seat tokens are never shown, not even to their owner")
}

func TestSpectatorViewHasNoHoleCards(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, 2, DefaultSettings())
	startTestGame(t, r)

	v := r.ViewFor("")
	assert.Empty(t, v.YourID)
	for _, p := range v.Players {
		assert.Empty(t, p.HoleCards)
	}
	_, ok := v.Self()
	assert.False(t, ok)
}

func TestViewRevealsShowdownHands(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, 2, DefaultSettings())
	startTestGame(t, r)
	mustApply(t, r, "alice", ActionRaise, 1000)
	mustApply(t, r, "bob", ActionCall)
	require.Equal(t, PhaseShowdown, r.Phase)

	v := r.ViewFor("alice")
	for i, p := range v.Players {
		assert.Equal(t, r.Players[i].HoleCards, p.HoleCards)
	}
	require.NotNil(t, v.LastResult)
	assert.Len(t, v.LastResult.Reveals, 2)
	assert.Equal(t, 0, v.ToCall)
}

func TestViewKeepsFoldWinnerHidden(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, 2, DefaultSettings())
	startTestGame(t, r)
	mustApply(t, r, "alice", ActionFold)

	v := r.ViewFor("alice")
	for _, p := range v.Players {
		if p.ID != "alice" {
			assert.Empty(t, p.HoleCards, "a hand won uncontested is not shown")
		}
	}
	assert.Equal(t, EndFold, v.LastResult.Reason)
}

func TestViewHelpers(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, 3, DefaultSettings())
	startTestGame(t, r)
	mustApply(t, r, "alice", ActionFold)

	v := r.ViewFor("bob")
	self, ok := v.Self()
	require.True(t, ok)
	assert.Equal(t, "bob", self.ID)
	assert.Equal(t, 1, v.Opponents())
	assert.True(t, v.Players[0].IsDealer)
}
