package room

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lox/pokerrooms/internal/cards"
	"github.com/lox/pokerrooms/internal/randutil"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

var testNames = []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi", "Ivan"}

// newTestRoom seats n players with ids matching their lower-case names.
// The first player is the host and dealer.
func newTestRoom(t *testing.T, n int, settings Settings) *Room {
	t.Helper()
	r, err := New("ABCDEF", &Player{ID: idFor(0), Name: testNames[0]}, settings, testNow)
	require.NoError(t, err)
	for i := 1; i < n; i++ {
		_, err := r.AddPlayer(&Player{ID: idFor(i), Name: testNames[i]}, testNow)
		require.NoError(t, err)
	}
	return r
}

func idFor(i int) string {
	return strings.ToLower(testNames[i])
}

func startTestGame(t *testing.T, r *Room) {
	t.Helper()
	require.NoError(t, r.StartGame(r.Host().ID, randutil.New(1), testNow))
}

func mustApply(t *testing.T, r *Room, id string, kind ActionKind, amount ...int) {
	t.Helper()
	a := Action{Kind: kind}
	if len(amount) > 0 {
		a.Amount = amount[0]
	}
	require.NoError(t, r.Apply(id, a, testNow), "%s %s", id, a)
}

func totalChips(r *Room) int {
	total := r.Pot
	for _, p := range r.Players {
		total += p.Chips
	}
	return total
}

// cardsAccountedFor counts every card the room knows about.
func cardsAccountedFor(r *Room) []cards.Card {
	all := append([]cards.Card{}, r.Deck.Cards...)
	all = append(all, r.Burned...)
	all = append(all, r.Community...)
	for _, p := range r.Players {
		all = append(all, p.HoleCards...)
	}
	return all
}
