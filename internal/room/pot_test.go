package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		players  []*Player
		expected []pot
	}{
		{
			name: "single pot",
			players: []*Player{
				{TotalBet: 100},
				{TotalBet: 100},
				{TotalBet: 20, Folded: true},
			},
			expected: []pot{{Amount: 220, Eligible: []int{0, 1}}},
		},
		{
			name: "short all in creates a side pot",
			players: []*Player{
				{TotalBet: 50},
				{TotalBet: 200},
				{TotalBet: 200},
				{TotalBet: 30, Folded: true},
			},
			expected: []pot{
				{Amount: 180, Eligible: []int{0, 1, 2}},
				{Amount: 300, Eligible: []int{1, 2}},
			},
		},
		{
			name: "uncalled chips return to the bettor",
			players: []*Player{
				{TotalBet: 100},
				{TotalBet: 300},
			},
			expected: []pot{
				{Amount: 200, Eligible: []int{0, 1}},
				{Amount: 200, Eligible: []int{1}},
			},
		},
		{
			name: "folded chips above every live level join the last pot",
			players: []*Player{
				{TotalBet: 40},
				{TotalBet: 40},
				{TotalBet: 90, Folded: true},
			},
			expected: []pot{{Amount: 170, Eligible: []int{0, 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pots := buildPots(tt.players)
			assert.Equal(t, tt.expected, pots)

			total, contributed := 0, 0
			for _, p := range pots {
				total += p.Amount
			}
			for _, p := range tt.players {
				contributed += p.TotalBet
			}
			assert.Equal(t, contributed, total, "chips are conserved")
		})
	}
}

func TestSplitPot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   int
		winners  []int
		dealer   int
		expected map[int]int
	}{
		{"single winner", 100, []int{2}, 0, map[int]int{2: 100}},
		{"even split", 100, []int{0, 1}, 0, map[int]int{0: 50, 1: 50}},
		{"odd chip left of dealer", 101, []int{0, 1}, 0, map[int]int{0: 50, 1: 51}},
		{"odd chips wrap around", 302, []int{0, 2, 3}, 2, map[int]int{3: 101, 0: 101, 2: 100}},
		{"nothing to split", 0, []int{1}, 0, map[int]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, splitPot(tt.amount, tt.winners, tt.dealer, 4))
		})
	}
}
