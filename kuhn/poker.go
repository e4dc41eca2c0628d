// Package kuhn implements the extensive-form game tree for Kuhn poker:
// a three-card, one-bet betting game that is the standard miniature
// testbed for CFR. Player 0's equilibrium game value is -1/18.
package kuhn

import (
	"fmt"
	"math/rand"

	cfr "github.com/EastChord/Counterfactual-Regret-Minimization"
)

const chancePlayer = -1

// Betting actions. A check after a bet folds; a bet after a bet calls.
const (
	Check = 'c'
	Bet   = 'b'
)

// Card is one of the three cards in the deck.
type Card int

const (
	Jack Card = iota
	Queen
	King
)

var cardNames = [...]string{"J", "Q", "K"}

func (c Card) String() string {
	return cardNames[c]
}

// PokerNode implements cfr.GameTreeNode for Kuhn poker. The root is a
// single chance node enumerating all six ordered two-card deals; below
// it, history is the sequence of check/bet choices.
type PokerNode struct {
	player  int
	history string

	// Private cards held by the players.
	p0Card, p1Card Card

	children      []PokerNode
	probabilities []float64
}

// NewGame returns the root of the Kuhn poker game tree.
func NewGame() *PokerNode {
	return &PokerNode{player: chancePlayer}
}

// String implements fmt.Stringer.
func (k *PokerNode) String() string {
	return fmt.Sprintf("player %v to act, history %q [cards: P0=%s P1=%s]",
		k.player, k.history, k.p0Card, k.p1Card)
}

// Type implements cfr.GameTreeNode.
func (k *PokerNode) Type() cfr.NodeType {
	switch {
	case isTerminal(k.history):
		return cfr.TerminalNodeType
	case k.player == chancePlayer:
		return cfr.ChanceNodeType
	default:
		return cfr.PlayerNodeType
	}
}

func isTerminal(history string) bool {
	switch history {
	case "cc", "bc", "bb", "cbc", "cbb":
		return true
	}
	return false
}

// Player implements cfr.GameTreeNode.
func (k *PokerNode) Player() int {
	return k.player
}

// NumChildren implements cfr.GameTreeNode.
func (k *PokerNode) NumChildren() int {
	if k.children == nil {
		k.buildChildren()
	}

	return len(k.children)
}

// GetChild implements cfr.GameTreeNode.
func (k *PokerNode) GetChild(i int) cfr.GameTreeNode {
	if k.children == nil {
		k.buildChildren()
	}

	return &k.children[i]
}

// GetChildProbability implements cfr.GameTreeNode.
func (k *PokerNode) GetChildProbability(i int) float64 {
	if k.probabilities == nil {
		k.buildChildren()
	}

	return k.probabilities[i]
}

// SampleChild implements cfr.GameTreeNode.
func (k *PokerNode) SampleChild(rng *rand.Rand) (cfr.GameTreeNode, float64) {
	n := k.NumChildren()
	i := rng.Intn(n) // All deals are equally likely.
	return k.GetChild(i), k.probabilities[i]
}

// Close implements cfr.GameTreeNode.
func (k *PokerNode) Close() {
	k.children = nil
	k.probabilities = nil
}

// Utility implements cfr.GameTreeNode. Antes are 1; a bet adds 1.
func (k *PokerNode) Utility(player int) float64 {
	switch k.history {
	case "bc":
		// Player 1 folded to the bet.
		return winLoss(player, 0, 1.0)
	case "cbc":
		// Player 0 folded to the bet.
		return winLoss(player, 1, 1.0)
	case "cc":
		return k.showdown(player, 1.0)
	case "bb", "cbb":
		return k.showdown(player, 2.0)
	}

	panic("utility requested for non-terminal history: " + k.history)
}

func winLoss(player, winner int, stake float64) float64 {
	if player == winner {
		return stake
	}
	return -stake
}

func (k *PokerNode) showdown(player int, stake float64) float64 {
	if k.playerCard(player) > k.playerCard(1-player) {
		return stake
	}
	return -stake
}

// InfoSet implements cfr.GameTreeNode: the player's private card plus
// the public betting history.
func (k *PokerNode) InfoSet(player int) string {
	return k.playerCard(player).String() + "-" + k.history
}

func (k *PokerNode) playerCard(player int) Card {
	if player == cfr.Player0 {
		return k.p0Card
	}

	return k.p1Card
}

func (k *PokerNode) buildChildren() {
	if isTerminal(k.history) {
		return
	}

	if k.player == chancePlayer {
		k.buildDeals()
		return
	}

	next := 1 - k.player
	k.children = make([]PokerNode, 0, 2)
	for _, choice := range []byte{Check, Bet} {
		child := *k
		child.player = next
		child.history += string(choice)
		child.children = nil
		child.probabilities = nil
		k.children = append(k.children, child)
	}
}

// buildDeals enumerates all six ordered deals of distinct cards, each
// with probability 1/6.
func (k *PokerNode) buildDeals() {
	cards := []Card{Jack, Queen, King}
	k.children = make([]PokerNode, 0, 6)
	for _, c0 := range cards {
		for _, c1 := range cards {
			if c0 == c1 {
				continue
			}

			k.children = append(k.children, PokerNode{
				player: cfr.Player0,
				p0Card: c0,
				p1Card: c1,
			})
		}
	}

	k.probabilities = make([]float64, len(k.children))
	for i := range k.probabilities {
		k.probabilities[i] = 1.0 / float64(len(k.children))
	}
}
