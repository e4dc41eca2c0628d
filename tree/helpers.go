// Package tree provides traversal helpers over extensive-form game
// trees, mostly useful for sanity-checking game implementations.
package tree

import (
	cfr "github.com/EastChord/Counterfactual-Regret-Minimization"
)

// Visit calls visitor for every node in the tree rooted at root, in
// depth-first order.
func Visit(root cfr.GameTreeNode, visitor func(node cfr.GameTreeNode)) {
	visitor(root)
	for i := 0; i < root.NumChildren(); i++ {
		Visit(root.GetChild(i), visitor)
	}
	root.Close()
}

// VisitInfoSets calls visitor once for each distinct information set in
// the tree rooted at root.
func VisitInfoSets(root cfr.GameTreeNode, visitor func(player int, infoSet string)) {
	seen := make(map[string]struct{})
	Visit(root, func(node cfr.GameTreeNode) {
		if node.Type() != cfr.PlayerNodeType {
			return
		}

		player := node.Player()
		infoSet := node.InfoSet(player)
		if _, ok := seen[infoSet]; ok {
			return
		}

		visitor(player, infoSet)
		seen[infoSet] = struct{}{}
	})
}

// CountNodes returns the total number of nodes in the tree.
func CountNodes(root cfr.GameTreeNode) int {
	total := 0
	Visit(root, func(node cfr.GameTreeNode) { total++ })
	return total
}

// CountTerminalNodes returns the number of terminal nodes in the tree.
func CountTerminalNodes(root cfr.GameTreeNode) int {
	total := 0
	Visit(root, func(node cfr.GameTreeNode) {
		if node.Type() == cfr.TerminalNodeType {
			total++
		}
	})

	return total
}

// CountInfoSets returns the number of distinct information sets in the
// tree.
func CountInfoSets(root cfr.GameTreeNode) int {
	total := 0
	VisitInfoSets(root, func(player int, infoSet string) { total++ })
	return total
}
