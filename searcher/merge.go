package searcher

// merge folds the statistics of other into root, matching children by
// move. Subtrees only present in other are adopted as they are.
func merge[M comparable](root, other *Node[M]) {
	if root == nil || other == nil {
		return
	}

	root.visits += other.visits
	if root.parent != nil {
		root.avails += other.avails
	}
	root.wins += other.wins
	root.tricks += other.tricks
	root.trickValue += other.trickValue

	for _, child := range other.children {
		if mine := root.Child(child.move); mine != nil {
			merge(mine, child)
			continue
		}
		child.parent = root
		root.children = append(root.children, child)
	}
	other.children = nil
}
