package searcher

import (
	"io"
	"strings"
)

// TreeString renders n and its subtree, one node per line, children
// indented below their parent.
func (n *Node[M]) TreeString() string {
	var b strings.Builder
	n.writeTree(&b, 0)
	return b.String()
}

func (n *Node[M]) writeTree(b *strings.Builder, indent int) {
	b.WriteString("\n")
	b.WriteString(strings.Repeat("| ", indent))
	b.WriteString(n.String())
	for _, child := range n.children {
		child.writeTree(b, indent+1)
	}
}

// ChildrenString renders the direct children of n, one per line.
func (n *Node[M]) ChildrenString() string {
	var b strings.Builder
	for _, child := range n.children {
		b.WriteString(child.String())
		b.WriteString("\n")
	}
	return b.String()
}

// WriterReporter returns a Reporter printing the root's children to w, or
// the whole tree when verbose is set.
func WriterReporter[M comparable](w io.Writer, verbose bool) Reporter[M] {
	return func(root *Node[M]) {
		if verbose {
			_, _ = io.WriteString(w, root.TreeString()+"\n")
			return
		}
		_, _ = io.WriteString(w, root.ChildrenString())
	}
}
