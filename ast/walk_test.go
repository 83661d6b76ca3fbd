package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sample() *Node {
	return S(Begin,
		S(Lvasgn, Symbol("x"), S(Int, int64(1))),
		S(While, S(True), S(Begin, S(Break, nil))),
		S(Send, nil, Symbol("puts"), S(Lvar, Symbol("x"))),
	)
}

func TestInspectOrder(t *testing.T) {
	var visited []string
	Inspect(sample(), func(n *Node) bool {
		visited = append(visited, n.Kind.String())
		return true
	})
	require.Equal(t, []string{
		"begin", "lvasgn", "int", "while", "true", "begin", "break", "send", "lvar",
	}, visited)
}

func TestInspectSkipChildren(t *testing.T) {
	var visited []string
	Inspect(sample(), func(n *Node) bool {
		visited = append(visited, n.Kind.String())
		return n.Kind != While
	})
	require.Equal(t, []string{"begin", "lvasgn", "int", "while", "send", "lvar"}, visited)
}

func TestPreorderStopsEarly(t *testing.T) {
	count := 0
	for n := range Preorder(sample()) {
		count++
		if n.Kind == Int {
			break
		}
	}
	require.Equal(t, 3, count)
}

func TestContains(t *testing.T) {
	tree := sample()
	require.True(t, Contains(tree, []Kind{Break}))
	require.False(t, Contains(tree, []Kind{Break}, While))
	require.False(t, Contains(tree, []Kind{Retry}))
	require.False(t, Contains(nil, []Kind{Break}))
}
