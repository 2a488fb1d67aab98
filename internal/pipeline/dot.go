package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	gographviz "github.com/awalterschulze/gographviz"
	"github.com/desertthunder/vidx/internal/operations"
)

const graphName = "pipeline"

// DOT renders a compiled plan as a Graphviz digraph: the source, one node per step in run
// order, and an edge for every intermediate file handed from one step to the next.
func DOT(input string, plan []*operations.Invocation) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	if err := g.AddAttr(graphName, "rankdir", "LR"); err != nil {
		return "", err
	}

	prev := "source"
	if err := g.AddNode(graphName, prev, map[string]string{
		"shape": "box",
		"label": strconv.Quote(input),
	}); err != nil {
		return "", fmt.Errorf("dot: %w", err)
	}

	for i, inv := range plan {
		node := "step" + strconv.Itoa(i+1)
		label := fmt.Sprintf("%d. %s\n%s", i+1, inv.Kind, strings.Join(bodyArgs(inv), " "))
		if err := g.AddNode(graphName, node, map[string]string{
			"shape": "box",
			"style": "rounded",
			"label": strconv.Quote(label),
		}); err != nil {
			return "", fmt.Errorf("dot: %w", err)
		}
		if err := g.AddEdge(prev, node, true, nil); err != nil {
			return "", fmt.Errorf("dot: %w", err)
		}
		prev = node
	}

	return g.String(), nil
}

// bodyArgs drops the "-i <input>" head and "-y <output>" tail.
func bodyArgs(inv *operations.Invocation) []string {
	if len(inv.Args) < 4 {
		return nil
	}
	return inv.Args[2 : len(inv.Args)-2]
}
