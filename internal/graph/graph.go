// Package graph implements a bounded breadth-first walk over the object
// link graph. The engine performs no I/O of its own: neighbor lookup is
// delegated to a caller-supplied Resolver, so traversal stays testable
// with fixed, literal graphs.
package graph

import (
	"errors"
	"fmt"
)

// Direction selects which link directions a traversal follows.
type Direction string

// Traversal directions.
const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// Bounds on traversal work. They guard against pathological or cyclic
// link graphs, not against concurrency.
const (
	// MaxDepthCap is the largest accepted max depth.
	MaxDepthCap = 10
	// MaxVisitedNodes stops a traversal once this many nodes have been
	// discovered; the partial result is returned with Truncated set.
	MaxVisitedNodes = 1000
)

var (
	// ErrInvalidDepth is returned when max depth is negative or exceeds
	// MaxDepthCap. Rejected before traversal starts.
	ErrInvalidDepth = errors.New("max depth out of range")
	// ErrUnknownDirection is returned for a direction value that is not
	// outgoing, incoming, or both. Rejected before traversal starts.
	ErrUnknownDirection = errors.New("unknown direction")
)

// Neighbors holds the ids linked from and to a given object.
type Neighbors struct {
	Outgoing []string
	Incoming []string
}

// Resolver maps an object id to its linked neighbor ids. Implementations
// own all I/O, retries, and timeout semantics.
type Resolver interface {
	Resolve(id string) (Neighbors, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(id string) (Neighbors, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(id string) (Neighbors, error) {
	return f(id)
}

// Node is one object discovered during traversal. Depth is the minimum
// BFS distance from the start object; Direction records the edge
// direction taken to discover the node and is empty for the start.
type Node struct {
	ObjectID  string    `json:"object_id"`
	Depth     int       `json:"depth"`
	Direction Direction `json:"direction,omitempty"`
}

// Result is the outcome of a traversal. Nodes are in discovery order,
// starting with the start object at depth 0. Truncated is set when the
// visited-node cap cut the walk short.
type Result struct {
	Nodes     []Node `json:"nodes"`
	Truncated bool   `json:"truncated"`
}

// Traverse walks the link graph breadth-first from start, visiting each
// reachable object once at its minimum depth. A node is marked visited
// when it is enqueued, so an object reachable through several parents in
// the same layer is still recorded exactly once.
//
// A resolver error stops the walk; the nodes discovered so far are
// returned alongside the error.
func Traverse(start string, maxDepth int, direction Direction, resolver Resolver) (Result, error) {
	if maxDepth < 0 || maxDepth > MaxDepthCap {
		return Result{}, fmt.Errorf("%w: %d (accepted: 0..%d)", ErrInvalidDepth, maxDepth, MaxDepthCap)
	}
	switch direction {
	case DirectionOutgoing, DirectionIncoming, DirectionBoth:
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownDirection, direction)
	}

	visited := map[string]struct{}{start: {}}
	nodes := []Node{{ObjectID: start, Depth: 0}}
	frontier := []Node{nodes[0]}
	truncated := false

	for len(frontier) > 0 && !truncated {
		depth := frontier[0].Depth
		if depth >= maxDepth {
			break
		}

		var next []Node
		for _, cur := range frontier {
			nb, err := resolver.Resolve(cur.ObjectID)
			if err != nil {
				return Result{Nodes: nodes, Truncated: truncated},
					fmt.Errorf("graph: resolve %s: %w", cur.ObjectID, err)
			}

			enqueue := func(ids []string, taken Direction) {
				for _, id := range ids {
					if id == "" || truncated {
						continue
					}
					if _, seen := visited[id]; seen {
						continue
					}
					if len(nodes) >= MaxVisitedNodes {
						truncated = true
						continue
					}
					visited[id] = struct{}{}
					node := Node{ObjectID: id, Depth: depth + 1, Direction: taken}
					nodes = append(nodes, node)
					next = append(next, node)
				}
			}

			if direction == DirectionOutgoing || direction == DirectionBoth {
				enqueue(nb.Outgoing, DirectionOutgoing)
			}
			if direction == DirectionIncoming || direction == DirectionBoth {
				enqueue(nb.Incoming, DirectionIncoming)
			}
		}
		frontier = next
	}

	return Result{Nodes: nodes, Truncated: truncated}, nil
}
