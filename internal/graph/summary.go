package graph

// Summary is an aggregate view over a traversal result.
type Summary struct {
	TotalNodes      int         `json:"total_nodes"`
	MaxDepthReached int         `json:"max_depth_reached"`
	DepthCounts     map[int]int `json:"depth_counts"`
	Truncated       bool        `json:"truncated"`
}

// Summarize aggregates a traversal result into node counts per depth.
// It is a pure function over the node list and issues no resolver calls.
func Summarize(res Result) Summary {
	s := Summary{
		TotalNodes:  len(res.Nodes),
		DepthCounts: make(map[int]int, len(res.Nodes)),
		Truncated:   res.Truncated,
	}
	for _, n := range res.Nodes {
		s.DepthCounts[n.Depth]++
		if n.Depth > s.MaxDepthReached {
			s.MaxDepthReached = n.Depth
		}
	}
	return s
}
