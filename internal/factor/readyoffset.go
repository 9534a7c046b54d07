package factor

// maxReady returns the largest ready_offset among the given nodes, the rule
// every stateless (pointwise) operator uses: it can only emit a real value
// once every child can.
func maxReady(nodes ...*Node) int {
	m := 0
	for _, n := range nodes {
		if n.ready > m {
			m = n.ready
		}
	}
	return m
}
