package factor

import (
	"strconv"
	"strings"
)

// String renders the node's subtree as a factor string. Round-tripping
// through Parse is exact: Parse(n.String()).String() == n.String().
func (n *Node) String() string {
	var sb strings.Builder
	n.writeTo(&sb)
	return sb.String()
}

func (n *Node) writeTo(sb *strings.Builder) {
	switch n.kind {
	case KindLiteral:
		sb.WriteString(formatNumber(n.lit))
		return
	case KindColumn:
		sb.WriteByte(':')
		sb.WriteString(n.col)
		return
	}

	sb.WriteByte('(')
	sb.WriteString(n.kind.String())

	switch n.kind {
	case KindSPow:
		sb.WriteByte(' ')
		sb.WriteString(formatNumber(n.param))
		sb.WriteByte(' ')
		n.children[0].writeTo(sb)
	case KindQuantile:
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(n.window))
		sb.WriteByte(' ')
		sb.WriteString(formatNumber(n.param))
		sb.WriteByte(' ')
		n.children[0].writeTo(sb)
	default:
		if n.kind.isRolling() {
			sb.WriteByte(' ')
			sb.WriteString(strconv.Itoa(n.window))
		}
		for _, c := range n.children {
			sb.WriteByte(' ')
			c.writeTo(sb)
		}
	}
	sb.WriteByte(')')
}

func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
