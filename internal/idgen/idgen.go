// Package idgen issues customer identifiers.
//
// Listing orders customers by id descending as a stand-in for recency, so ids
// must sort in creation order. Snowflake ids are time-ordered and fixed width
// for the lifetime of the epoch, which keeps lexical order equal to numeric order.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Prefix marks every generated customer id.
const Prefix = "CUST"

// Generator issues monotonically increasing ids for a single node.
type Generator struct {
	node *snowflake.Node
}

// New returns a Generator for the given snowflake node (0-1023).
func New(node int64) (*Generator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", node, err)
	}
	return &Generator{node: n}, nil
}

// Next returns a new id such as CUST1859347217345789952.
func (g *Generator) Next() string {
	return fmt.Sprintf("%s%019d", Prefix, g.node.Generate().Int64())
}
