package id

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// ErrInvalid is returned by Parse for empty, malformed or non-positive ids.
var ErrInvalid = errors.New("invalid id")

// Init initializes the Snowflake node with the given node ID.
// Only the first call has any effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new int64 ID. Workspaces and tasks take their identity
// from here when the store inserts them.
func New() int64 {
	return node.Generate().Int64()
}

// Parse converts a decimal id taken from a path segment, query string or
// protocol frame.
func Parse(s string) (int64, error) {
	parsed, err := snowflake.ParseString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	if parsed.Int64() <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return parsed.Int64(), nil
}
