package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewRecordID returns a new globally unique, time-sortable record id.
func NewRecordID() string {
	return ksuid.New().String()
}

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewTokenID generates a snowflake id used as a token's jti. The node id is
// taken from SNOWFLAKE_NODE (default 1). If the node cannot be initialized it
// falls back to a KSUID so an id is always returned.
func NewTokenID() string {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if v, err := strconv.ParseInt(os.Getenv("SNOWFLAKE_NODE"), 10, 64); err == nil {
			nodeID = v
		}
		n, err := snowflake.NewNode(nodeID)
		if err == nil {
			node = n
		}
	})
	if node == nil {
		return NewRecordID()
	}
	return node.Generate().String()
}
