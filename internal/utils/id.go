package utils

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	nodeOnce sync.Once
	nodeID   int64 = 1
	node     *snowflake.Node
)

// SetSnowflakeNode sets the node used for ID generation. Must be called
// before the first NextID, typically from main with the configured value.
func SetSnowflakeNode(id int64) {
	nodeID = id
}

// NextID generates a new unique numeric identifier.
func NextID() int64 {
	nodeOnce.Do(func() {
		n, err := snowflake.NewNode(nodeID)
		if err != nil {
			// invalid node ids only come from misconfiguration; node 1 is
			// always valid
			n, _ = snowflake.NewNode(1)
		}
		node = n
	})
	return node.Generate().Int64()
}
