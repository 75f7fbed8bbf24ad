package calltree

import (
	"fmt"

	"fortio.org/safecast"
)

func mustLen32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("calltree: node count overflow: %w", err))
	}
	return v
}
