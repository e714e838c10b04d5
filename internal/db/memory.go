package db

import (
	"fmt"
	"sync/atomic"
)

var memorySeq atomic.Int64

// MemoryDSN returns a fresh, private in-memory sqlite DSN.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, memorySeq.Add(1))
}
