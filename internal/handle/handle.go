package handle

import (
	"strconv"
	"sync/atomic"
)

// ID names one dialog or toolbar button for a later close/remove/update.
// The zero ID is never issued.
type ID uint64

func (id ID) String() string {
	return "#" + strconv.FormatUint(uint64(id), 10)
}

func (id ID) IsZero() bool {
	return id == 0
}

// Allocator issues IDs from a monotonically increasing counter. It is safe
// for concurrent use.
type Allocator struct {
	last atomic.Uint64
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

func (a *Allocator) Next() ID {
	return ID(a.last.Add(1))
}
