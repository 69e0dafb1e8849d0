package domain

import (
	"strconv"
	"strings"
	"sync"
)

// TempIDPrefix marks ids allocated locally before the server has seen the item.
// The reference server never issues ids with this prefix.
const TempIDPrefix = "temp_"

func IsTemporary(id ItemID) bool {
	return strings.HasPrefix(string(id), TempIDPrefix)
}

type IDAllocator struct {
	mu  sync.Mutex
	seq uint64
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

func (a *IDAllocator) Next() ItemID {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	return ItemID(TempIDPrefix + strconv.FormatUint(a.seq, 10))
}

// Observe moves the counter past a temp id that was issued by an earlier
// session and read back from the replica.
func (a *IDAllocator) Observe(id ItemID) {
	if !IsTemporary(id) {
		return
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(string(id), TempIDPrefix), 10, 64)
	if err != nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if n > a.seq {
		a.seq = n
	}
}
