package session

import "sync/atomic"

// sequence hands out request tokens for one fetch category.
type sequence struct {
	n atomic.Uint64
}

func (s *sequence) next() uint64 {
	return s.n.Add(1)
}

func (s *sequence) latest(token uint64) bool {
	return s.n.Load() == token
}
