package resilience

import "sync"

type flightCall struct {
	wg  sync.WaitGroup
	val any
	err error
}

// SingleFlight collapses concurrent calls with the same key into one
// execution; followers wait and receive the leader's result.
type SingleFlight struct {
	mu    sync.Mutex
	calls map[string]*flightCall
}

func NewSingleFlight() *SingleFlight {
	return &SingleFlight{calls: make(map[string]*flightCall)}
}

// Do returns the value and error of fn, plus whether this caller shared a
// result produced by another in-flight call.
func (s *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	s.mu.Lock()
	if call, ok := s.calls[key]; ok {
		s.mu.Unlock()
		call.wg.Wait()
		return call.val, call.err, true
	}

	call := &flightCall{}
	call.wg.Add(1)
	s.calls[key] = call
	s.mu.Unlock()

	call.val, call.err = fn()
	call.wg.Done()

	s.mu.Lock()
	delete(s.calls, key)
	s.mu.Unlock()

	return call.val, call.err, false
}
