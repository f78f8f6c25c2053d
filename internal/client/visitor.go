package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// State is the lifecycle of a visitor count load.
type State int

const (
	NotFetched State = iota
	Fetching
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case NotFetched:
		return "not_fetched"
	case Fetching:
		return "fetching"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrInFlight is returned by Load while another load is running.
var ErrInFlight = errors.New("visitor count load already in progress")

// CountAPI is the pair of counter calls a Visitor needs.
type CountAPI interface {
	GetCount(ctx context.Context) (int64, error)
	IncrementCount(ctx context.Context) (int64, error)
}

// Session remembers whether this browsing session has already been counted.
type Session struct {
	visited atomic.Bool
}

// Visited reports whether a counted visit succeeded in this session.
func (s *Session) Visited() bool {
	return s.visited.Load()
}

func (s *Session) markVisited() {
	s.visited.Store(true)
}

// Visitor loads the count once per view: the first successful load in a
// session increments, later loads only read.
type Visitor struct {
	api     CountAPI
	session *Session

	mu    sync.Mutex
	state State
	count int64
	err   error
}

// NewVisitor binds a visitor to the API and a session, which may be shared
// by several visitors.
func NewVisitor(api CountAPI, session *Session) *Visitor {
	if session == nil {
		session = &Session{}
	}
	return &Visitor{api: api, session: session}
}

// Load fetches the count. The session is marked visited only after an
// increment succeeds, so a failed first load increments on retry.
func (v *Visitor) Load(ctx context.Context) (int64, error) {
	v.mu.Lock()
	if v.state == Fetching {
		v.mu.Unlock()
		return 0, ErrInFlight
	}
	v.state = Fetching
	v.err = nil
	v.mu.Unlock()

	increment := !v.session.Visited()

	var (
		count int64
		err   error
	)
	if increment {
		count, err = v.api.IncrementCount(ctx)
	} else {
		count, err = v.api.GetCount(ctx)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.state = Failed
		v.err = err
		return 0, err
	}
	if increment {
		v.session.markVisited()
	}
	v.state = Loaded
	v.count = count
	return count, nil
}

// State returns the current lifecycle state.
func (v *Visitor) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Count returns the loaded value; ok is false unless the state is Loaded.
func (v *Visitor) Count() (count int64, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.count, v.state == Loaded
}

// Err returns the error of the last failed load.
func (v *Visitor) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}
