package auth

import "sync"

// ErrorInfo describes the last failed verification.
type ErrorInfo struct {
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

// Session is the console's view of the admin session.
type Session struct {
	IsAuthenticated bool       `json:"isAuthenticated"`
	Initialized     bool       `json:"initialized"`
	Loading         bool       `json:"loading"`
	Error           *ErrorInfo `json:"error,omitempty"`
}

// Reader is what the route guard and the pages consume.
type Reader interface {
	Snapshot() Session
}

// State holds the process-wide Session. Only the verifier, login and logout
// mutate it.
type State struct {
	mu      sync.Mutex
	session Session
	nextID  int
	subs    map[int]chan Session
	// logouts counts SetUnauthenticated calls. A verification that started
	// before the latest one cannot authenticate the session.
	logouts uint64
}

func NewState() *State {
	return &State{subs: make(map[int]chan Session)}
}

func (s *State) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Subscribe returns a channel that always holds the most recent snapshot.
// Slow readers only miss intermediate values.
func (s *State) Subscribe() (<-chan Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan Session, 1)
	ch <- s.session
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// SetUnauthenticated is used by logout and when a page call proves the
// session is gone. Initialized is left to the verifier.
func (s *State) SetUnauthenticated() {
	s.update(func(sess *Session) {
		s.logouts++
		sess.IsAuthenticated = false
	})
}

// beginVerification returns the logout count the attempt started under.
func (s *State) beginVerification() uint64 {
	var gen uint64
	s.update(func(sess *Session) {
		gen = s.logouts
		sess.Loading = true
	})
	return gen
}

// completeVerification records a resolved attempt and reports whether the
// session ended up authenticated.
func (s *State) completeVerification(gen uint64, ok bool, info *ErrorInfo) bool {
	s.update(func(sess *Session) {
		if gen != s.logouts {
			ok = false
		}
		sess.IsAuthenticated = ok
		sess.Initialized = true
		sess.Loading = false
		sess.Error = info
	})
	return ok
}

func (s *State) update(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.session)
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.session
	}
}
