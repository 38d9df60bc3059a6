package auth

// Decision is what the route guard does with a protected navigation.
type Decision int

const (
	// DecisionPending renders only the blocking placeholder.
	DecisionPending Decision = iota
	DecisionAllow
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionAllow:
		return "allow"
	case DecisionRedirect:
		return "redirect"
	}
	return "unknown"
}

// Decide depends only on the snapshot: nothing protected renders before
// the startup verification has resolved.
func Decide(s Session) Decision {
	if !s.Initialized {
		return DecisionPending
	}
	if s.IsAuthenticated {
		return DecisionAllow
	}
	return DecisionRedirect
}
