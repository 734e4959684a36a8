package mirror

import "sync"

type claim struct {
	sourceURL string
	confirmed bool
}

// ExpectedSet tracks the filenames that must exist in the remote folder at
// the end of a run. Names are confirmed only after a successful upload; a
// file that failed to upload must never protect a same-named remote entry
// from deletion. Safe for concurrent use by parallel upload workers.
type ExpectedSet struct {
	mu     sync.Mutex
	claims map[string]claim
}

// NewExpectedSet returns an empty set.
func NewExpectedSet() *ExpectedSet {
	return &ExpectedSet{claims: make(map[string]claim)}
}

// Claim reserves a filename before the fetch/upload attempt begins. It
// returns the source URL of the earlier claimant when the name is already
// taken this run, so the caller can surface the collision instead of
// silently overwriting. A successful claim does NOT mark the name expected;
// Confirm does that after the upload succeeds.
func (s *ExpectedSet) Claim(name, sourceURL string) (prior string, collided bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.claims[name]; ok {
		return c.sourceURL, true
	}
	s.claims[name] = claim{sourceURL: sourceURL}
	return "", false
}

// Confirm marks a claimed filename as expected. Only confirmed names survive
// reconciliation.
func (s *ExpectedSet) Confirm(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.claims[name]; ok {
		c.confirmed = true
		s.claims[name] = c
	}
}

// Release drops an unconfirmed claim, typically after a fetch or upload
// failure, so a later document with the same derived name can try again.
func (s *ExpectedSet) Release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.claims[name]; ok && !c.confirmed {
		delete(s.claims, name)
	}
}

// Contains reports whether the filename was confirmed this run.
func (s *ExpectedSet) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[name]
	return ok && c.confirmed
}

// Len returns the number of confirmed filenames.
func (s *ExpectedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.claims {
		if c.confirmed {
			n++
		}
	}
	return n
}

// Names returns the confirmed filenames in unspecified order.
func (s *ExpectedSet) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.claims))
	for name, c := range s.claims {
		if c.confirmed {
			out = append(out, name)
		}
	}
	return out
}
