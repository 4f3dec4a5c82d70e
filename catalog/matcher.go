package catalog

import (
	"math/rand"
	"sync"
	"time"
)

// Policy selects the tag-matching strategy.
type Policy string

const (
	// PolicyStrict requires the category in the advisor's primary tags AND
	// the detail in its detail tags. Ties between several matching records
	// are broken uniformly at random. This is the canonical policy.
	PolicyStrict Policy = "strict"
	// PolicyAny accepts a record carrying either label in any tag set and
	// returns the first match in catalog order. Kept as a compatibility
	// variant; it admits looser matches than PolicyStrict.
	PolicyAny Policy = "any"
)

// Matcher answers category/detail lookups against a loaded catalog.
// A Matcher is safe for concurrent use.
type Matcher struct {
	catalog *Catalog
	policy  Policy

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMatcher builds a matcher over the catalog. rng drives the tie-break
// under PolicyStrict; pass a seeded source in tests for determinism, or nil
// to use a time-seeded one.
func NewMatcher(c *Catalog, policy Policy, rng *rand.Rand) *Matcher {
	if policy == "" {
		policy = PolicyStrict
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Matcher{catalog: c, policy: policy, rng: rng}
}

// Match returns an advisor for the category/detail pair, or false when no
// record qualifies. A miss is an expected outcome, not an error.
func (m *Matcher) Match(category, detail string) (Advisor, bool) {
	switch m.policy {
	case PolicyAny:
		return m.matchAny(category, detail)
	default:
		return m.matchStrict(category, detail)
	}
}

func (m *Matcher) matchStrict(category, detail string) (Advisor, bool) {
	var candidates []Advisor
	for _, a := range m.catalog.Advisors() {
		if a.HasPrimary(category) && a.HasDetail(detail) {
			candidates = append(candidates, a)
		}
	}
	switch len(candidates) {
	case 0:
		return Advisor{}, false
	case 1:
		return candidates[0], true
	default:
		m.mu.Lock()
		idx := m.rng.Intn(len(candidates))
		m.mu.Unlock()
		return candidates[idx], true
	}
}

func (m *Matcher) matchAny(category, detail string) (Advisor, bool) {
	for _, a := range m.catalog.Advisors() {
		if a.HasAny(category) || a.HasAny(detail) {
			return a, true
		}
	}
	return Advisor{}, false
}
