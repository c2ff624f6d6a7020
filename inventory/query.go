package inventory

import (
	"iter"
	"strings"

	"musicschool_backend/models"
)

// Filter narrows an instrument listing. Zero values (and the literal "all")
// match everything, so an empty Filter lists the whole registry.
type Filter struct {
	// Search matches case-insensitively against name or type.
	Search string
	// Status matches exactly against the lifecycle status.
	Status string
	// LoanType matches exactly against the checkout mode.
	LoanType string
}

func wildcard(s string) bool { return s == "" || s == "all" }

// Matches reports whether one instrument passes the filter.
func (f Filter) Matches(inst *models.Instrument) bool {
	if s := strings.TrimSpace(f.Search); s != "" {
		needle := strings.ToLower(s)
		if !strings.Contains(strings.ToLower(inst.Name), needle) &&
			!strings.Contains(strings.ToLower(inst.Type), needle) {
			return false
		}
	}
	if !wildcard(f.Status) && string(inst.Status) != f.Status {
		return false
	}
	if !wildcard(f.LoanType) {
		if inst.LoanType == nil || string(*inst.LoanType) != f.LoanType {
			return false
		}
	}
	return true
}

// Filter returns a restartable sequence of matching instruments in
// registration order. Each restart re-reads the registry, so the sequence
// reflects the state at iteration time; yielded records are copies.
func (r *Registry) Filter(f Filter) iter.Seq[models.Instrument] {
	return func(yield func(models.Instrument) bool) {
		for _, inst := range r.snapshot() {
			if !f.Matches(&inst) {
				continue
			}
			if !yield(inst) {
				return
			}
		}
	}
}

// snapshot copies the records out under the read lock so iteration never
// holds the lock while caller code runs.
func (r *Registry) snapshot() []models.Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Instrument, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}
