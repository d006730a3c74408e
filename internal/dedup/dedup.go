// Package dedup filters text units by content fingerprint so identical text
// is embedded and stored at most once, both across runs and within a run.
package dedup

import (
	"runtime"

	"github.com/statico/quickrag/pkg/types"
)

// yieldEvery bounds how many units are hashed between scheduler yields, to
// keep a host UI responsive during large scans. It has no effect on
// correctness or ordering.
const yieldEvery = 256

// Set tracks known fingerprints for one indexing run. It is an exclusively
// owned mutable handle passed through the pipeline, seeded from the
// persisted store before a run begins; it is not safe for concurrent use.
type Set map[types.Fingerprint]struct{}

// NewSet returns an empty fingerprint set.
func NewSet() Set {
	return make(Set)
}

// Has reports whether fp is already known.
func (s Set) Has(fp types.Fingerprint) bool {
	_, ok := s[fp]
	return ok
}

// Add records fp as known.
func (s Set) Add(fp types.Fingerprint) {
	s[fp] = struct{}{}
}

// Filter returns the units whose fingerprints are not yet in known,
// preserving input order, along with the count of duplicates skipped. Every
// accepted fingerprint is inserted into known, so later units in the same
// call, or a later call sharing the same set, see earlier acceptances.
func Filter(units []types.TextUnit, known Set) (unique []types.TextUnit, skipped int) {
	for i, u := range units {
		if i > 0 && i%yieldEvery == 0 {
			runtime.Gosched()
		}
		fp := types.FingerprintOf(u.Text)
		if known.Has(fp) {
			skipped++
			continue
		}
		known.Add(fp)
		unique = append(unique, u)
	}
	return unique, skipped
}
