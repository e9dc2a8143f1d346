package updater

import (
	"path/filepath"
	"strings"
)

// Affinity tiers, higher is better.
const (
	affinityNone    = 0
	affinityProduct = 1
	affinityStem    = 2
	affinityExact   = 3
)

// Selector picks the artifact to install from a catalog.
type Selector struct {
	// Suffix is the executable suffix an artifact must end with.
	Suffix string
	// Keywords mark artifacts belonging to this product.
	Keywords []string
}

// NewSelector creates a Selector from the updater configuration.
func NewSelector(cfg Config) *Selector {
	return &Selector{Suffix: cfg.AssetSuffix, Keywords: cfg.ProductKeywords}
}

type rankKey struct {
	affinity   int
	hasVersion bool
	version    *Version
	updatedAt  string
}

func (k rankKey) less(o rankKey) bool {
	if k.affinity != o.affinity {
		return k.affinity < o.affinity
	}
	if k.hasVersion != o.hasVersion {
		return !k.hasVersion
	}
	if c := compareOptional(k.version, o.version); c != 0 {
		return c < 0
	}
	return k.updatedAt < o.updatedAt
}

// SelectBest returns the best artifact for an executable called currentName.
// Stable artifacts are always preferred: prereleases are only considered when
// no stable artifact matches. Drafts are never returned.
func (s *Selector) SelectBest(catalog []Artifact, currentName string) (Artifact, bool) {
	for _, allowPrerelease := range []bool{false, true} {
		if best, ok := s.bestOf(catalog, currentName, allowPrerelease); ok {
			return best, true
		}
	}
	return Artifact{}, false
}

func (s *Selector) bestOf(catalog []Artifact, currentName string, allowPrerelease bool) (Artifact, bool) {
	suffix := strings.ToLower(s.Suffix)

	var (
		best    Artifact
		bestKey rankKey
		found   bool
	)
	for _, a := range catalog {
		if a.Draft || (a.Prerelease && !allowPrerelease) {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(a.Name), suffix) {
			continue
		}

		key := rankKey{
			affinity:   s.affinity(a.Name, currentName),
			hasVersion: a.Version != nil,
			version:    a.Version,
			updatedAt:  a.UpdatedAt,
		}
		if !found || bestKey.less(key) {
			best, bestKey, found = a, key, true
		}
	}
	return best, found
}

func (s *Selector) affinity(candidate, current string) int {
	name := strings.ToLower(candidate)
	cur := strings.ToLower(strings.TrimSpace(current))
	stem := strings.TrimSuffix(cur, filepath.Ext(cur))

	switch {
	case cur != "" && name == cur:
		return affinityExact
	case cur != "" && strings.Contains(name, cur):
		return affinityStem
	case stem != "" && strings.Contains(name, stem):
		// Contains covers starts-with.
		return affinityStem
	}

	for _, kw := range s.Keywords {
		if kw != "" && strings.Contains(name, strings.ToLower(kw)) {
			return affinityProduct
		}
	}
	return affinityNone
}
