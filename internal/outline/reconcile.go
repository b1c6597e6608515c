package outline

import (
	"strings"

	"go.uber.org/zap"
)

// Reconcile selects the most complete candidate outline and union-merges the
// losers' unique titles into it. More entries wins; on a tie the structured
// source is preferred. A non-empty candidate always beats an empty one.
// Relative order inside the winner is never changed; merged-in uniques are
// appended in their own original order.
func Reconcile(candidates []Candidate, log *zap.Logger) []Entry {
	best := -1
	for i, c := range candidates {
		if len(c.Entries) == 0 {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		switch {
		case len(c.Entries) > len(candidates[best].Entries):
			best = i
		case len(c.Entries) == len(candidates[best].Entries) && c.Structured && !candidates[best].Structured:
			best = i
		}
	}
	if best < 0 {
		return nil
	}

	chosen := candidates[best]
	merged := append([]Entry(nil), chosen.Entries...)
	seen := make(map[string]bool, len(merged))
	for _, e := range merged {
		seen[strings.TrimSpace(e.Title)] = true
	}

	for i, c := range candidates {
		if i == best || len(c.Entries) == 0 {
			continue
		}
		added := 0
		for _, e := range c.Entries {
			title := strings.TrimSpace(e.Title)
			if title == "" || seen[title] {
				continue
			}
			seen[title] = true
			merged = append(merged, e)
			added++
		}
		if added > 0 {
			log.Debug("reconcile merged unique titles",
				zap.String("from", c.Source),
				zap.String("into", chosen.Source),
				zap.Int("added", added))
		}
	}

	log.Debug("reconcile chose outline",
		zap.String("source", chosen.Source),
		zap.Int("entries", len(chosen.Entries)),
		zap.Int("total", len(merged)),
		zap.Int("candidates", len(candidates)))
	return merged
}
