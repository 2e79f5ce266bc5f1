// Package synth turns extraction results into (subject, relation, object)
// triples by direct rule application over the fixed relation mapping.
package synth

import (
	"strings"

	"github.com/facultykb/facultygraph/internal/extract"
	"github.com/facultykb/facultygraph/internal/models"
)

// Synthesize emits one triple per extracted value for every relation in
// the fixed mapping. Objects equal to the subject are skipped; a missing
// category simply yields no triples for that relation. No model call is
// involved: every object value comes verbatim from the extraction result.
func Synthesize(res extract.Result, subject string) []models.Triple {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil
	}

	var triples []models.Triple
	for _, rel := range models.RelationOrder {
		cat := models.RelationMapping[rel]
		for _, val := range res.Values(cat) {
			val = strings.TrimSpace(val)
			if val == "" || val == subject {
				continue
			}
			triples = append(triples, models.Triple{
				Subject:  subject,
				Relation: rel,
				Object:   val,
			})
		}
	}
	return triples
}

// Dedupe removes exact duplicate triples, keeping first occurrences in
// order. Called once over the whole batch, not per subject.
func Dedupe(triples []models.Triple) []models.Triple {
	seen := make(map[models.Triple]struct{}, len(triples))
	out := triples[:0:0]
	for _, t := range triples {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
