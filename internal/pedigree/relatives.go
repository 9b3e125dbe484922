package pedigree

import (
	"fmt"

	"pedigreecore/pkg/domain"
)

// RelationKind selects which relatives FindRelatives returns.
type RelationKind string

// Supported relation filters.
const (
	RelationAll          RelationKind = "all"
	RelationSiblings     RelationKind = "siblings"
	RelationHalfSiblings RelationKind = "half-siblings"
	RelationOffspring    RelationKind = "offspring"
)

// Relation labels attached to each Relative.
const (
	RelationFullSibling  = "full_sibling"
	RelationHalfSibling  = "half_sibling"
	RelationOffspringTag = "offspring"
)

// ParseRelationKind validates a user-supplied filter. Empty means all.
func ParseRelationKind(s string) (RelationKind, error) {
	switch k := RelationKind(s); k {
	case "":
		return RelationAll, nil
	case RelationAll, RelationSiblings, RelationHalfSiblings, RelationOffspring:
		return k, nil
	default:
		return "", fmt.Errorf("pedigree: unknown relation kind %q", s)
	}
}

// Relative is a related individual and how it relates to the subject.
type Relative struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	RegistrationNumber string     `json:"registration_number"`
	Sex                domain.Sex `json:"sex"`
	Breed              string     `json:"breed"`
	Relation           string     `json:"relation"`
}

// FindRelatives scans population for relatives of subject. Full siblings share
// both (known) parents; half-siblings share one known parent while their other
// parent is known and is not the subject's (any known parent qualifies when the
// subject's is unknown); offspring are found through the
// subject's own sex, sires via sire references and dams via dam references.
// Results are de-duplicated, never include the subject, and keep population
// order within each group (siblings, half-siblings, offspring).
func FindRelatives(subject domain.Individual, population []domain.Individual, kind RelationKind) []Relative {
	out := []Relative{}
	seen := map[string]struct{}{subject.ID: {}}
	add := func(ind domain.Individual, relation string) {
		if _, dup := seen[ind.ID]; dup {
			return
		}
		seen[ind.ID] = struct{}{}
		out = append(out, Relative{
			ID:                 ind.ID,
			Name:               ind.Name,
			RegistrationNumber: ind.RegistrationNumber,
			Sex:                ind.Sex,
			Breed:              ind.Breed,
			Relation:           relation,
		})
	}

	wantSiblings := kind == RelationAll || kind == RelationSiblings || kind == RelationHalfSiblings
	if wantSiblings && subject.HasBothParents() {
		for _, ind := range population {
			if refEqual(ind.SireID, subject.SireID) && refEqual(ind.DamID, subject.DamID) {
				add(ind, RelationFullSibling)
			}
		}
	}
	if kind == RelationAll || kind == RelationHalfSiblings {
		for _, ind := range population {
			paternal := refEqual(ind.SireID, subject.SireID) && refOther(ind.DamID, subject.DamID)
			maternal := refEqual(ind.DamID, subject.DamID) && refOther(ind.SireID, subject.SireID)
			if paternal || maternal {
				add(ind, RelationHalfSibling)
			}
		}
	}
	if kind == RelationAll || kind == RelationOffspring {
		for _, ind := range population {
			switch subject.Sex {
			case domain.SexMale:
				if ind.SireID != nil && *ind.SireID == subject.ID {
					add(ind, RelationOffspringTag)
				}
			case domain.SexFemale:
				if ind.DamID != nil && *ind.DamID == subject.ID {
					add(ind, RelationOffspringTag)
				}
			}
		}
	}
	return out
}

// refEqual is true when both references are known and equal.
func refEqual(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

// refOther is true when the candidate's reference is known and is not the
// subject's. An unknown subject reference matches any known candidate one.
func refOther(candidate, subject *string) bool {
	return candidate != nil && (subject == nil || *candidate != *subject)
}
