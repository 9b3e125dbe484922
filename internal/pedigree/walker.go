package pedigree

import (
	"time"

	"pedigreecore/pkg/domain"
)

// Summary is the per-ancestor snapshot carried by tree nodes and matrix slots.
type Summary struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	RegistrationNumber string     `json:"registration_number"`
	DateOfBirth        *time.Time `json:"date_of_birth"`
	Sex                domain.Sex `json:"sex"`
	Breed              string     `json:"breed"`
	KennelName         string     `json:"kennel_name"`
	Generation         int        `json:"generation"`
}

// AncestorNode is one individual in a materialised ancestor tree. Sire and
// Dam sit one generation further from the root, and are nil when the parent
// is unknown or unresolvable.
type AncestorNode struct {
	Summary
	Sire *AncestorNode `json:"sire"`
	Dam  *AncestorNode `json:"dam"`
}

func summarize(ind domain.Individual, generation int) Summary {
	s := Summary{
		ID:                 ind.ID,
		Name:               ind.Name,
		RegistrationNumber: ind.RegistrationNumber,
		Sex:                ind.Sex,
		Breed:              ind.Breed,
		KennelName:         ind.KennelName,
		Generation:         generation,
	}
	if ind.DateOfBirth != nil {
		dob := *ind.DateOfBirth
		s.DateOfBirth = &dob
	}
	return s
}

// Walk builds the ancestor tree rooted at rootID. The root sits at
// generation; recursion stops once generation exceeds maxGeneration, and that
// check happens before any lookup so a cyclic graph still terminates.
// An empty or unknown rootID yields nil.
func Walk(finder domain.IndividualFinder, rootID string, generation, maxGeneration int) *AncestorNode {
	if rootID == "" || generation > maxGeneration {
		return nil
	}
	ind, ok := finder.FindIndividual(rootID)
	if !ok {
		return nil
	}
	node := &AncestorNode{Summary: summarize(ind, generation)}
	if ind.SireID != nil {
		node.Sire = Walk(finder, *ind.SireID, generation+1, maxGeneration)
	}
	if ind.DamID != nil {
		node.Dam = Walk(finder, *ind.DamID, generation+1, maxGeneration)
	}
	return node
}

// parent returns the sire (bit 0) or dam (bit 1) of n; nil-safe.
func (n *AncestorNode) parent(bit int) *AncestorNode {
	if n == nil {
		return nil
	}
	if bit == 0 {
		return n.Sire
	}
	return n.Dam
}
