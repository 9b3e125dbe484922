package core

import (
	"context"
	"fmt"

	"pedigreecore/internal/pedigree"
	"pedigreecore/pkg/domain"
)

const pedigreeIntegrityRuleName = "pedigree_integrity"

// PedigreeIntegrityRule checks the parent references of every created or
// updated individual. Only self-parentage blocks; every other finding is a
// warning so incomplete registries can still be recorded.
func PedigreeIntegrityRule() domain.Rule {
	return pedigreeIntegrityRule{}
}

type pedigreeIntegrityRule struct{}

func (pedigreeIntegrityRule) Name() string { return pedigreeIntegrityRuleName }

func (pedigreeIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityIndividual || change.Action == domain.ActionDelete {
			continue
		}
		ind, ok := change.After.(domain.Individual)
		if !ok {
			continue
		}
		checkIndividual(&res, view, ind)
	}
	return res, nil
}

func checkIndividual(res *domain.Result, view domain.RuleView, ind domain.Individual) {
	if ind.SireID != nil && ind.DamID != nil && *ind.SireID == *ind.DamID && *ind.SireID != ind.ID {
		res.Violations = append(res.Violations, pedigreeViolation(domain.SeverityWarn, ind.ID,
			fmt.Sprintf("individual %s lists %s as both sire and dam", ind.ID, *ind.SireID)))
	}
	checkParent(res, view, ind, "sire", ind.SireID, domain.SexMale)
	checkParent(res, view, ind, "dam", ind.DamID, domain.SexFemale)
}

func checkParent(res *domain.Result, view domain.RuleView, child domain.Individual, role string, ref *string, want domain.Sex) {
	if ref == nil {
		return
	}
	if *ref == child.ID {
		res.Violations = append(res.Violations, pedigreeViolation(domain.SeverityBlock, child.ID,
			fmt.Sprintf("individual %s references itself as %s", child.ID, role)))
		return
	}
	parent, ok := view.FindIndividual(*ref)
	if !ok {
		res.Violations = append(res.Violations, pedigreeViolation(domain.SeverityWarn, child.ID,
			fmt.Sprintf("individual %s references unknown %s %s", child.ID, role, *ref)))
		return
	}
	if parent.Sex != want {
		res.Violations = append(res.Violations, pedigreeViolation(domain.SeverityWarn, child.ID,
			fmt.Sprintf("%s '%s' is not marked as %s", titleRole(role), parent.Name, want)))
	}
	if child.DateOfBirth != nil && parent.DateOfBirth != nil && !parent.DateOfBirth.Before(*child.DateOfBirth) {
		res.Violations = append(res.Violations, pedigreeViolation(domain.SeverityWarn, child.ID,
			fmt.Sprintf("%s '%s' birth date should be before offspring birth date", titleRole(role), parent.Name)))
	}
	if pedigree.CollectPaths(view, parent.ID, pedigree.MaxGenerations).Contains(child.ID) {
		res.Violations = append(res.Violations, pedigreeViolation(domain.SeverityWarn, child.ID,
			fmt.Sprintf("individual %s appears in the ancestry of its own %s %s", child.ID, role, parent.ID)))
	}
}

func titleRole(role string) string {
	if role == "sire" {
		return "Sire"
	}
	return "Dam"
}

func pedigreeViolation(sev domain.Severity, id, message string) domain.Violation {
	return domain.Violation{
		Rule:     pedigreeIntegrityRuleName,
		Severity: sev,
		Message:  message,
		Entity:   domain.EntityIndividual,
		EntityID: id,
	}
}
