package core

import "pedigreecore/pkg/domain"

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Base               = domain.Base
	Sex                = domain.Sex
	Individual         = domain.Individual
	HealthTest         = domain.HealthTest
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
	ErrNotFound        = domain.ErrNotFound
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityIndividual = domain.EntityIndividual

	SexMale   = domain.SexMale
	SexFemale = domain.SexFemale

	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog

	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

// NewRulesEngine returns an engine with no rules registered.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }
