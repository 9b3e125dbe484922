// Package domain defines the pedigree records, value types, and rule
// evaluation primitives shared by the pedigree engine and its stores.
package domain

import (
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityIndividual identifies an individual dog record.
	EntityIndividual EntityType = "individual"
)

// Sex is the biological sex of an individual. Exactly one of two values.
type Sex string

// Canonical sex values.
const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

// Valid reports whether s is one of the two canonical values.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HealthTest records a single screening result attached to an individual.
type HealthTest struct {
	Type   string     `json:"type" validate:"required"`
	Date   *time.Time `json:"date,omitempty"`
	Place  string     `json:"place,omitempty"`
	Result string     `json:"result" validate:"required"`
	Notes  string     `json:"notes,omitempty"`
}

// Individual represents a registered dog. SireID and DamID are nil when the
// parent is unknown; many individuals may share the same parent.
type Individual struct {
	Base
	Name               string       `json:"name" validate:"required,max=100"`
	RegistrationNumber string       `json:"registration_number,omitempty" validate:"max=200"`
	Sex                Sex          `json:"sex" validate:"required,oneof=Male Female"`
	DateOfBirth        *time.Time   `json:"date_of_birth,omitempty"`
	Color              string       `json:"color,omitempty" validate:"max=50"`
	Breed              string       `json:"breed" validate:"required,max=100"`
	KennelName         string       `json:"kennel_name,omitempty" validate:"max=100"`
	TattooNumber       string       `json:"tattoo_number,omitempty" validate:"max=50"`
	Microchip          string       `json:"microchip,omitempty" validate:"max=50"`
	Breeder            string       `json:"breeder,omitempty" validate:"max=100"`
	SireID             *string      `json:"sire_id"`
	DamID              *string      `json:"dam_id"`
	HealthTests        []HealthTest `json:"health_tests,omitempty" validate:"dive"`
}

// HasBothParents reports whether both parent references are present.
func (i Individual) HasBothParents() bool {
	return i.SireID != nil && i.DamID != nil
}

// NormalizeRefs turns empty or blank parent references into nil so absence is
// always modeled the same way.
func (i *Individual) NormalizeRefs() {
	i.SireID = normalizeRef(i.SireID)
	i.DamID = normalizeRef(i.DamID)
}

func normalizeRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*ref)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Clone returns a deep copy that shares no pointers with the receiver.
func (i Individual) Clone() Individual {
	cp := i
	cp.SireID = cloneString(i.SireID)
	cp.DamID = cloneString(i.DamID)
	cp.DateOfBirth = cloneTime(i.DateOfBirth)
	if i.HealthTests != nil {
		cp.HealthTests = make([]HealthTest, len(i.HealthTests))
		for idx, test := range i.HealthTests {
			test.Date = cloneTime(test.Date)
			cp.HealthTests[idx] = test
		}
	}
	return cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Ref returns a pointer to id, or nil when id is empty. Handy for building
// parent references in fixtures and CLI input.
func Ref(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string     `json:"rule"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	Entity   EntityType `json:"entity"`
	EntityID string     `json:"entity_id"`
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation `json:"violations,omitempty"`
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Warnings returns the non-blocking violation messages.
func (r Result) Warnings() []string {
	var out []string
	for _, v := range r.Violations {
		if v.Severity != SeverityBlock {
			out = append(out, v.Message)
		}
	}
	return out
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return "transaction blocked by rules: " + v.Message
		}
	}
	return "transaction blocked by rules"
}
