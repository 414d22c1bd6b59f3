// Package schema validates inbound entity payloads before they reach the
// screening state. The checks are structural: identity fields must be
// present, enum fields must carry known values, and kind structs must agree
// with the declared entity type. Tolerance for messy field VALUES belongs to
// normalization and scoring; a record that fails these checks could never be
// screened meaningfully.
package schema

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Ramsey-B/briar/pkg/models"
)

var validate = validator.New()

// ValidationError is a single field-level problem in an entity payload
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of validating one entity payload
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func (r *Result) addError(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// Validator checks entity payloads against the screening data model
type Validator struct{}

// NewValidator creates an entity payload validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateEntity checks the fields shared by queries and list entries. Query
// entities may omit their list identity; use ValidateListEntry for payloads
// that must carry one.
func (v *Validator) ValidateEntity(e *models.Entity) Result {
	result := Result{Valid: true}
	if e == nil {
		result.addError("entity", "entity payload is required")
		return result
	}

	if err := validate.Struct(e); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				result.addError(fieldPath(fe), tagMessage(fe))
			}
		} else {
			result.addError("entity", err.Error())
		}
	}

	v.checkKindStructs(e, &result)
	return result
}

// ValidateListEntry checks a full list entry as delivered by the feed. List
// entries additionally need their list identity and a concrete entity type.
func (v *Validator) ValidateListEntry(e *models.Entity) Result {
	result := v.ValidateEntity(e)
	if e == nil {
		return result
	}
	if e.Source == "" {
		result.addError("sourceList", "list entries must name their source list")
	}
	if e.SourceID == "" {
		result.addError("sourceId", "list entries must carry a source id")
	}
	if e.EntityType == "" {
		result.addError("entityType", "list entries must carry an entity type")
	}
	return result
}

// checkKindStructs enforces that at most one kind struct is set and that a
// set struct matches the declared entity type
func (v *Validator) checkKindStructs(e *models.Entity, result *Result) {
	type kind struct {
		field      string
		set        bool
		entityType models.EntityType
	}
	kinds := []kind{
		{"person", e.Person != nil, models.EntityTypePerson},
		{"business", e.Business != nil, models.EntityTypeBusiness},
		{"organization", e.Organization != nil, models.EntityTypeOrganization},
		{"vessel", e.Vessel != nil, models.EntityTypeVessel},
		{"aircraft", e.Aircraft != nil, models.EntityTypeAircraft},
	}

	setCount := 0
	for _, k := range kinds {
		if !k.set {
			continue
		}
		setCount++
		if e.EntityType != "" && e.EntityType != k.entityType {
			result.addError(k.field, fmt.Sprintf("%s details set on a %s entity", k.field, e.EntityType))
		}
	}
	if setCount > 1 {
		result.addError("entity", "more than one kind struct is set")
	}
}

// fieldPath renders a validator namespace like "Entity.GovernmentIDs[0].Identifier"
// as the json-ish path callers see in error payloads
func fieldPath(fe validator.FieldError) string {
	path := fe.Namespace()
	if idx := strings.Index(path, "."); idx >= 0 {
		path = path[idx+1:]
	}
	return path
}

func tagMessage(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fmt.Sprintf("failed '%s' validation (expected %s)", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed '%s' validation", fe.Tag())
}
