// Package rules models automation rules: a rule_type tag, a sparse
// type-agnostic conditions map, and an actions map whose legal keyset is
// determined by the rule type. Action legality and mutual exclusion live
// in side tables so new action keys can be added without touching the
// editor logic.
package rules

import (
	"fmt"
	"time"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/errors"
)

// Rule is one automation definition. Conditions may be nil; callers must
// treat nil and an empty map as equivalent ("no constraints").
type Rule struct {
	ID               int64                  `json:"id"`
	Name             string                 `json:"name" binding:"required"`
	Description      string                 `json:"description,omitempty"`
	Priority         int                    `json:"priority"`
	IsActive         bool                   `json:"is_active"`
	RuleType         constants.RuleType     `json:"rule_type" binding:"required"`
	Conditions       map[string]string      `json:"conditions,omitempty"`
	Actions          map[string]interface{} `json:"actions"`
	CreatedDate      time.Time              `json:"created_date,omitempty"`
	LastModifiedDate time.Time              `json:"last_modified_date,omitempty"`
}

// legalActions is the legal action keyset per rule type
var legalActions = map[constants.RuleType][]string{
	constants.RuleTypeAutoAssign: {
		constants.ActionAssignToUserID,
		constants.ActionAssignToDepartmentID,
		constants.ActionAssignToRole,
		constants.ActionRoundRobin,
	},
	constants.RuleTypeAutoClose: {
		constants.ActionCloseAfterHours,
		constants.ActionOnlyIfResolved,
	},
	constants.RuleTypeAutoNotify: {
		constants.ActionNotifyUsers,
		constants.ActionNotifyRoles,
		constants.ActionMessage,
	},
}

// exclusionGroups lists keys where setting one member clears the others
var exclusionGroups = map[constants.RuleType][][]string{
	constants.RuleTypeAutoAssign: {
		{
			constants.ActionAssignToUserID,
			constants.ActionAssignToDepartmentID,
			constants.ActionAssignToRole,
		},
	},
}

// assignmentTargets is the exclusion group that auto_assign submission
// requires at least one member of
var assignmentTargets = exclusionGroups[constants.RuleTypeAutoAssign][0]

// LegalActionKeys returns the legal action keys for a rule type
func LegalActionKeys(rt constants.RuleType) []string {
	keys := legalActions[rt]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// IsLegalActionKey reports whether key is legal for the rule type
func IsLegalActionKey(rt constants.RuleType, key string) bool {
	for _, k := range legalActions[rt] {
		if k == key {
			return true
		}
	}
	return false
}

// ExclusionGroupFor returns the mutual-exclusion group containing key,
// or nil when the key is not part of one
func ExclusionGroupFor(rt constants.RuleType, key string) []string {
	for _, group := range exclusionGroups[rt] {
		for _, k := range group {
			if k == key {
				return group
			}
		}
	}
	return nil
}

// Validate checks a full rule body before it is accepted for persistence
func Validate(r *Rule) error {
	if r.Name == "" {
		return errors.NewValidationError("name", "rule name is required")
	}
	if !constants.IsValidRuleType(string(r.RuleType)) {
		return errors.NewValidationError("rule_type", fmt.Sprintf("unknown rule type '%s'", r.RuleType))
	}

	for key := range r.Actions {
		if !IsLegalActionKey(r.RuleType, key) {
			return errors.NewValidationError("actions", fmt.Sprintf("action '%s' is not legal for rule type '%s'", key, r.RuleType))
		}
	}

	populated := 0
	for _, key := range assignmentTargets {
		if isPresent(r.Actions[key]) {
			populated++
		}
	}
	if populated > 1 {
		return errors.NewValidationError("actions", "only one assignment target may be set")
	}
	if r.RuleType == constants.RuleTypeAutoAssign && populated == 0 {
		return errors.NewValidationError("actions", "auto_assign rules require an assignment target")
	}

	if hours, ok := r.Actions[constants.ActionCloseAfterHours]; ok {
		n, valid := AsInt(hours)
		if !valid || n <= 0 {
			return errors.NewValidationError(constants.ActionCloseAfterHours, "close_after_hours must be a positive integer")
		}
	}

	return nil
}

// isPresent reports whether an action value counts as set
func isPresent(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}

// AsInt coerces an action value to int. JSON decoding yields float64,
// list inputs yield int; both are accepted.
func AsInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		if val == float64(int(val)) {
			return int(val), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsBool coerces an action value to bool
func AsBool(v interface{}) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// AsInt64List coerces an action value to a list of integer IDs
func AsInt64List(v interface{}) []int64 {
	items, ok := v.([]interface{})
	if !ok {
		if typed, ok := v.([]int64); ok {
			return typed
		}
		return nil
	}
	out := make([]int64, 0, len(items))
	for _, item := range items {
		if n, ok := AsInt(item); ok {
			out = append(out, int64(n))
		}
	}
	return out
}

// AsStringList coerces an action value to a list of strings
func AsStringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		if typed, ok := v.([]string); ok {
			return typed
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
