package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/errors"
)

// Editor holds the transient editable copy of one rule while a form is
// open. All mutations keep the rule inside its invariants: at most one
// member of an exclusion group populated, conditions collapsed to nil
// when empty, actions reset on a rule type switch.
type Editor struct {
	rule Rule
}

// NewEditor starts editing a copy of the given rule
func NewEditor(r Rule) *Editor {
	e := &Editor{rule: r}
	if e.rule.Actions == nil {
		e.rule.Actions = map[string]interface{}{}
	}
	if len(e.rule.Conditions) == 0 {
		e.rule.Conditions = nil
	}
	return e
}

// NewRuleEditor starts editing a blank rule of the given type
func NewRuleEditor(rt constants.RuleType) *Editor {
	return NewEditor(Rule{RuleType: rt, IsActive: true})
}

// Rule returns the current state of the edited rule
func (e *Editor) Rule() Rule {
	return e.rule
}

// SetRuleType switches the rule type. Actions are reset to empty because
// their legal keyset changes; conditions are type-agnostic and survive
// the switch.
func (e *Editor) SetRuleType(rt constants.RuleType) {
	if rt == e.rule.RuleType {
		return
	}
	e.rule.RuleType = rt
	e.rule.Actions = map[string]interface{}{}
}

// SetAction sets one action value. Setting an empty value removes the
// key. Setting a member of a mutual-exclusion group to a non-empty value
// clears the other members in the same update.
func (e *Editor) SetAction(key string, value interface{}) error {
	if !IsLegalActionKey(e.rule.RuleType, key) {
		return errors.NewValidationError("actions", fmt.Sprintf("action '%s' is not legal for rule type '%s'", key, e.rule.RuleType))
	}

	if !isPresent(value) {
		delete(e.rule.Actions, key)
		return nil
	}

	for _, member := range ExclusionGroupFor(e.rule.RuleType, key) {
		if member != key {
			delete(e.rule.Actions, member)
		}
	}
	e.rule.Actions[key] = value
	return nil
}

// RemoveAction deletes one action key
func (e *Editor) RemoveAction(key string) {
	delete(e.rule.Actions, key)
}

// SetCondition sets one condition value, creating the map when needed.
// Adding a new condition key starts it with an empty value.
func (e *Editor) SetCondition(key, value string) {
	if e.rule.Conditions == nil {
		e.rule.Conditions = map[string]string{}
	}
	e.rule.Conditions[key] = value
}

// AddCondition inserts a condition key with an empty value
func (e *Editor) AddCondition(key string) {
	e.SetCondition(key, "")
}

// RemoveCondition deletes a condition key. An emptied map becomes nil,
// not {}, so that "no constraints" has a single representation on the
// wire.
func (e *Editor) RemoveCondition(key string) {
	delete(e.rule.Conditions, key)
	if len(e.rule.Conditions) == 0 {
		e.rule.Conditions = nil
	}
}

// SetName sets the rule name
func (e *Editor) SetName(name string) {
	e.rule.Name = name
}

// SetPriority sets the evaluation priority (lower runs first)
func (e *Editor) SetPriority(p int) {
	e.rule.Priority = p
}

// Validate checks the edited rule against its submission requirements
func (e *Editor) Validate() error {
	return Validate(&e.rule)
}

// ParseIDList parses a comma-separated list of integer IDs the way the
// notify_users input is edited: split, trim, silently drop tokens that
// do not parse.
func ParseIDList(s string) []int64 {
	out := []int64{}
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ParseStringList parses a comma-separated list of tags: split, trim,
// drop empties
func ParseStringList(s string) []string {
	out := []string{}
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		out = append(out, token)
	}
	return out
}
