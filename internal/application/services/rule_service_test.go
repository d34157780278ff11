package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/errors"
	"github.com/ticketdesk/backend/pkg/rules"
)

func TestRuleServiceCreateNormalizesMaps(t *testing.T) {
	store := newFakeRuleStore()
	svc := NewRuleService(store)
	ctx := context.Background()

	rule := &rules.Rule{
		Name:       "Round robin triage",
		RuleType:   constants.RuleTypeAutoAssign,
		Conditions: map[string]string{},
		Actions: map[string]interface{}{
			constants.ActionAssignToDepartmentID: float64(2),
			constants.ActionRoundRobin:           true,
		},
	}
	require.NoError(t, svc.Create(ctx, rule))
	assert.True(t, rule.IsActive)

	stored, err := svc.Get(ctx, rule.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Conditions, "empty conditions collapse to nil")
}

func TestRuleServiceUpdateCanonicalizesShape(t *testing.T) {
	store := newFakeRuleStore()
	svc := NewRuleService(store)
	ctx := context.Background()

	rule := &rules.Rule{
		Name:       "Notify on intake",
		RuleType:   constants.RuleTypeAutoNotify,
		Conditions: map[string]string{constants.ConditionPriority: "High"},
		Actions:    map[string]interface{}{constants.ActionMessage: "heads up"},
	}
	require.NoError(t, svc.Create(ctx, rule))

	updated, err := svc.Update(ctx, rule.ID, &rules.Rule{
		Name:       "Notify on intake",
		RuleType:   constants.RuleTypeAutoNotify,
		Conditions: map[string]string{},
		Actions:    map[string]interface{}{constants.ActionMessage: "updated"},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Conditions, "empty conditions collapse to nil")

	stored, err := svc.Get(ctx, rule.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Conditions)
	assert.Equal(t, "updated", stored.Actions[constants.ActionMessage])
}

func TestRuleServiceCreateRejectsInvalidRule(t *testing.T) {
	svc := NewRuleService(newFakeRuleStore())

	err := svc.Create(context.Background(), &rules.Rule{
		Name:     "No target",
		RuleType: constants.RuleTypeAutoAssign,
		Actions:  map[string]interface{}{},
	})
	assert.True(t, errors.IsValidation(err))
}

func TestRuleServiceUpdateNotFound(t *testing.T) {
	svc := NewRuleService(newFakeRuleStore())

	_, err := svc.Update(context.Background(), 42, &rules.Rule{
		Name:     "Ghost",
		RuleType: constants.RuleTypeAutoClose,
		Actions:  map[string]interface{}{constants.ActionCloseAfterHours: 24},
	})
	assert.True(t, errors.IsNotFound(err))
}

func TestRuleServiceSetActiveToggles(t *testing.T) {
	store := newFakeRuleStore()
	svc := NewRuleService(store)
	ctx := context.Background()

	rule := &rules.Rule{
		Name:     "Close stale",
		RuleType: constants.RuleTypeAutoClose,
		Actions:  map[string]interface{}{constants.ActionCloseAfterHours: 48},
	}
	require.NoError(t, svc.Create(ctx, rule))
	require.NoError(t, svc.SetActive(ctx, rule.ID, false))

	stored, err := svc.Get(ctx, rule.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestRuleServiceDelete(t *testing.T) {
	store := newFakeRuleStore()
	svc := NewRuleService(store)
	ctx := context.Background()

	rule := &rules.Rule{
		Name:     "Temp",
		RuleType: constants.RuleTypeAutoNotify,
		Actions:  map[string]interface{}{constants.ActionMessage: "ping"},
	}
	require.NoError(t, svc.Create(ctx, rule))
	require.NoError(t, svc.Delete(ctx, rule.ID))

	_, err := svc.Get(ctx, rule.ID)
	assert.True(t, errors.IsNotFound(err))
}
