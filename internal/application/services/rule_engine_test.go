package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/models"
	"github.com/ticketdesk/backend/pkg/rules"
)

type fakeRuleStore struct {
	rules  map[int64]*rules.Rule
	nextID int64
}

func newFakeRuleStore() *fakeRuleStore {
	return &fakeRuleStore{rules: make(map[int64]*rules.Rule), nextID: 1}
}

func (f *fakeRuleStore) Insert(_ context.Context, rule *rules.Rule) error {
	rule.ID = f.nextID
	f.nextID++
	stored := *rule
	f.rules[rule.ID] = &stored
	return nil
}

func (f *fakeRuleStore) Update(_ context.Context, rule *rules.Rule) error {
	stored := *rule
	f.rules[rule.ID] = &stored
	return nil
}

func (f *fakeRuleStore) SetActive(_ context.Context, id int64, active bool) error {
	if rule, ok := f.rules[id]; ok {
		rule.IsActive = active
	}
	return nil
}

func (f *fakeRuleStore) Delete(_ context.Context, id int64) error {
	delete(f.rules, id)
	return nil
}

func (f *fakeRuleStore) FindByID(_ context.Context, id int64) (*rules.Rule, error) {
	rule, ok := f.rules[id]
	if !ok {
		return nil, nil
	}
	copied := *rule
	return &copied, nil
}

func (f *fakeRuleStore) FindAll(_ context.Context, ruleType *constants.RuleType, isActive *bool, limit, offset int) ([]*rules.Rule, error) {
	var out []*rules.Rule
	for id := int64(1); id < f.nextID; id++ {
		rule, ok := f.rules[id]
		if !ok {
			continue
		}
		if ruleType != nil && rule.RuleType != *ruleType {
			continue
		}
		if isActive != nil && rule.IsActive != *isActive {
			continue
		}
		copied := *rule
		out = append(out, &copied)
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRuleStore) FindActiveByType(_ context.Context, ruleType constants.RuleType) ([]*rules.Rule, error) {
	var out []*rules.Rule
	for id := int64(1); id < f.nextID; id++ {
		rule, ok := f.rules[id]
		if !ok || !rule.IsActive || rule.RuleType != ruleType {
			continue
		}
		copied := *rule
		out = append(out, &copied)
	}
	// fake store: insertion order stands in for priority order
	return out, nil
}

type fakeTicketStore struct {
	tickets  map[int64]*models.Ticket
	closed   []int64
	assigned map[int64][2]*int64
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{
		tickets:  make(map[int64]*models.Ticket),
		assigned: make(map[int64][2]*int64),
	}
}

func (f *fakeTicketStore) FindByID(_ context.Context, id int64) (*models.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, nil
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketStore) FindOpenForSweep(_ context.Context) ([]*models.Ticket, error) {
	var out []*models.Ticket
	for _, ticket := range f.tickets {
		if ticket.Status == constants.TicketStatusClosed {
			continue
		}
		copied := *ticket
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeTicketStore) Close(_ context.Context, id int64) error {
	f.closed = append(f.closed, id)
	if ticket, ok := f.tickets[id]; ok {
		ticket.Status = constants.TicketStatusClosed
	}
	return nil
}

func (f *fakeTicketStore) Assign(_ context.Context, id int64, userID, departmentID *int64) error {
	f.assigned[id] = [2]*int64{userID, departmentID}
	return nil
}

func i64(v int64) *int64 { return &v }

func TestEngineMatchesSparseConditions(t *testing.T) {
	engine := NewRuleEngine(newFakeRuleStore(), newFakeTicketStore())
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	ticket := &models.Ticket{
		ID:               1,
		Priority:         "high",
		Category:         "vpn",
		Status:           constants.TicketStatusOpen,
		BranchID:         i64(3),
		LastModifiedDate: now.Add(-90 * time.Minute),
	}

	cases := []struct {
		name       string
		conditions map[string]string
		want       bool
	}{
		{"nil conditions match everything", nil, true},
		{"single match", map[string]string{"priority": "high"}, true},
		{"single miss", map[string]string{"priority": "low"}, false},
		{"all must hold", map[string]string{"priority": "high", "category": "hardware"}, false},
		{"branch id match", map[string]string{"branch_id": "3"}, true},
		{"branch id miss", map[string]string{"branch_id": "4"}, false},
		{"idle elapsed", map[string]string{"idle_minutes": "60"}, true},
		{"idle not elapsed", map[string]string{"idle_minutes": "120"}, false},
		{"empty value skipped", map[string]string{"priority": ""}, true},
		{"unknown key skipped", map[string]string{"moon_phase": "full"}, true},
		{"unparseable id never matches", map[string]string{"branch_id": "abc"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := &rules.Rule{ID: 1, Conditions: tc.conditions}
			assert.Equal(t, tc.want, engine.Matches(rule, ticket, now))
		})
	}
}

func TestEngineConditionOnUnsetTicketScope(t *testing.T) {
	engine := NewRuleEngine(newFakeRuleStore(), newFakeTicketStore())
	ticket := &models.Ticket{ID: 2, Priority: "low"}

	rule := &rules.Rule{Conditions: map[string]string{"department_id": "5"}}
	assert.False(t, engine.Matches(rule, ticket, time.Now()),
		"a ticket without a department cannot satisfy a department condition")
}

func TestEngineAssignmentForFirstMatchWins(t *testing.T) {
	ruleStore := newFakeRuleStore()
	engine := NewRuleEngine(ruleStore, newFakeTicketStore())
	ctx := context.Background()

	require.NoError(t, ruleStore.Insert(ctx, &rules.Rule{
		Name:       "VPN to network team",
		RuleType:   constants.RuleTypeAutoAssign,
		IsActive:   true,
		Conditions: map[string]string{"category": "vpn"},
		// float64 values mirror decoded JSON
		Actions: map[string]interface{}{constants.ActionAssignToDepartmentID: float64(3)},
	}))
	require.NoError(t, ruleStore.Insert(ctx, &rules.Rule{
		Name:     "Catch-all to triage",
		RuleType: constants.RuleTypeAutoAssign,
		IsActive: true,
		Actions:  map[string]interface{}{constants.ActionAssignToUserID: float64(9)},
	}))

	ticket := &models.Ticket{ID: 1, Category: "vpn"}
	a, err := engine.AssignmentFor(ctx, ticket, time.Now())
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, int64(1), a.RuleID)
	assert.Equal(t, int64(3), *a.DepartmentID)
	assert.Nil(t, a.UserID)

	ticket = &models.Ticket{ID: 2, Category: "hardware"}
	a, err = engine.AssignmentFor(ctx, ticket, time.Now())
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, int64(9), *a.UserID)
}

func TestEngineAssignmentForSkipsInactive(t *testing.T) {
	ruleStore := newFakeRuleStore()
	engine := NewRuleEngine(ruleStore, newFakeTicketStore())
	ctx := context.Background()

	require.NoError(t, ruleStore.Insert(ctx, &rules.Rule{
		Name:     "Disabled",
		RuleType: constants.RuleTypeAutoAssign,
		IsActive: false,
		Actions:  map[string]interface{}{constants.ActionAssignToUserID: float64(9)},
	}))

	a, err := engine.AssignmentFor(ctx, &models.Ticket{ID: 1}, time.Now())
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestEngineApplyIntakeAssignmentPersists(t *testing.T) {
	ruleStore := newFakeRuleStore()
	ticketStore := newFakeTicketStore()
	engine := NewRuleEngine(ruleStore, ticketStore)
	ctx := context.Background()

	ticketStore.tickets[7] = &models.Ticket{ID: 7, Category: "vpn", Status: constants.TicketStatusOpen}
	require.NoError(t, ruleStore.Insert(ctx, &rules.Rule{
		Name:       "VPN",
		RuleType:   constants.RuleTypeAutoAssign,
		IsActive:   true,
		Conditions: map[string]string{"category": "vpn"},
		Actions:    map[string]interface{}{constants.ActionAssignToUserID: float64(4)},
	}))

	a, err := engine.ApplyIntakeAssignment(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, a)

	target, ok := ticketStore.assigned[7]
	require.True(t, ok)
	assert.Equal(t, int64(4), *target[0])
	assert.Nil(t, target[1])
}

func TestEngineApplyIntakeRoleTargetNotPersisted(t *testing.T) {
	ruleStore := newFakeRuleStore()
	ticketStore := newFakeTicketStore()
	engine := NewRuleEngine(ruleStore, ticketStore)
	ctx := context.Background()

	ticketStore.tickets[7] = &models.Ticket{ID: 7, Status: constants.TicketStatusOpen}
	require.NoError(t, ruleStore.Insert(ctx, &rules.Rule{
		Name:     "Role dispatch",
		RuleType: constants.RuleTypeAutoAssign,
		IsActive: true,
		Actions:  map[string]interface{}{constants.ActionAssignToRole: "supervisor"},
	}))

	a, err := engine.ApplyIntakeAssignment(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "supervisor", a.Role)
	assert.Empty(t, ticketStore.assigned)
}
