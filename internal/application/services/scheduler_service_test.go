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

func newSweepFixture(t *testing.T) (*SchedulerService, *fakeRuleStore, *fakeTicketStore) {
	t.Helper()
	ruleStore := newFakeRuleStore()
	ticketStore := newFakeTicketStore()
	engine := NewRuleEngine(ruleStore, ticketStore)
	scheduler, err := NewSchedulerService(ruleStore, ticketStore, engine)
	require.NoError(t, err)
	return scheduler, ruleStore, ticketStore
}

func TestSweepClosesIdleTickets(t *testing.T) {
	scheduler, ruleStore, ticketStore := newSweepFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	require.NoError(t, ruleStore.Insert(ctx, &rules.Rule{
		Name:     "Close stale",
		RuleType: constants.RuleTypeAutoClose,
		IsActive: true,
		Actions:  map[string]interface{}{constants.ActionCloseAfterHours: float64(48)},
	}))

	ticketStore.tickets[1] = &models.Ticket{
		ID: 1, Status: constants.TicketStatusOpen,
		LastModifiedDate: now.Add(-72 * time.Hour),
	}
	ticketStore.tickets[2] = &models.Ticket{
		ID: 2, Status: constants.TicketStatusOpen,
		LastModifiedDate: now.Add(-12 * time.Hour),
	}

	closed, err := scheduler.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, []int64{1}, ticketStore.closed)
}

func TestSweepOnlyIfResolvedCountsFromResolution(t *testing.T) {
	scheduler, ruleStore, ticketStore := newSweepFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	require.NoError(t, ruleStore.Insert(ctx, &rules.Rule{
		Name:     "Close resolved",
		RuleType: constants.RuleTypeAutoClose,
		IsActive: true,
		Actions: map[string]interface{}{
			constants.ActionCloseAfterHours: float64(24),
			constants.ActionOnlyIfResolved:  true,
		},
	}))

	resolvedLongAgo := now.Add(-48 * time.Hour)
	resolvedRecently := now.Add(-1 * time.Hour)

	// Idle for days but never resolved: stays open
	ticketStore.tickets[1] = &models.Ticket{
		ID: 1, Status: constants.TicketStatusOpen,
		LastModifiedDate: now.Add(-200 * time.Hour),
	}
	// Resolved past the window: closes even though recently touched
	ticketStore.tickets[2] = &models.Ticket{
		ID: 2, Status: constants.TicketStatusResolved,
		ResolvedDate:     &resolvedLongAgo,
		LastModifiedDate: now.Add(-1 * time.Hour),
	}
	// Resolved inside the window: stays open
	ticketStore.tickets[3] = &models.Ticket{
		ID: 3, Status: constants.TicketStatusResolved,
		ResolvedDate:     &resolvedRecently,
		LastModifiedDate: now.Add(-200 * time.Hour),
	}

	closed, err := scheduler.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, []int64{2}, ticketStore.closed)
}

func TestSweepHonorsRuleConditions(t *testing.T) {
	scheduler, ruleStore, ticketStore := newSweepFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	require.NoError(t, ruleStore.Insert(ctx, &rules.Rule{
		Name:       "Close stale hardware",
		RuleType:   constants.RuleTypeAutoClose,
		IsActive:   true,
		Conditions: map[string]string{"category": "hardware"},
		Actions:    map[string]interface{}{constants.ActionCloseAfterHours: float64(1)},
	}))

	ticketStore.tickets[1] = &models.Ticket{
		ID: 1, Category: "software", Status: constants.TicketStatusOpen,
		LastModifiedDate: now.Add(-100 * time.Hour),
	}

	closed, err := scheduler.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
}

func TestSweepIgnoresNonPositiveWindow(t *testing.T) {
	scheduler, ruleStore, ticketStore := newSweepFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, ruleStore.Insert(ctx, &rules.Rule{
		Name:     "Broken window",
		RuleType: constants.RuleTypeAutoClose,
		IsActive: true,
		Actions:  map[string]interface{}{constants.ActionCloseAfterHours: float64(0)},
	}))

	ticketStore.tickets[1] = &models.Ticket{
		ID: 1, Status: constants.TicketStatusOpen,
		LastModifiedDate: now.Add(-100 * time.Hour),
	}

	closed, err := scheduler.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	scheduler, _, _ := newSweepFixture(t)

	done := make(chan struct{})
	go func() {
		scheduler.Start()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	scheduler.Stop()
	scheduler.Stop() // second call is a no-op

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerRejectsInvalidCronExpression(t *testing.T) {
	t.Setenv("AUTOCLOSE_SCHEDULE", "not a cron expr")

	ruleStore := newFakeRuleStore()
	ticketStore := newFakeTicketStore()
	_, err := NewSchedulerService(ruleStore, ticketStore, NewRuleEngine(ruleStore, ticketStore))
	assert.Error(t, err)
}
