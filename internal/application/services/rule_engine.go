package services

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/models"
	"github.com/ticketdesk/backend/pkg/rules"
)

// TicketStore is the ticket surface the automation side needs
type TicketStore interface {
	FindByID(ctx context.Context, id int64) (*models.Ticket, error)
	FindOpenForSweep(ctx context.Context) ([]*models.Ticket, error)
	Close(ctx context.Context, id int64) error
	Assign(ctx context.Context, id int64, userID, departmentID *int64) error
}

// Assignment is the resolved outcome of an auto_assign rule
type Assignment struct {
	RuleID       int64
	UserID       *int64
	DepartmentID *int64
	Role         string
	RoundRobin   bool
}

// RuleEngine evaluates rule conditions against tickets and applies
// assignment outcomes. Condition maps are sparse: every present entry
// must hold, absent keys are unconstrained.
type RuleEngine struct {
	ruleRepo   RuleStore
	ticketRepo TicketStore
}

func NewRuleEngine(ruleRepo RuleStore, ticketRepo TicketStore) *RuleEngine {
	return &RuleEngine{ruleRepo: ruleRepo, ticketRepo: ticketRepo}
}

// Matches reports whether every condition on the rule holds for the
// ticket at the given instant. Entries with empty values and keys the
// engine does not understand are skipped rather than failed, so rules
// saved by a newer editor do not silently disable older deployments.
func (e *RuleEngine) Matches(rule *rules.Rule, ticket *models.Ticket, now time.Time) bool {
	for key, want := range rule.Conditions {
		if want == "" {
			continue
		}
		switch key {
		case constants.ConditionPriority:
			if ticket.Priority != want {
				return false
			}
		case constants.ConditionCategory:
			if ticket.Category != want {
				return false
			}
		case constants.ConditionStatus:
			if string(ticket.Status) != want {
				return false
			}
		case constants.ConditionBranchID:
			if !idMatches(ticket.BranchID, want) {
				return false
			}
		case constants.ConditionDepartmentID:
			if !idMatches(ticket.DepartmentID, want) {
				return false
			}
		case constants.ConditionIdleMinutes:
			minutes, err := strconv.Atoi(want)
			if err != nil || minutes < 0 {
				return false
			}
			if now.Sub(ticket.LastModifiedDate) < time.Duration(minutes)*time.Minute {
				return false
			}
		default:
			log.Printf("⚠️ Ignoring unknown condition '%s' on rule %d", key, rule.ID)
		}
	}
	return true
}

func idMatches(have *int64, want string) bool {
	id, err := strconv.ParseInt(want, 10, 64)
	if err != nil {
		return false
	}
	return have != nil && *have == id
}

// AssignmentFor finds the first active auto_assign rule matching the
// ticket, in priority order, and returns its resolved target. Returns
// nil when no rule matches.
func (e *RuleEngine) AssignmentFor(ctx context.Context, ticket *models.Ticket, now time.Time) (*Assignment, error) {
	active, err := e.ruleRepo.FindActiveByType(ctx, constants.RuleTypeAutoAssign)
	if err != nil {
		return nil, err
	}
	for _, rule := range active {
		if !e.Matches(rule, ticket, now) {
			continue
		}
		a := &Assignment{RuleID: rule.ID}
		if v, ok := rules.AsInt(rule.Actions[constants.ActionAssignToUserID]); ok {
			id := int64(v)
			a.UserID = &id
		}
		if v, ok := rules.AsInt(rule.Actions[constants.ActionAssignToDepartmentID]); ok {
			id := int64(v)
			a.DepartmentID = &id
		}
		if v, ok := rule.Actions[constants.ActionAssignToRole].(string); ok {
			a.Role = v
		}
		if v, ok := rules.AsBool(rule.Actions[constants.ActionRoundRobin]); ok {
			a.RoundRobin = v
		}
		return a, nil
	}
	return nil, nil
}

// ApplyIntakeAssignment runs auto-assignment for a newly created or
// reopened ticket and persists the outcome when a rule matched.
func (e *RuleEngine) ApplyIntakeAssignment(ctx context.Context, ticketID int64) (*Assignment, error) {
	ticket, err := e.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, nil
	}
	assignment, err := e.AssignmentFor(ctx, ticket, time.Now())
	if err != nil || assignment == nil {
		return nil, err
	}
	if assignment.UserID == nil && assignment.DepartmentID == nil {
		// Role and round-robin targets are resolved by the dispatch
		// layer, nothing to persist here
		return assignment, nil
	}
	if err := e.ticketRepo.Assign(ctx, ticketID, assignment.UserID, assignment.DepartmentID); err != nil {
		return nil, err
	}
	log.Printf("✅ Ticket %d auto-assigned by rule %d", ticketID, assignment.RuleID)
	return assignment, nil
}
