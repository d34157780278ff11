package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/rules"
)

// RuleRepository persists automation rules. Conditions and actions are
// stored as JSON text; a nil conditions map is stored as SQL NULL, and
// NULL reads back as nil so "no constraints" keeps one representation.
type RuleRepository struct {
	db *sql.DB
}

func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

var ruleColumns = fmt.Sprintf(
	"%s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
	constants.FieldID, constants.FieldName, constants.FieldDescription,
	constants.FieldRuleType, constants.FieldPriority, constants.FieldConditions,
	constants.FieldActions, constants.FieldIsActive, constants.FieldCreatedDate,
	constants.FieldLastModifiedDate,
)

// Insert stores a new rule and sets its generated ID
func (r *RuleRepository) Insert(ctx context.Context, rule *rules.Rule) error {
	conditionsJSON, actionsJSON, err := marshalRuleMaps(rule)
	if err != nil {
		return err
	}

	now := time.Now()
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableAutomationRule,
		constants.FieldName, constants.FieldDescription, constants.FieldRuleType,
		constants.FieldPriority, constants.FieldConditions, constants.FieldActions,
		constants.FieldIsActive, constants.FieldCreatedDate, constants.FieldLastModifiedDate,
	)

	result, err := r.db.ExecContext(ctx, query,
		rule.Name, rule.Description, string(rule.RuleType), rule.Priority,
		conditionsJSON, actionsJSON, rule.IsActive, now, now,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rule.ID = id
	rule.CreatedDate = now
	rule.LastModifiedDate = now
	return nil
}

// Update overwrites the full rule body
func (r *RuleRepository) Update(ctx context.Context, rule *rules.Rule) error {
	conditionsJSON, actionsJSON, err := marshalRuleMaps(rule)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?
		WHERE %s = ?`,
		constants.TableAutomationRule,
		constants.FieldName, constants.FieldDescription, constants.FieldRuleType,
		constants.FieldPriority, constants.FieldConditions, constants.FieldActions,
		constants.FieldIsActive, constants.FieldLastModifiedDate,
		constants.FieldID,
	)

	_, err = r.db.ExecContext(ctx, query,
		rule.Name, rule.Description, string(rule.RuleType), rule.Priority,
		conditionsJSON, actionsJSON, rule.IsActive, time.Now(),
		rule.ID,
	)
	return err
}

// SetActive flips the pause/resume flag without touching the rule body
func (r *RuleRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := fmt.Sprintf("UPDATE %s SET %s = ?, %s = ? WHERE %s = ?",
		constants.TableAutomationRule, constants.FieldIsActive,
		constants.FieldLastModifiedDate, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	return err
}

// Delete removes a rule
func (r *RuleRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?",
		constants.TableAutomationRule, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// FindByID returns one rule or nil when absent
func (r *RuleRepository) FindByID(ctx context.Context, id int64) (*rules.Rule, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		ruleColumns, constants.TableAutomationRule, constants.FieldID)

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rule, err
}

// FindAll lists rules, optionally filtered by type and active flag,
// ordered by priority then creation order
func (r *RuleRepository) FindAll(ctx context.Context, ruleType *constants.RuleType, isActive *bool, limit, offset int) ([]*rules.Rule, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1", ruleColumns, constants.TableAutomationRule)
	args := []interface{}{}

	if ruleType != nil {
		query += fmt.Sprintf(" AND %s = ?", constants.FieldRuleType)
		args = append(args, string(*ruleType))
	}
	if isActive != nil {
		query += fmt.Sprintf(" AND %s = ?", constants.FieldIsActive)
		args = append(args, *isActive)
	}

	query += fmt.Sprintf(" ORDER BY %s, %s", constants.FieldPriority, constants.FieldID)
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*rules.Rule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// FindActiveByType returns active rules of one type in priority order
func (r *RuleRepository) FindActiveByType(ctx context.Context, ruleType constants.RuleType) ([]*rules.Rule, error) {
	active := true
	return r.FindAll(ctx, &ruleType, &active, 0, 0)
}

func scanRule(row rowScanner) (*rules.Rule, error) {
	var rule rules.Rule
	var ruleType string
	var conditionsJSON, actionsJSON sql.NullString

	err := row.Scan(
		&rule.ID, &rule.Name, &rule.Description, &ruleType, &rule.Priority,
		&conditionsJSON, &actionsJSON, &rule.IsActive,
		&rule.CreatedDate, &rule.LastModifiedDate,
	)
	if err != nil {
		return nil, err
	}

	rule.RuleType = constants.RuleType(ruleType)
	if conditionsJSON.Valid && conditionsJSON.String != "" {
		if err := json.Unmarshal([]byte(conditionsJSON.String), &rule.Conditions); err != nil {
			return nil, fmt.Errorf("corrupt conditions for rule %d: %w", rule.ID, err)
		}
	}
	if len(rule.Conditions) == 0 {
		rule.Conditions = nil
	}

	rule.Actions = map[string]interface{}{}
	if actionsJSON.Valid && actionsJSON.String != "" {
		if err := json.Unmarshal([]byte(actionsJSON.String), &rule.Actions); err != nil {
			return nil, fmt.Errorf("corrupt actions for rule %d: %w", rule.ID, err)
		}
	}
	return &rule, nil
}

func marshalRuleMaps(rule *rules.Rule) (interface{}, interface{}, error) {
	var conditionsJSON interface{}
	if len(rule.Conditions) > 0 {
		data, err := json.Marshal(rule.Conditions)
		if err != nil {
			return nil, nil, err
		}
		conditionsJSON = string(data)
	}

	actions := rule.Actions
	if actions == nil {
		actions = map[string]interface{}{}
	}
	data, err := json.Marshal(actions)
	if err != nil {
		return nil, nil, err
	}
	return conditionsJSON, string(data), nil
}
