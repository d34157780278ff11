package services

import (
	"context"
	"fmt"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/errors"
	"github.com/ticketdesk/backend/pkg/rules"
)

// RuleStore is the automation rule persistence surface
type RuleStore interface {
	Insert(ctx context.Context, rule *rules.Rule) error
	Update(ctx context.Context, rule *rules.Rule) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*rules.Rule, error)
	FindAll(ctx context.Context, ruleType *constants.RuleType, isActive *bool, limit, offset int) ([]*rules.Rule, error)
	FindActiveByType(ctx context.Context, ruleType constants.RuleType) ([]*rules.Rule, error)
}

// RuleService manages automation rule CRUD on top of the model-level
// validation in pkg/rules.
type RuleService struct {
	repo RuleStore
}

func NewRuleService(repo RuleStore) *RuleService {
	return &RuleService{repo: repo}
}

// List returns rules matching the optional type and active filters,
// in priority order. Page is 1-based.
func (s *RuleService) List(ctx context.Context, ruleType *constants.RuleType, isActive *bool, page, pageSize int) ([]*rules.Rule, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}
	list, err := s.repo.FindAll(ctx, ruleType, isActive, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, errors.NewInternalError("failed to list automation rules", err)
	}
	return list, nil
}

func (s *RuleService) Get(ctx context.Context, id int64) (*rules.Rule, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load automation rule", err)
	}
	if rule == nil {
		return nil, errors.NewNotFoundError("automation rule", fmt.Sprintf("%d", id))
	}
	return rule, nil
}

func (s *RuleService) Create(ctx context.Context, rule *rules.Rule) error {
	if err := canonicalizeRule(rule); err != nil {
		return err
	}
	rule.IsActive = true
	return s.repo.Insert(ctx, rule)
}

func (s *RuleService) Update(ctx context.Context, id int64, rule *rules.Rule) (*rules.Rule, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load automation rule", err)
	}
	if existing == nil {
		return nil, errors.NewNotFoundError("automation rule", fmt.Sprintf("%d", id))
	}

	rule.ID = id
	if err := canonicalizeRule(rule); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, errors.NewInternalError("failed to update automation rule", err)
	}
	return rule, nil
}

func (s *RuleService) SetActive(ctx context.Context, id int64, active bool) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.NewInternalError("failed to load automation rule", err)
	}
	if existing == nil {
		return errors.NewNotFoundError("automation rule", fmt.Sprintf("%d", id))
	}
	return s.repo.SetActive(ctx, id, active)
}

func (s *RuleService) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.NewInternalError("failed to load automation rule", err)
	}
	if existing == nil {
		return errors.NewNotFoundError("automation rule", fmt.Sprintf("%d", id))
	}
	return s.repo.Delete(ctx, id)
}

// canonicalizeRule runs a submitted rule through the editing model so
// stored rules carry the same shape an interactive edit would produce:
// an empty conditions object collapses to nil, absent actions become an
// empty object, and the type-level invariants are checked before write.
func canonicalizeRule(rule *rules.Rule) error {
	ed := rules.NewEditor(*rule)
	if err := ed.Validate(); err != nil {
		return err
	}
	*rule = ed.Rule()
	return nil
}
