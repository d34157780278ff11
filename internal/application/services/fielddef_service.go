package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/errors"
	"github.com/ticketdesk/backend/pkg/fieldtypes"
	"github.com/ticketdesk/backend/pkg/models"
)

// FieldDefStore is the persistence surface the field services consume
type FieldDefStore interface {
	Insert(ctx context.Context, def *models.FieldDefinition) error
	Update(ctx context.Context, def *models.FieldDefinition) error
	SoftDelete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.FieldDefinition, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindApplicable(ctx context.Context, scope models.FieldScope, isActive *bool, limit, offset int) ([]*models.FieldDefinition, error)
}

// FieldDefService manages custom field definitions. Name and field_type
// are write-once: changing either after creation would orphan stored
// values under the codec contract.
type FieldDefService struct {
	repo FieldDefStore
}

func NewFieldDefService(repo FieldDefStore) *FieldDefService {
	return &FieldDefService{repo: repo}
}

// Allow alphanumeric and underscores, must start with letter/underscore
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Create validates and stores a new field definition
func (s *FieldDefService) Create(ctx context.Context, def *models.FieldDefinition) error {
	if def.Name == "" {
		return errors.NewValidationError("name", "field name is required")
	}
	if !validFieldName.MatchString(def.Name) {
		return errors.NewValidationError("name",
			fmt.Sprintf("invalid field name '%s': must start with letter or underscore and contain only alphanumeric characters", def.Name))
	}
	if def.Label == "" {
		return errors.NewValidationError("label", "field label is required")
	}
	if !constants.IsValidFieldType(string(def.FieldType)) {
		return errors.NewValidationError("field_type", fmt.Sprintf("unknown field type '%s'", def.FieldType))
	}

	if err := normalizeConfig(def); err != nil {
		return err
	}

	exists, err := s.repo.ExistsByName(ctx, def.Name)
	if err != nil {
		return errors.NewInternalError("failed to check field name", err)
	}
	if exists {
		return errors.NewConflictError("custom field", "name", def.Name)
	}

	def.IsActive = true
	return s.repo.Insert(ctx, def)
}

// Update applies a partial update to an existing definition. Only
// fields present in the body are touched; attempts to change name or
// field_type are rejected, not silently ignored.
func (s *FieldDefService) Update(ctx context.Context, id int64, updates *models.FieldDefinitionUpdate) (*models.FieldDefinition, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load field definition", err)
	}
	if existing == nil {
		return nil, errors.NewNotFoundError("custom field", fmt.Sprintf("%d", id))
	}

	if updates.Name != nil && *updates.Name != existing.Name {
		return nil, errors.NewValidationError("name", "field name cannot be changed after creation")
	}
	if updates.FieldType != nil && *updates.FieldType != existing.FieldType {
		return nil, errors.NewValidationError("field_type", "field type cannot be changed once values may exist")
	}

	if updates.Label != nil {
		if *updates.Label == "" {
			return nil, errors.NewValidationError("label", "field label is required")
		}
		existing.Label = *updates.Label
	}
	if updates.LabelEn != nil {
		existing.LabelEn = *updates.LabelEn
	}
	if updates.Config != nil {
		existing.Config = updates.Config
		if err := normalizeConfig(existing); err != nil {
			return nil, err
		}
	}
	if updates.IsRequired != nil {
		existing.IsRequired = *updates.IsRequired
	}
	if updates.IsVisibleToUser != nil {
		existing.IsVisibleToUser = *updates.IsVisibleToUser
	}
	if updates.IsEditableByUser != nil {
		existing.IsEditableByUser = *updates.IsEditableByUser
	}
	if updates.IsActive != nil {
		existing.IsActive = *updates.IsActive
	}
	if updates.DefaultValue != nil {
		existing.DefaultValue = updates.DefaultValue
	}
	if updates.DisplayOrder != nil {
		existing.DisplayOrder = *updates.DisplayOrder
	}
	if updates.Category != nil {
		existing.Category = updates.Category
	}
	if updates.DepartmentID != nil {
		existing.DepartmentID = updates.DepartmentID
	}
	if updates.BranchID != nil {
		existing.BranchID = updates.BranchID
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, errors.NewInternalError("failed to update field definition", err)
	}
	return existing, nil
}

// Deactivate soft-deletes a definition; historical values are retained
func (s *FieldDefService) Deactivate(ctx context.Context, id int64) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.NewInternalError("failed to load field definition", err)
	}
	if existing == nil {
		return errors.NewNotFoundError("custom field", fmt.Sprintf("%d", id))
	}
	return s.repo.SoftDelete(ctx, id)
}

// Get returns one definition
func (s *FieldDefService) Get(ctx context.Context, id int64) (*models.FieldDefinition, error) {
	def, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load field definition", err)
	}
	if def == nil {
		return nil, errors.NewNotFoundError("custom field", fmt.Sprintf("%d", id))
	}
	return def, nil
}

// List returns definitions matching the scope filters, ordered by
// display_order. Page is 1-based.
func (s *FieldDefService) List(ctx context.Context, scope models.FieldScope, isActive *bool, page, pageSize int) ([]*models.FieldDefinition, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}
	defs, err := s.repo.FindApplicable(ctx, scope, isActive, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, errors.NewInternalError("failed to list field definitions", err)
	}
	return defs, nil
}

// normalizeConfig enforces the config rules per field type: choice
// types need at least one option and comma-free option values, number
// keeps only the numeric bounds, everything else carries no config.
// A config left with no data collapses to nil.
func normalizeConfig(def *models.FieldDefinition) error {
	switch fieldtypes.Describe(def.FieldType).ConfigShape {
	case fieldtypes.ConfigShapeOptions:
		if def.Config == nil || len(def.Config.Options) == 0 {
			return errors.NewValidationError("config", fmt.Sprintf("%s fields require at least one option", def.FieldType))
		}
		for _, opt := range def.Config.Options {
			if opt.Value == "" {
				return errors.NewValidationError("config", "option values must not be empty")
			}
			// Stored multiselect values are comma-joined without
			// escaping; a comma inside an option value would corrupt
			// the round-trip of every ticket using it
			if strings.Contains(opt.Value, ",") {
				return errors.NewValidationError("config", fmt.Sprintf("option value '%s' must not contain a comma", opt.Value))
			}
		}
		def.Config.Min = nil
		def.Config.Max = nil
		def.Config.Step = nil

	case fieldtypes.ConfigShapeNumeric:
		if def.Config != nil {
			def.Config.Options = nil
			if def.Config.IsEmpty() {
				def.Config = nil
			}
		}

	default:
		def.Config = nil
	}
	return nil
}
