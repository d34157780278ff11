package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/models"
)

// FieldDefRepository persists custom field definitions. The config
// column stores the type-specific FieldConfig as JSON text, NULL when
// the type carries no config.
type FieldDefRepository struct {
	db *sql.DB
}

func NewFieldDefRepository(db *sql.DB) *FieldDefRepository {
	return &FieldDefRepository{db: db}
}

var fieldDefColumns = fmt.Sprintf(
	"%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
	constants.FieldID, constants.FieldName, constants.FieldLabel, constants.FieldLabelEn,
	constants.FieldFieldType, constants.FieldConfig, constants.FieldIsRequired,
	constants.FieldIsVisibleToUser, constants.FieldIsEditableByUser, constants.FieldDefaultValue,
	constants.FieldDisplayOrder, constants.FieldCategory, constants.FieldDepartmentID,
	constants.FieldBranchID, constants.FieldIsActive, constants.FieldCreatedDate,
	constants.FieldLastModifiedDate,
)

// Insert stores a new definition and sets its generated ID
func (r *FieldDefRepository) Insert(ctx context.Context, def *models.FieldDefinition) error {
	configJSON, err := marshalConfig(def.Config)
	if err != nil {
		return err
	}

	now := time.Now()
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableCustomField,
		constants.FieldName, constants.FieldLabel, constants.FieldLabelEn,
		constants.FieldFieldType, constants.FieldConfig, constants.FieldIsRequired,
		constants.FieldIsVisibleToUser, constants.FieldIsEditableByUser, constants.FieldDefaultValue,
		constants.FieldDisplayOrder, constants.FieldCategory, constants.FieldDepartmentID,
		constants.FieldBranchID, constants.FieldIsActive, constants.FieldCreatedDate,
		constants.FieldLastModifiedDate,
	)

	result, err := r.db.ExecContext(ctx, query,
		def.Name, def.Label, def.LabelEn, string(def.FieldType), configJSON,
		def.IsRequired, def.IsVisibleToUser, def.IsEditableByUser, def.DefaultValue,
		def.DisplayOrder, def.Category, def.DepartmentID, def.BranchID, def.IsActive,
		now, now,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	def.ID = id
	def.CreatedDate = now
	def.LastModifiedDate = now
	return nil
}

// Update overwrites the mutable columns of an existing definition.
// Name and field_type are write-once and never touched here.
func (r *FieldDefRepository) Update(ctx context.Context, def *models.FieldDefinition) error {
	configJSON, err := marshalConfig(def.Config)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?
		WHERE %s = ?`,
		constants.TableCustomField,
		constants.FieldLabel, constants.FieldLabelEn, constants.FieldConfig,
		constants.FieldIsRequired, constants.FieldIsVisibleToUser, constants.FieldIsEditableByUser,
		constants.FieldDefaultValue, constants.FieldDisplayOrder, constants.FieldCategory,
		constants.FieldDepartmentID, constants.FieldBranchID, constants.FieldIsActive,
		constants.FieldLastModifiedDate,
		constants.FieldID,
	)

	_, err = r.db.ExecContext(ctx, query,
		def.Label, def.LabelEn, configJSON, def.IsRequired, def.IsVisibleToUser,
		def.IsEditableByUser, def.DefaultValue, def.DisplayOrder, def.Category,
		def.DepartmentID, def.BranchID, def.IsActive, time.Now(),
		def.ID,
	)
	return err
}

// SoftDelete deactivates a definition; historical values stay readable
func (r *FieldDefRepository) SoftDelete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("UPDATE %s SET %s = FALSE, %s = ? WHERE %s = ?",
		constants.TableCustomField, constants.FieldIsActive, constants.FieldLastModifiedDate, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

// FindByID returns one definition or nil when absent
func (r *FieldDefRepository) FindByID(ctx context.Context, id int64) (*models.FieldDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		fieldDefColumns, constants.TableCustomField, constants.FieldID)

	def, err := scanFieldDef(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return def, err
}

// ExistsByName reports whether a definition with the given internal name exists
func (r *FieldDefRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)",
		constants.TableCustomField, constants.FieldName)
	err := r.db.QueryRowContext(ctx, query, name).Scan(&exists)
	return exists, err
}

// FindApplicable returns the definitions applicable to a scope. All
// filters are AND-combined; definitions with a NULL scope member match
// everything along that axis. Ordering is display_order with creation
// order breaking ties, so the in-memory sort stays stable.
func (r *FieldDefRepository) FindApplicable(ctx context.Context, scope models.FieldScope, isActive *bool, limit, offset int) ([]*models.FieldDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1", fieldDefColumns, constants.TableCustomField)
	args := []interface{}{}

	if scope.Category != nil {
		query += fmt.Sprintf(" AND (%s IS NULL OR %s = ?)", constants.FieldCategory, constants.FieldCategory)
		args = append(args, *scope.Category)
	}
	if scope.DepartmentID != nil {
		query += fmt.Sprintf(" AND (%s IS NULL OR %s = ?)", constants.FieldDepartmentID, constants.FieldDepartmentID)
		args = append(args, *scope.DepartmentID)
	}
	if scope.BranchID != nil {
		query += fmt.Sprintf(" AND (%s IS NULL OR %s = ?)", constants.FieldBranchID, constants.FieldBranchID)
		args = append(args, *scope.BranchID)
	}
	if isActive != nil {
		query += fmt.Sprintf(" AND %s = ?", constants.FieldIsActive)
		args = append(args, *isActive)
	}

	query += fmt.Sprintf(" ORDER BY %s, %s", constants.FieldDisplayOrder, constants.FieldID)
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defs := []*models.FieldDefinition{}
	for rows.Next() {
		def, err := scanFieldDef(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFieldDef(row rowScanner) (*models.FieldDefinition, error) {
	var def models.FieldDefinition
	var fieldType string
	var configJSON sql.NullString

	err := row.Scan(
		&def.ID, &def.Name, &def.Label, &def.LabelEn, &fieldType, &configJSON,
		&def.IsRequired, &def.IsVisibleToUser, &def.IsEditableByUser, &def.DefaultValue,
		&def.DisplayOrder, &def.Category, &def.DepartmentID, &def.BranchID, &def.IsActive,
		&def.CreatedDate, &def.LastModifiedDate,
	)
	if err != nil {
		return nil, err
	}

	def.FieldType = constants.FieldType(fieldType)
	if configJSON.Valid && configJSON.String != "" {
		var cfg models.FieldConfig
		if err := json.Unmarshal([]byte(configJSON.String), &cfg); err != nil {
			return nil, fmt.Errorf("corrupt config for field %d: %w", def.ID, err)
		}
		def.Config = &cfg
	}
	return &def, nil
}

func marshalConfig(cfg *models.FieldConfig) (interface{}, error) {
	if cfg.IsEmpty() {
		return nil, nil
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
