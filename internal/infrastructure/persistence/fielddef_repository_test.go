package persistence

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/models"
)

func fieldDefRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "label", "label_en", "field_type", "config",
		"is_required", "is_visible_to_user", "is_editable_by_user", "default_value",
		"display_order", "category", "department_id", "branch_id", "is_active",
		"created_date", "last_modified_date",
	})
}

func TestFieldDefRepository_FindByID_DecodesConfig(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFieldDefRepository(db)
	now := time.Now()

	configJSON := `{"options":[{"value":"critical","label":"Critical"},{"value":"high","label":"High"}]}`
	rows := fieldDefRows().AddRow(
		7, "priority", "Priority", "Priority", "select", configJSON,
		true, true, true, nil, 10, nil, nil, nil, true, now, now,
	)

	mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf("FROM %s WHERE %s = ?", constants.TableCustomField, constants.FieldID))).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	def, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, constants.FieldTypeSelect, def.FieldType)
	require.NotNil(t, def.Config)
	require.Len(t, def.Config.Options, 2)
	assert.Equal(t, "Critical", def.Config.Options[0].Label)
}

func TestFieldDefRepository_FindByID_NotFoundReturnsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFieldDefRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf("FROM %s WHERE %s = ?", constants.TableCustomField, constants.FieldID))).
		WithArgs(int64(99)).
		WillReturnRows(fieldDefRows())

	def, err := repo.FindByID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, def)
}

func TestFieldDefRepository_FindApplicable_NullScopedMatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFieldDefRepository(db)
	now := time.Now()

	// A null-scoped definition matches every category; the scope clause
	// must express that with IS NULL OR equality
	rows := fieldDefRows().AddRow(
		1, "asset_tag", "Asset Tag", "", "text", nil,
		false, true, true, nil, 1, nil, nil, nil, true, now, now,
	)

	mock.ExpectQuery(`FROM custom_fields WHERE 1=1 AND \(category IS NULL OR category = \?\) AND is_active = \? ORDER BY display_order, id`).
		WithArgs("hardware", true).
		WillReturnRows(rows)

	category := "hardware"
	active := true
	defs, err := repo.FindApplicable(context.Background(), models.FieldScope{Category: &category}, &active, 0, 0)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "asset_tag", defs[0].Name)
	assert.Nil(t, defs[0].Config)
}

func TestFieldDefRepository_ExistsByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFieldDefRepository(db)

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)", constants.TableCustomField, constants.FieldName)
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("priority").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByName(context.Background(), "priority")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestFieldDefRepository_InsertStoresNullConfigWhenEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFieldDefRepository(db)

	mock.ExpectExec(fmt.Sprintf("INSERT INTO %s", constants.TableCustomField)).
		WithArgs("contact_phone", "Contact Phone", "", "phone", nil,
			false, true, true, nil, 5, nil, nil, nil, true,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(12, 1))

	def := &models.FieldDefinition{
		Name:             "contact_phone",
		Label:            "Contact Phone",
		FieldType:        constants.FieldTypePhone,
		IsVisibleToUser:  true,
		IsEditableByUser: true,
		DisplayOrder:     5,
		IsActive:         true,
	}
	require.NoError(t, repo.Insert(context.Background(), def))
	assert.Equal(t, int64(12), def.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFieldDefRepository_SoftDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFieldDefRepository(db)

	mock.ExpectExec(fmt.Sprintf("UPDATE %s SET %s = FALSE", constants.TableCustomField, constants.FieldIsActive)).
		WithArgs(sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SoftDelete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
