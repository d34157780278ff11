package models

import (
	"time"

	"github.com/ticketdesk/backend/pkg/constants"
)

// FieldType is defined in pkg/constants
type FieldType = constants.FieldType

// RuleType is defined in pkg/constants
type RuleType = constants.RuleType

// FieldOption is one selectable option of a select/multiselect field
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldConfig is the type-specific configuration of a custom field.
// Options is populated for select/multiselect, the numeric bounds for
// number fields. A nil *FieldConfig means the type needs no config.
type FieldConfig struct {
	Options []FieldOption `json:"options,omitempty"`
	Min     *float64      `json:"min,omitempty"`
	Max     *float64      `json:"max,omitempty"`
	Step    *float64      `json:"step,omitempty"`
}

// IsEmpty reports whether the config carries no data at all
func (c *FieldConfig) IsEmpty() bool {
	if c == nil {
		return true
	}
	return len(c.Options) == 0 && c.Min == nil && c.Max == nil && c.Step == nil
}

// FieldDefinition describes one custom ticket field.
// Name and FieldType are write-once: editing them after creation would
// orphan stored values, so the service rejects changes to either.
type FieldDefinition struct {
	ID               int64        `json:"id"`
	Name             string       `json:"name" binding:"required"`
	Label            string       `json:"label" binding:"required"`
	LabelEn          string       `json:"label_en,omitempty"`
	FieldType        FieldType    `json:"field_type" binding:"required"`
	Config           *FieldConfig `json:"config,omitempty"`
	IsRequired       bool         `json:"is_required"`
	IsVisibleToUser  bool         `json:"is_visible_to_user"`
	IsEditableByUser bool         `json:"is_editable_by_user"`
	DefaultValue     *string      `json:"default_value,omitempty"`
	DisplayOrder     int          `json:"display_order"`
	Category         *string      `json:"category,omitempty"`
	DepartmentID     *int64       `json:"department_id,omitempty"`
	BranchID         *int64       `json:"branch_id,omitempty"`
	IsActive         bool         `json:"is_active"`
	CreatedDate      time.Time    `json:"created_date,omitempty"`
	LastModifiedDate time.Time    `json:"last_modified_date,omitempty"`

	// Value/ValueID carry the stored value for one entity when the
	// definition is fetched in an entity context. Nil otherwise.
	Value   *string `json:"value,omitempty"`
	ValueID *int64  `json:"value_id,omitempty"`
}

// FieldDefinitionUpdate is a partial update to a definition. Every
// field is a pointer so an absent key is distinguishable from a zero
// value; only present fields are applied. Name and FieldType may be
// sent but only with their current value.
type FieldDefinitionUpdate struct {
	Name             *string      `json:"name"`
	Label            *string      `json:"label"`
	LabelEn          *string      `json:"label_en"`
	FieldType        *FieldType   `json:"field_type"`
	Config           *FieldConfig `json:"config"`
	IsRequired       *bool        `json:"is_required"`
	IsVisibleToUser  *bool        `json:"is_visible_to_user"`
	IsEditableByUser *bool        `json:"is_editable_by_user"`
	DefaultValue     *string      `json:"default_value"`
	DisplayOrder     *int         `json:"display_order"`
	Category         *string      `json:"category"`
	DepartmentID     *int64       `json:"department_id"`
	BranchID         *int64       `json:"branch_id"`
	IsActive         *bool        `json:"is_active"`
}

// FieldValue is one encoded value per (ticket, field definition) pair.
// The value is always a string or null, never structured data.
type FieldValue struct {
	ID               int64     `json:"id"`
	CustomFieldID    int64     `json:"custom_field_id"`
	TicketID         int64     `json:"ticket_id"`
	Value            *string   `json:"value"`
	CreatedDate      time.Time `json:"created_date,omitempty"`
	LastModifiedDate time.Time `json:"last_modified_date,omitempty"`
}

// FieldValueInput is one entry of a batch value save
type FieldValueInput struct {
	CustomFieldID int64   `json:"custom_field_id" binding:"required"`
	Value         *string `json:"value"`
}

// FieldScope is the applicability filter for field definitions.
// Nil members match every definition along that axis.
type FieldScope struct {
	Category     *string
	DepartmentID *int64
	BranchID     *int64
}

// Ticket is the minimal ticket shape the rule engine evaluates against
type Ticket struct {
	ID               int64                  `json:"id"`
	Subject          string                 `json:"subject"`
	Priority         string                 `json:"priority"`
	Category         string                 `json:"category"`
	Status           constants.TicketStatus `json:"status"`
	BranchID         *int64                 `json:"branch_id,omitempty"`
	DepartmentID     *int64                 `json:"department_id,omitempty"`
	AssignedUserID   *int64                 `json:"assigned_user_id,omitempty"`
	ResolvedDate     *time.Time             `json:"resolved_date,omitempty"`
	CreatedDate      time.Time              `json:"created_date"`
	LastModifiedDate time.Time              `json:"last_modified_date"`
}

// SystemUser is a backend user record (auth only; user administration
// lives outside this service)
type SystemUser struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
	IsActive     bool   `json:"is_active"`
}
