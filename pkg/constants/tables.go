package constants

// Table names
const (
	TableCustomField      = "custom_fields"
	TableCustomFieldValue = "custom_field_values"
	TableAutomationRule   = "automation_rules"
	TableTicket           = "tickets"
	TableUser             = "users"
)

// Common column names shared across tables
const (
	FieldID               = "id"
	FieldName             = "name"
	FieldIsActive         = "is_active"
	FieldCreatedDate      = "created_date"
	FieldLastModifiedDate = "last_modified_date"
)

// custom_fields columns
const (
	FieldLabel            = "label"
	FieldLabelEn          = "label_en"
	FieldFieldType        = "field_type"
	FieldConfig           = "config"
	FieldIsRequired       = "is_required"
	FieldIsVisibleToUser  = "is_visible_to_user"
	FieldIsEditableByUser = "is_editable_by_user"
	FieldDefaultValue     = "default_value"
	FieldDisplayOrder     = "display_order"
	FieldCategory         = "category"
	FieldDepartmentID     = "department_id"
	FieldBranchID         = "branch_id"
)

// custom_field_values columns
const (
	FieldCustomFieldID = "custom_field_id"
	FieldTicketID      = "ticket_id"
	FieldValue         = "value"
)

// automation_rules columns
const (
	FieldDescription = "description"
	FieldRuleType    = "rule_type"
	FieldPriority    = "priority"
	FieldConditions  = "conditions"
	FieldActions     = "actions"
)

// users columns
const (
	FieldEmail        = "email"
	FieldPasswordHash = "password_hash"
	FieldIsAdmin      = "is_admin"
)

// tickets columns
const (
	FieldStatus         = "status"
	FieldAssignedUserID = "assigned_user_id"
	FieldResolvedDate   = "resolved_date"
	FieldClosedDate     = "closed_date"
)
