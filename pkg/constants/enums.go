package constants

// FieldType represents the logical type of a custom field
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextArea    FieldType = "textarea"
	FieldTypeNumber      FieldType = "number"
	FieldTypeDate        FieldType = "date"
	FieldTypeDateTime    FieldType = "datetime"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multiselect"
	FieldTypeURL         FieldType = "url"
	FieldTypeEmail       FieldType = "email"
	FieldTypePhone       FieldType = "phone"
)

// GetAllFieldTypes returns all valid field types as a slice of strings
func GetAllFieldTypes() []string {
	return []string{
		string(FieldTypeText),
		string(FieldTypeTextArea),
		string(FieldTypeNumber),
		string(FieldTypeDate),
		string(FieldTypeDateTime),
		string(FieldTypeBoolean),
		string(FieldTypeSelect),
		string(FieldTypeMultiSelect),
		string(FieldTypeURL),
		string(FieldTypeEmail),
		string(FieldTypePhone),
	}
}

// IsValidFieldType reports whether name is one of the known field types
func IsValidFieldType(name string) bool {
	for _, t := range GetAllFieldTypes() {
		if t == name {
			return true
		}
	}
	return false
}

// RuleType tags an automation rule and determines its legal action keys
type RuleType string

const (
	RuleTypeAutoAssign RuleType = "auto_assign"
	RuleTypeAutoClose  RuleType = "auto_close"
	RuleTypeAutoNotify RuleType = "auto_notify"
)

// GetAllRuleTypes returns all valid rule types as strings
func GetAllRuleTypes() []string {
	return []string{
		string(RuleTypeAutoAssign),
		string(RuleTypeAutoClose),
		string(RuleTypeAutoNotify),
	}
}

// IsValidRuleType reports whether name is one of the known rule types
func IsValidRuleType(name string) bool {
	for _, t := range GetAllRuleTypes() {
		if t == name {
			return true
		}
	}
	return false
}

// TicketStatus represents the lifecycle state of a ticket
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Action keys, grouped by the rule type they belong to
const (
	ActionAssignToUserID       = "assign_to_user_id"
	ActionAssignToDepartmentID = "assign_to_department_id"
	ActionAssignToRole         = "assign_to_role"
	ActionRoundRobin           = "round_robin"

	ActionCloseAfterHours = "close_after_hours"
	ActionOnlyIfResolved  = "only_if_resolved"

	ActionNotifyUsers = "notify_users"
	ActionNotifyRoles = "notify_roles"
	ActionMessage     = "message"
)

// Condition keys accepted by the rule engine. Absence of a key means
// "unconstrained on that axis".
const (
	ConditionPriority     = "priority"
	ConditionCategory     = "category"
	ConditionStatus       = "status"
	ConditionBranchID     = "branch_id"
	ConditionDepartmentID = "department_id"
	ConditionIdleMinutes  = "idle_minutes"
)
