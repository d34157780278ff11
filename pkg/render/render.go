// Package render turns a field definition plus its stored value into a
// presentation model the admin UI can draw without duplicating type
// dispatch. Edit mode yields an input widget, read-only mode a formatted
// display. Visibility is a hard gate checked before any dispatch.
package render

import (
	"strings"
	"time"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/fieldtypes"
	"github.com/ticketdesk/backend/pkg/models"
)

// Mode selects between the editable widget and the read-only display
type Mode string

const (
	ModeEdit     Mode = "edit"
	ModeReadOnly Mode = "readOnly"
)

// EmptyPlaceholder is shown when a read-only field has no value and no default
const EmptyPlaceholder = "—"

// Widget is the edit-mode presentation of one field
type Widget struct {
	FieldID   int64                `json:"field_id"`
	Name      string               `json:"name"`
	Label     string               `json:"label"`
	InputKind string               `json:"input_kind"`
	Value     string               `json:"value"`
	Selected  []string             `json:"selected,omitempty"`
	Options   []models.FieldOption `json:"options,omitempty"`
	Required  bool                 `json:"required"`
	Disabled  bool                 `json:"disabled"`
	Min       *float64             `json:"min,omitempty"`
	Max       *float64             `json:"max,omitempty"`
	Step      *float64             `json:"step,omitempty"`
}

// Display is the read-only presentation of one field
type Display struct {
	FieldID int64  `json:"field_id"`
	Name    string `json:"name"`
	Label   string `json:"label"`
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Href    string `json:"href,omitempty"`
}

// Presentation is the rendered form of one field in one mode
type Presentation struct {
	Mode    Mode     `json:"mode"`
	Widget  *Widget  `json:"widget,omitempty"`
	Display *Display `json:"display,omitempty"`
}

// Render produces the presentation for a definition and its current
// encoded value. Returns nil when the field is hidden from users; the
// gate applies in both modes regardless of other flags.
func Render(def *models.FieldDefinition, encoded *string, mode Mode) *Presentation {
	if !def.IsVisibleToUser {
		return nil
	}

	if mode == ModeReadOnly {
		return &Presentation{Mode: mode, Display: renderDisplay(def, encoded)}
	}
	return &Presentation{Mode: ModeEdit, Widget: renderWidget(def, encoded)}
}

// RenderAll renders a hydrated definition list, dropping hidden fields
func RenderAll(defs []*models.FieldDefinition, mode Mode) []*Presentation {
	out := make([]*Presentation, 0, len(defs))
	for _, def := range defs {
		if p := Render(def, def.Value, mode); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// ToggleOption adds or removes one option value from a multiselect's
// encoded value, preserving first-selected-first-kept order for the rest
func ToggleOption(def *models.FieldDefinition, encoded *string, option string) *string {
	selected := fieldtypes.Decode(constants.FieldTypeMultiSelect, def.Config, encoded).([]string)

	next := make([]string, 0, len(selected)+1)
	removed := false
	for _, v := range selected {
		if v == option {
			removed = true
			continue
		}
		next = append(next, v)
	}
	if !removed {
		next = append(next, option)
	}

	return fieldtypes.Encode(constants.FieldTypeMultiSelect, def.Config, next)
}

func renderWidget(def *models.FieldDefinition, encoded *string) *Widget {
	desc := fieldtypes.Describe(def.FieldType)

	w := &Widget{
		FieldID:   def.ID,
		Name:      def.Name,
		Label:     def.Label,
		InputKind: desc.InputKind,
		Value:     effectiveValue(def, encoded),
		Required:  def.IsRequired,
		Disabled:  !def.IsEditableByUser,
	}

	if def.Config != nil {
		w.Options = def.Config.Options
		w.Min = def.Config.Min
		w.Max = def.Config.Max
		w.Step = def.Config.Step
	}

	if def.FieldType == constants.FieldTypeMultiSelect {
		value := w.Value
		var stored *string
		if value != "" {
			stored = &value
		}
		w.Selected = fieldtypes.Decode(constants.FieldTypeMultiSelect, def.Config, stored).([]string)
	}

	return w
}

func renderDisplay(def *models.FieldDefinition, encoded *string) *Display {
	d := &Display{
		FieldID: def.ID,
		Name:    def.Name,
		Label:   def.Label,
		Kind:    "text",
	}

	value := effectiveValue(def, encoded)
	if value == "" && def.FieldType != constants.FieldTypeBoolean {
		d.Text = EmptyPlaceholder
		return d
	}

	switch def.FieldType {
	case constants.FieldTypeBoolean:
		d.Kind = "boolean"
		var stored *string
		if value != "" {
			stored = &value
		}
		if fieldtypes.Decode(constants.FieldTypeBoolean, def.Config, stored).(bool) {
			d.Text = "Yes"
		} else {
			d.Text = "No"
		}

	case constants.FieldTypeSelect:
		d.Text = optionLabel(def.Config, value)

	case constants.FieldTypeMultiSelect:
		selected := fieldtypes.Decode(constants.FieldTypeMultiSelect, def.Config, &value).([]string)
		labels := make([]string, 0, len(selected))
		for _, v := range selected {
			labels = append(labels, optionLabel(def.Config, v))
		}
		d.Text = strings.Join(labels, ", ")

	case constants.FieldTypeDate:
		d.Text = formatDate(fieldtypes.Decode(constants.FieldTypeDate, def.Config, &value).(string))

	case constants.FieldTypeDateTime:
		d.Text = formatDateTime(fieldtypes.Decode(constants.FieldTypeDateTime, def.Config, &value).(string))

	case constants.FieldTypeURL:
		d.Kind = "link"
		d.Text = value
		d.Href = value

	case constants.FieldTypeEmail:
		d.Kind = "email"
		d.Text = value
		d.Href = "mailto:" + value

	case constants.FieldTypePhone:
		d.Kind = "phone"
		d.Text = value
		d.Href = "tel:" + value

	default:
		d.Text = value
	}

	return d
}

// effectiveValue applies the encoded-value-then-default fallback chain
func effectiveValue(def *models.FieldDefinition, encoded *string) string {
	if encoded != nil {
		return *encoded
	}
	if def.DefaultValue != nil {
		return *def.DefaultValue
	}
	return ""
}

// optionLabel resolves a stored option value to its configured label,
// falling back to the raw value when the option was removed after the
// value was recorded
func optionLabel(cfg *models.FieldConfig, value string) string {
	if cfg != nil {
		for _, opt := range cfg.Options {
			if opt.Value == value {
				return opt.Label
			}
		}
	}
	return value
}

func formatDate(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}

func formatDateTime(s string) string {
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006 15:04")
}
