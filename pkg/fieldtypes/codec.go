package fieldtypes

import (
	"strings"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/models"
)

// The codec is the single seam where typed values cross into and out of
// the uniform string-or-null storage form. It is total: no input ever
// produces an error. Unknown field types take the text path, unparseable
// data degrades to its permissive default. These rules must not change
// without a migration of already-stored values.
//
// Typed representations by field type:
//
//	text, textarea, url, email, phone  string
//	number                             string (verbatim numeric text; min/max/step are presentation constraints)
//	date                               string "YYYY-MM-DD"
//	datetime                           string "YYYY-MM-DDTHH:MM" (minute precision, no zone conversion)
//	boolean                            bool
//	select                             string (an option's value)
//	multiselect                        []string (selected option values, insertion order)

// Encode converts a typed value into its storage form. A nil result
// means SQL NULL.
func Encode(ft constants.FieldType, cfg *models.FieldConfig, v interface{}) *string {
	switch ft {
	case constants.FieldTypeBoolean:
		if b, ok := v.(bool); ok && b {
			return strPtr("true")
		}
		return strPtr("false")

	case constants.FieldTypeMultiSelect:
		selected, _ := v.([]string)
		if len(selected) == 0 {
			return nil
		}
		// No escaping: option values must not contain a comma. Creation
		// validation rejects such options so stored data stays decodable.
		return strPtr(strings.Join(selected, ","))

	case constants.FieldTypeDate:
		s, _ := v.(string)
		if s == "" {
			return nil
		}
		return strPtr(dateOnly(s))

	case constants.FieldTypeDateTime:
		s, _ := v.(string)
		if s == "" {
			return nil
		}
		return strPtr(minutePrecision(s) + ":00Z")

	default:
		// text, textarea, number, select, url, email, phone and any
		// unknown type: identity string, empty encodes to null
		s, _ := v.(string)
		if s == "" {
			return nil
		}
		return strPtr(s)
	}
}

// Decode converts a stored string (or null) back into the typed value
func Decode(ft constants.FieldType, cfg *models.FieldConfig, stored *string) interface{} {
	switch ft {
	case constants.FieldTypeBoolean:
		// "1" is the legacy true literal; everything else is false
		return stored != nil && (*stored == "true" || *stored == "1")

	case constants.FieldTypeMultiSelect:
		if stored == nil || *stored == "" {
			return []string{}
		}
		return strings.Split(*stored, ",")

	case constants.FieldTypeDate:
		if stored == nil {
			return ""
		}
		return dateOnly(*stored)

	case constants.FieldTypeDateTime:
		if stored == nil {
			return ""
		}
		return minutePrecision(*stored)

	default:
		if stored == nil {
			return ""
		}
		return *stored
	}
}

// dateOnly strips any time component: split on 'T', keep position 0
func dateOnly(s string) string {
	return strings.SplitN(s, "T", 2)[0]
}

// minutePrecision strips a trailing 'Z' and truncates to the first 16
// characters (YYYY-MM-DDTHH:MM). Seconds are dropped; the 'Z' is a
// storage convention, not a timezone conversion.
func minutePrecision(s string) string {
	s = strings.TrimSuffix(s, "Z")
	if len(s) > 16 {
		s = s[:16]
	}
	return s
}

func strPtr(s string) *string {
	return &s
}
