package timer

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKind tags the type of an editable column so validation and coercion
// run through one generic function instead of per-field string building.
type FieldKind int

const (
	FieldInt FieldKind = iota
	FieldFloat
	FieldDate
	FieldDateTime
	FieldText
	FieldLookup // foreign-key reference resolved by name elsewhere
)

func (k FieldKind) String() string {
	switch k {
	case FieldInt:
		return "int"
	case FieldFloat:
		return "float"
	case FieldDate:
		return "date"
	case FieldDateTime:
		return "datetime"
	case FieldText:
		return "text"
	case FieldLookup:
		return "lookup"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// EntryFields maps the editable columns of a time entry to their kinds.
var EntryFields = map[string]FieldKind{
	"start_time":   FieldDateTime,
	"end_time":     FieldDateTime,
	"comment":      FieldText,
	"work_item_id": FieldInt,
}

// CoerceField validates raw input against the field's kind and returns the
// value to store. Returns a ValidationError when the input does not parse.
func CoerceField(name string, kind FieldKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case FieldInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, validationErr(name, fmt.Sprintf("%q is not an integer", raw))
		}
		return n, nil
	case FieldFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, validationErr(name, fmt.Sprintf("%q is not a number", raw))
		}
		return f, nil
	case FieldDate:
		t, err := ParseDate(raw)
		if err != nil {
			return nil, err
		}
		return t, nil
	case FieldDateTime:
		t, err := ParseDateTime(raw)
		if err != nil {
			return nil, err
		}
		return t, nil
	case FieldText, FieldLookup:
		return raw, nil
	default:
		return nil, validationErr(name, fmt.Sprintf("unknown field kind %v", kind))
	}
}
