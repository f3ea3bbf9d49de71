package visitnote

import (
	"fmt"

	"github.com/carebridge/carebridge/internal/domain/fieldtype"
	"github.com/carebridge/carebridge/internal/domain/template"
)

// RequiredMessage is the exact message shown for an empty required field.
const RequiredMessage = "This field is required"

// Validate checks submitted values against a section tree and returns the
// per-field error map, empty when the submission is acceptable. It is pure:
// the same sections and data always produce the same map, and neither input
// is modified. Fields are checked in document order; each field reports at
// most one message. Keys in data that match no field are rejected so a
// client cannot smuggle values past the schema.
func Validate(sections []template.Section, data map[string]any) map[string]string {
	errs := make(map[string]string)
	known := make(map[string]bool)

	for _, sec := range sections {
		for _, f := range sec.Fields {
			known[f.ID] = true
			v, present := data[f.ID]

			if !present || fieldtype.IsEmpty(v) {
				if f.Required {
					errs[f.ID] = RequiredMessage
				}
				continue
			}

			spec, ok := fieldtype.Lookup(f.Type)
			if !ok {
				// Unknown kinds render but cannot be validated, so any
				// value is let through rather than trapping the carer.
				continue
			}
			if err := spec.Check(f.Config, v); err != nil {
				errs[f.ID] = err.Error()
			}
		}
	}

	for key := range data {
		if !known[key] {
			errs[key] = fmt.Sprintf("unknown field %q", key)
		}
	}
	return errs
}
