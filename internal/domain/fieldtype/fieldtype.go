// Package fieldtype holds the closed set of visit-note field kinds and the
// per-kind contract: the value shape a kind accepts, the emptiness predicate
// used by required-field validation, and the widget names the renderer
// dispatches on. Adding a kind means adding a registry entry here and a
// renderer branch; nothing is duck-typed.
package fieldtype

import (
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	TextShort      Kind = "TEXT_SHORT"
	TextLong       Kind = "TEXT_LONG"
	Number         Kind = "NUMBER"
	YesNo          Kind = "YES_NO"
	SingleChoice   Kind = "SINGLE_CHOICE"
	MultipleChoice Kind = "MULTIPLE_CHOICE"
	Date           Kind = "DATE"
	Time           Kind = "TIME"
	DateTime       Kind = "DATETIME"
	Signature      Kind = "SIGNATURE"
	Photo          Kind = "PHOTO"
	RatingScale    Kind = "RATING_SCALE"
)

// Config carries the type-specific field parameters. Keys are only meaningful
// for the kinds that read them; a min on a TEXT_SHORT field is ignored, not
// an error.
type Config struct {
	Options     []string `json:"options,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
}

// Clone returns a structural copy sharing no memory with the receiver.
func (c Config) Clone() Config {
	out := c
	if c.Options != nil {
		out.Options = append([]string(nil), c.Options...)
	}
	if c.Min != nil {
		min := *c.Min
		out.Min = &min
	}
	if c.Max != nil {
		max := *c.Max
		out.Max = &max
	}
	return out
}

// Spec is the contract a field kind satisfies.
type Spec struct {
	Kind Kind
	// EditWidget and ViewWidget name the input control and the read-only
	// display the renderer emits for this kind.
	EditWidget string
	ViewWidget string
	// Check validates the shape of a non-empty value against the config.
	// The returned error message is surfaced per-field to the caller.
	Check func(cfg Config, v any) error
	// Format produces the read-only display string for a non-empty value.
	Format func(cfg Config, v any) string
}

var registry = map[Kind]Spec{
	TextShort: {
		Kind: TextShort, EditWidget: "text", ViewWidget: "text",
		Check:  checkString,
		Format: formatString,
	},
	TextLong: {
		Kind: TextLong, EditWidget: "textarea", ViewWidget: "text",
		Check:  checkString,
		Format: formatString,
	},
	Number: {
		Kind: Number, EditWidget: "number", ViewWidget: "text",
		Check:  checkNumber,
		Format: formatNumber,
	},
	YesNo: {
		Kind: YesNo, EditWidget: "toggle", ViewWidget: "text",
		Check: func(cfg Config, v any) error {
			if _, ok := v.(bool); !ok {
				return fmt.Errorf("must be yes or no")
			}
			return nil
		},
		Format: func(cfg Config, v any) string {
			if b, _ := v.(bool); b {
				return "Yes"
			}
			return "No"
		},
	},
	SingleChoice: {
		Kind: SingleChoice, EditWidget: "radio", ViewWidget: "text",
		Check: func(cfg Config, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("must be one of the listed options")
			}
			if !containsOption(cfg.Options, s) {
				return fmt.Errorf("%q is not one of the listed options", s)
			}
			return nil
		},
		Format: formatString,
	},
	MultipleChoice: {
		Kind: MultipleChoice, EditWidget: "checkbox", ViewWidget: "text",
		Check: func(cfg Config, v any) error {
			vals, err := stringSlice(v)
			if err != nil {
				return err
			}
			for _, s := range vals {
				if !containsOption(cfg.Options, s) {
					return fmt.Errorf("%q is not one of the listed options", s)
				}
			}
			return nil
		},
		Format: func(cfg Config, v any) string {
			vals, err := stringSlice(v)
			if err != nil {
				return fmt.Sprintf("%v", v)
			}
			return strings.Join(vals, ", ")
		},
	},
	Date: {
		Kind: Date, EditWidget: "date", ViewWidget: "text",
		Check: checkTimeLayout("2006-01-02", "date (YYYY-MM-DD)"),
		Format: func(cfg Config, v any) string {
			s, _ := v.(string)
			if t, err := time.Parse("2006-01-02", s); err == nil {
				return t.Format("02 Jan 2006")
			}
			return s
		},
	},
	Time: {
		Kind: Time, EditWidget: "time", ViewWidget: "text",
		Check:  checkTimeLayout("15:04", "time (HH:MM)"),
		Format: formatString,
	},
	DateTime: {
		Kind: DateTime, EditWidget: "datetime", ViewWidget: "text",
		Check: checkTimeLayout(time.RFC3339, "RFC 3339 timestamp"),
		Format: func(cfg Config, v any) string {
			s, _ := v.(string)
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t.Format("02 Jan 2006 15:04")
			}
			return s
		},
	},
	Signature: {
		Kind: Signature, EditWidget: "signature", ViewWidget: "image",
		Check:  checkString,
		Format: formatString,
	},
	Photo: {
		Kind: Photo, EditWidget: "photo", ViewWidget: "image",
		Check:  checkString,
		Format: formatString,
	},
	RatingScale: {
		Kind: RatingScale, EditWidget: "rating", ViewWidget: "rating",
		Check: checkNumber,
		Format: func(cfg Config, v any) string {
			n, ok := numeric(v)
			if !ok {
				return fmt.Sprintf("%v", v)
			}
			max := 5.0
			if cfg.Max != nil {
				max = *cfg.Max
			}
			var b strings.Builder
			for i := 1.0; i <= max; i++ {
				if i <= n {
					b.WriteRune('★')
				} else {
					b.WriteRune('☆')
				}
			}
			return b.String()
		},
	},
}

// Lookup returns the spec for a kind. The second return is false for kinds
// this build does not know, which callers must treat as renderable-but-
// unvalidatable rather than an error: historical snapshots may carry kinds
// added after this build, and this build must still render their values.
func Lookup(k Kind) (Spec, bool) {
	s, ok := registry[k]
	return s, ok
}

// Known reports whether the kind is part of the closed set.
func Known(k Kind) bool {
	_, ok := registry[k]
	return ok
}

// Kinds returns every registered kind.
func Kinds() []Kind {
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

// IsEmpty is the emptiness predicate shared by every kind: nil, empty string
// and empty list are empty; false and 0 are answers and therefore NOT empty.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

func checkString(cfg Config, v any) error {
	if _, ok := v.(string); !ok {
		return fmt.Errorf("must be text")
	}
	return nil
}

func formatString(cfg Config, v any) string {
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return s
}

func checkNumber(cfg Config, v any) error {
	n, ok := numeric(v)
	if !ok {
		return fmt.Errorf("must be a number")
	}
	if cfg.Min != nil && n < *cfg.Min {
		return fmt.Errorf("must be at least %g", *cfg.Min)
	}
	if cfg.Max != nil && n > *cfg.Max {
		return fmt.Errorf("must be at most %g", *cfg.Max)
	}
	return nil
}

func formatNumber(cfg Config, v any) string {
	n, ok := numeric(v)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("%g", n)
}

func checkTimeLayout(layout, name string) func(Config, any) error {
	return func(cfg Config, v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("must be a %s", name)
		}
		if _, err := time.Parse(layout, s); err != nil {
			return fmt.Errorf("must be a valid %s", name)
		}
		return nil
	}
}

// numeric accepts the shapes a JSON number can arrive in.
func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func containsOption(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}

// stringSlice normalizes a multiple-choice value: JSON decoding hands the
// validator []any, in-process callers may pass []string.
func stringSlice(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("must be a list of options")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be a list of options")
	}
}
