package visitnote

import (
	"reflect"
	"testing"

	"github.com/carebridge/carebridge/internal/domain/fieldtype"
	"github.com/carebridge/carebridge/internal/domain/template"
)

func checkSections() []template.Section {
	min, max := 0.0, 10.0
	return []template.Section{
		{ID: "s1", Title: "Care", Order: 1, Fields: []template.Field{
			{ID: "summary", Label: "Summary", Type: fieldtype.TextLong, Required: true, Order: 1},
			{ID: "meds_given", Label: "Medication given", Type: fieldtype.YesNo, Required: true, Order: 2},
			{ID: "fluids_ml", Label: "Fluids (ml)", Type: fieldtype.Number, Order: 3,
				Config: fieldtype.Config{Min: &min, Max: &max}},
			{ID: "mood", Label: "Mood", Type: fieldtype.SingleChoice, Order: 4,
				Config: fieldtype.Config{Options: []string{"Low", "Medium", "High"}}},
			{ID: "concerns", Label: "Concerns", Type: fieldtype.MultipleChoice, Order: 5,
				Config: fieldtype.Config{Options: []string{"Diet", "Mobility", "Skin"}}},
		}},
	}
}

func TestValidate_AllGood(t *testing.T) {
	errs := Validate(checkSections(), map[string]any{
		"summary":    "Settled day, good appetite.",
		"meds_given": true,
		"fluids_ml":  float64(6),
		"mood":       "High",
		"concerns":   []any{"Diet"},
	})
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate_RequiredMissing(t *testing.T) {
	errs := Validate(checkSections(), map[string]any{})
	if errs["summary"] != RequiredMessage {
		t.Errorf("expected %q for summary, got %q", RequiredMessage, errs["summary"])
	}
	if errs["meds_given"] != RequiredMessage {
		t.Errorf("expected %q for meds_given, got %q", RequiredMessage, errs["meds_given"])
	}
	if _, ok := errs["fluids_ml"]; ok {
		t.Error("optional field must not be flagged when absent")
	}
}

func TestValidate_EmptyValuesAreMissing(t *testing.T) {
	errs := Validate(checkSections(), map[string]any{
		"summary":    "",
		"meds_given": nil,
	})
	if errs["summary"] != RequiredMessage {
		t.Errorf("empty string must count as missing, got %q", errs["summary"])
	}
	if errs["meds_given"] != RequiredMessage {
		t.Errorf("nil must count as missing, got %q", errs["meds_given"])
	}
}

func TestValidate_FalseAndZeroAreAnswers(t *testing.T) {
	errs := Validate(checkSections(), map[string]any{
		"summary":    "ok",
		"meds_given": false,
		"fluids_ml":  float64(0),
	})
	if _, ok := errs["meds_given"]; ok {
		t.Errorf("false is an answer, got error %q", errs["meds_given"])
	}
	if _, ok := errs["fluids_ml"]; ok {
		t.Errorf("zero is an answer, got error %q", errs["fluids_ml"])
	}
}

func TestValidate_ShapeErrors(t *testing.T) {
	errs := Validate(checkSections(), map[string]any{
		"summary":    "ok",
		"meds_given": true,
		"fluids_ml":  float64(11),
		"mood":       "Euphoric",
	})
	if errs["fluids_ml"] == "" {
		t.Error("expected range error for out-of-range number")
	}
	if errs["mood"] == "" {
		t.Error("expected option error for unlisted choice")
	}
}

func TestValidate_UnknownKeyRejected(t *testing.T) {
	errs := Validate(checkSections(), map[string]any{
		"summary":    "ok",
		"meds_given": true,
		"smuggled":   "value",
	})
	if errs["smuggled"] == "" {
		t.Error("expected error for a key matching no field")
	}
}

func TestValidate_PureAndDeterministic(t *testing.T) {
	sections := checkSections()
	data := map[string]any{"meds_given": false, "smuggled": 1}

	first := Validate(sections, data)
	second := Validate(sections, data)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same input produced different results: %v vs %v", first, second)
	}
	if !reflect.DeepEqual(data, map[string]any{"meds_given": false, "smuggled": 1}) {
		t.Errorf("input data was mutated: %v", data)
	}
}

func TestValidate_OneErrorPerField(t *testing.T) {
	// A required choice field with a wrong-typed value still reports a
	// single message for that field.
	sections := []template.Section{{ID: "s1", Fields: []template.Field{
		{ID: "mood", Type: fieldtype.SingleChoice, Required: true,
			Config: fieldtype.Config{Options: []string{"Low"}}},
	}}}
	errs := Validate(sections, map[string]any{"mood": 42})
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
}

func TestValidate_UnknownKindPassesThrough(t *testing.T) {
	sections := []template.Section{{ID: "s1", Fields: []template.Field{
		{ID: "f1", Type: fieldtype.Kind("VOICE_MEMO"), Required: true},
	}}}

	if errs := Validate(sections, map[string]any{"f1": "anything"}); len(errs) != 0 {
		t.Errorf("unknown kinds cannot be shape-checked, got %v", errs)
	}
	// Emptiness is still enforced.
	if errs := Validate(sections, map[string]any{}); errs["f1"] != RequiredMessage {
		t.Errorf("required still applies to unknown kinds, got %v", errs)
	}
}
