package form

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/temirov/psrun/internal/params"
)

var fixedNow = time.Date(2025, time.June, 1, 9, 30, 0, 0, time.UTC)

func parseForm(t *testing.T, script string) *Form {
	t.Helper()
	declarations, dependencies, err := params.Parse(script)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return New(declarations, dependencies, WithClock(func() time.Time { return fixedNow }))
}

func TestNewAssignsControlsAndInitialValues(t *testing.T) {
	t.Parallel()

	form := parseForm(t, "param(\n"+
		"[switch]$Force,\n"+
		"[datetime]$When,\n"+
		"[int]$Count = 2000000,\n"+
		"[int]$Negative = -5,\n"+
		"[decimal]$Budget,\n"+
		"[decimal]$Rate = 12.555,\n"+
		"[long]$Big = 5000000000,\n"+
		"[double]$Offset = -1.5,\n"+
		"[byte]$Level,\n"+
		"[string]$Name,\n"+
		"[hashtable]$Extra = @{}\n"+
		")\n")

	type summary struct {
		Name    string
		Control Control
		Value   string
	}
	var actual []summary
	for _, field := range form.Fields() {
		actual = append(actual, summary{Name: field.Declaration.Name, Control: field.Control, Value: params.FormatValue(field.Value)})
	}
	expected := []summary{
		{Name: "Force", Control: ControlCheckbox, Value: "false"},
		{Name: "When", Control: ControlDatePicker, Value: "2025-06-01"},
		{Name: "Count", Control: ControlNumeric, Value: "2000000"},
		{Name: "Negative", Control: ControlNumeric, Value: "-5"},
		{Name: "Budget", Control: ControlNumeric, Value: "0.00"},
		{Name: "Rate", Control: ControlNumeric, Value: "12.555"},
		{Name: "Big", Control: ControlText, Value: "5000000000"},
		{Name: "Offset", Control: ControlText, Value: "-1.5"},
		{Name: "Level", Control: ControlText, Value: "0"},
		{Name: "Name", Control: ControlText, Value: ""},
		{Name: "Extra", Control: ControlText, Value: "@{}"},
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestSetValidatesInput(t *testing.T) {
	t.Parallel()

	form := parseForm(t, "param(\n[int]$Count = 1,\n[string]$Name = 'x',\n[switch]$Force\n)\n")

	if err := form.Set("Count", "12"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if field, _ := form.Field("Count"); field.Value != int32(12) {
		t.Fatalf("unexpected Count value %#v", field.Value)
	}
	if err := form.Set("Count", "twelve"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if err := form.Set("Missing", "1"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := form.Set("Name", ""); err != nil {
		t.Fatalf("clearing text should succeed: %v", err)
	}
	if err := form.Set("Force", "true"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if serialized := params.Serialize(form.Arguments()); serialized != `-Count "12" -Name "" -Force` {
		t.Fatalf("unexpected arguments %q", serialized)
	}
}

func TestSetKeepsValuesOfTextNumericFields(t *testing.T) {
	t.Parallel()

	form := parseForm(t, "param(\n[long]$Big = 5000000000,\n[double]$Offset = -1.5,\n[int]$Delta = -3\n)\n")

	if err := form.Set("Offset", "-2.25"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := form.Set("Big", "7000000000"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := form.Set("Offset", "0x10"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for hexadecimal double, got %v", err)
	}
	if serialized := params.Serialize(form.Arguments()); serialized != `-Big "7000000000" -Offset "-2.25" -Delta "-3"` {
		t.Fatalf("unexpected arguments %q", serialized)
	}
}

func TestSetRejectsOutOfRangeNumericInput(t *testing.T) {
	t.Parallel()

	form := parseForm(t, "param(\n[int]$Count = 5,\n[decimal]$Budget = 1.50\n)\n")

	testCases := []struct {
		name  string
		field string
		raw   string
	}{
		{name: "negative_int", field: "Count", raw: "-1"},
		{name: "large_int", field: "Count", raw: "1000001"},
		{name: "negative_decimal", field: "Budget", raw: "-0.01"},
		{name: "large_decimal", field: "Budget", raw: "1000000.5"},
	}
	for _, testCase := range testCases {
		if err := form.Set(testCase.field, testCase.raw); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("%s: expected ErrInvalidValue, got %v", testCase.name, err)
		}
	}
	if err := form.Set("Count", "1000000"); err != nil {
		t.Fatalf("upper bound should be accepted: %v", err)
	}
	if err := form.Set("Budget", "0"); err != nil {
		t.Fatalf("lower bound should be accepted: %v", err)
	}
	if serialized := params.Serialize(form.Arguments()); serialized != `-Count "1000000" -Budget "0"` {
		t.Fatalf("unexpected arguments %q", serialized)
	}
}

func TestEnabledFollowsDependencies(t *testing.T) {
	t.Parallel()

	form := parseForm(t, "param(\n"+
		"[switch]$Deploy,\n"+
		"[string]$Target = 'prod', # DependsOn: Deploy\n"+
		"[int]$Replicas = 3, # DependsOn: Target\n"+
		"[string]$Note # DependsOn: Ghost\n"+
		")\n")

	if form.Enabled("Target") || form.Enabled("Replicas") {
		t.Fatalf("dependent fields must be disabled while Deploy is off")
	}
	if !form.Enabled("Note") || !form.Enabled("Deploy") {
		t.Fatalf("independent and dangling fields must stay enabled")
	}
	if serialized := params.Serialize(form.Arguments()); serialized != `-Note ""` {
		t.Fatalf("unexpected arguments %q", serialized)
	}

	if err := form.Set("Deploy", "true"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if !form.Enabled("Target") || !form.Enabled("Replicas") {
		t.Fatalf("dependent fields must be enabled once Deploy is on")
	}
	if err := form.Set("Target", ""); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if form.Enabled("Replicas") {
		t.Fatalf("Replicas must be disabled while Target is empty")
	}

	if diff := cmp.Diff(params.Dependencies{"Note": "Ghost"}, form.Dangling()); diff != "" {
		t.Fatalf("dangling mismatch (-want +got):\n%s", diff)
	}
}

func TestEnabledBreaksCycles(t *testing.T) {
	t.Parallel()

	form := parseForm(t, "param(\n"+
		"[switch]$A, # DependsOn: B\n"+
		"[switch]$B = true # DependsOn: A\n"+
		")\n")

	if form.Enabled("A") {
		t.Fatalf("A depends on B which depends on A being true")
	}
	if form.Enabled("B") {
		t.Fatalf("B depends on A which is false")
	}
}

func TestNewKeepsFirstPositionForDuplicates(t *testing.T) {
	t.Parallel()

	form := parseForm(t, "param(\n[string]$Name = 'first',\n[int]$Count,\n[string]$Name = 'second'\n)\n")
	fields := form.Fields()
	if len(fields) != 2 || fields[0].Declaration.Name != "Name" || fields[0].Value != "second" {
		t.Fatalf("unexpected fields %#v", fields)
	}
}
