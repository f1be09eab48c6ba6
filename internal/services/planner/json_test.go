package planner

import (
	"strings"
	"testing"

	"chalktalk/internal/plan"
)

func TestDecodeModelJSONDirect(t *testing.T) {
	var doc plan.Document
	payload := `{"segments":[{"narration":"A circle appears.","code":"c = Circle()","duration":5}]}`
	if err := DecodeModelJSON(payload, &doc); err != nil {
		t.Fatalf("DecodeModelJSON: %v", err)
	}
	if len(doc.Segments) != 1 {
		t.Fatalf("expected one segment, got %d", len(doc.Segments))
	}
}

func TestDecodeModelJSONStripsFences(t *testing.T) {
	var doc plan.Document
	payload := "```json\n{\"segments\":[{\"narration\":\"Fenced.\",\"code\":\"x = 1\"}]}\n```"
	if err := DecodeModelJSON(payload, &doc); err != nil {
		t.Fatalf("DecodeModelJSON: %v", err)
	}
	if doc.Segments[0].Narration != "Fenced." {
		t.Fatalf("unexpected narration: %v", doc.Segments[0].Narration)
	}
}

func TestDecodeModelJSONRepairsBareWords(t *testing.T) {
	var doc plan.Document
	payload := `{"segments":[{"narration":"Colors.","steps":[{"kind": write, "text": equation, "color": blue}]}]}`
	if err := DecodeModelJSON(payload, &doc); err != nil {
		t.Fatalf("DecodeModelJSON: %v", err)
	}
	step := doc.Segments[0].Steps[0]
	if step.Kind != "write" || step.Color != "blue" {
		t.Fatalf("bare words not repaired: %#v", step)
	}
}

func TestDecodeModelJSONExtractsEmbeddedObject(t *testing.T) {
	var doc plan.Document
	payload := `Here is the plan you asked for: {"segments":[{"narration":"Buried.","code":"y = 2"}]} Hope that helps!`
	if err := DecodeModelJSON(payload, &doc); err != nil {
		t.Fatalf("DecodeModelJSON: %v", err)
	}
	if doc.Segments[0].Narration != "Buried." {
		t.Fatalf("unexpected narration: %v", doc.Segments[0].Narration)
	}
}

func TestDecodeModelJSONFatalOnGarbage(t *testing.T) {
	var doc plan.Document
	err := DecodeModelJSON("the model refused to answer", &doc)
	if err == nil {
		t.Fatal("expected parse failure")
	}
	if !strings.Contains(err.Error(), "parse planner response") {
		t.Fatalf("error should name the cause: %v", err)
	}

	if err := DecodeModelJSON("   ", &doc); err == nil {
		t.Fatal("expected empty payload error")
	}
}

func TestRepairJSONIdempotent(t *testing.T) {
	payloads := []string{
		`{"color": blue}`,
		`{"narration": hello, "code": foo}`,
		`{"steps":[{"kind": draw},{"text": axis}]}`,
		`{"color": "already quoted"}`,
	}
	for _, payload := range payloads {
		once := RepairJSON(payload)
		twice := RepairJSON(once)
		if once != twice {
			t.Fatalf("repair not idempotent for %q: %q != %q", payload, once, twice)
		}
	}
}

func TestRepairJSONLeavesStringsAlone(t *testing.T) {
	payload := `{"narration": "code: foo remains untouched", "duration": 6}`
	if got := RepairJSON(payload); got != payload {
		t.Fatalf("valid payload altered: %q", got)
	}
}

func TestExtractBalancedObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`prefix {"a": {"b": 1}} suffix`, `{"a": {"b": 1}}`},
		{`{"s": "brace } inside"} trailing`, `{"s": "brace } inside"}`},
		{`no braces here`, ""},
		{`{"unterminated": true`, ""},
	}
	for _, tc := range cases {
		if got := extractBalancedObject(tc.in); got != tc.want {
			t.Fatalf("extractBalancedObject(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
