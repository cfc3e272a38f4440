package llm

import "testing"

func TestExtractJSONFromMarkdown(t *testing.T) {
	response := "Here is the result:\n```json\n{\"key\": \"value\"}\n```\nanything else"
	got, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}
	if got != `{"key": "value"}` {
		t.Errorf("unexpected extraction %q", got)
	}
}

func TestExtractJSONStripsThinkTags(t *testing.T) {
	response := "<think>reasoning here {not json}</think>\n{\"a\": 1}"
	got, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}
	if got != `{"a": 1}` {
		t.Errorf("unexpected extraction %q", got)
	}
}

func TestExtractJSONNestedStructures(t *testing.T) {
	response := `prefix {"outer": {"inner": [1, 2, {"deep": true}]}} suffix`
	got, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}
	if got != `{"outer": {"inner": [1, 2, {"deep": true}]}}` {
		t.Errorf("unexpected extraction %q", got)
	}
}

func TestExtractJSONHandlesBracesInStrings(t *testing.T) {
	response := `{"sql": "SELECT '{' FROM t", "note": "escaped \" quote"}`
	got, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}
	if got != response {
		t.Errorf("unexpected extraction %q", got)
	}
}

func TestExtractJSONArray(t *testing.T) {
	got, err := ExtractJSON(`the list: [1, 2, 3]`)
	if err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}
	if got != `[1, 2, 3]` {
		t.Errorf("unexpected extraction %q", got)
	}
}

func TestExtractJSONNoJSON(t *testing.T) {
	if _, err := ExtractJSON("no structured content here"); err == nil {
		t.Error("expected error when no JSON present")
	}
}

func TestParseJSONResponse(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	got, err := ParseJSONResponse[payload]("```json\n{\"name\": \"x\", \"count\": 3}\n```")
	if err != nil {
		t.Fatalf("ParseJSONResponse failed: %v", err)
	}
	if got.Name != "x" || got.Count != 3 {
		t.Errorf("unexpected payload %+v", got)
	}

	if _, err := ParseJSONResponse[payload]("not json"); err == nil {
		t.Error("expected error for unparseable response")
	}
}
