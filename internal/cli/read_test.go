package cli

import (
	"encoding/json"
	"testing"
)

func TestRenderResourcePayloadText(t *testing.T) {
	raw := json.RawMessage(`{"contents":[{"uri":"file:///a","text":"hello "},{"uri":"file:///b","text":"world"}]}`)

	got, ok := renderResourcePayload(raw)
	if !ok {
		t.Fatal("ok = false, want true")
	}
	if got != "hello world" {
		t.Fatalf("got = %q, want %q", got, "hello world")
	}
}

func TestRenderResourcePayloadBlob(t *testing.T) {
	// "aGk=" is base64 for "hi".
	raw := json.RawMessage(`{"contents":[{"uri":"file:///a","blob":"aGk="}]}`)

	got, ok := renderResourcePayload(raw)
	if !ok {
		t.Fatal("ok = false, want true")
	}
	if got != "hi" {
		t.Fatalf("got = %q, want %q", got, "hi")
	}
}

func TestRenderResourcePayloadUnknownShape(t *testing.T) {
	if _, ok := renderResourcePayload(json.RawMessage(`{"result":"raw"}`)); ok {
		t.Fatal("ok = true, want false for unknown shape")
	}
	if _, ok := renderResourcePayload(json.RawMessage(`{"contents":[{"uri":"x","blob":"!!!"}]}`)); ok {
		t.Fatal("ok = true, want false for bad base64")
	}
}
