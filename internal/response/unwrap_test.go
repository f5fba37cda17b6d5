package response

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestDecodeTextResult(t *testing.T) {
	raw := json.RawMessage(`{"content":[{"type":"text","text":"hello"}],"isError":false}`)

	result := Decode(raw)
	if result == nil {
		t.Fatal("Decode() = nil, want result")
	}
	if result.IsError {
		t.Fatal("IsError = true, want false")
	}

	out, isErr := Unwrap(result)
	if isErr {
		t.Fatal("Unwrap() isError = true, want false")
	}
	if got := string(out); got != "hello\n" {
		t.Fatalf("Unwrap() = %q, want %q", got, "hello\n")
	}
}

func TestDecodeErrorFlag(t *testing.T) {
	raw := json.RawMessage(`{"content":[{"type":"text","text":"tool blew up"}],"isError":true}`)

	result := Decode(raw)
	out, isErr := Unwrap(result)
	if !isErr {
		t.Fatal("Unwrap() isError = false, want true")
	}
	if !strings.Contains(string(out), "tool blew up") {
		t.Fatalf("Unwrap() = %q, want error text included", out)
	}
}

func TestStructuredContentWinsOverText(t *testing.T) {
	raw := json.RawMessage(`{"content":[{"type":"text","text":"ignore me"}],"structuredContent":{"count":3}}`)

	out, isErr := Unwrap(Decode(raw))
	if isErr {
		t.Fatal("isError = true, want false")
	}
	if got := strings.TrimSpace(string(out)); got != `{"count":3}` {
		t.Fatalf("Unwrap() = %q, want structured JSON", got)
	}
}

func TestMultipleTextBlocksNewlineJoined(t *testing.T) {
	raw := json.RawMessage(`{"content":[{"type":"text","text":"one"},{"type":"text","text":"two"}]}`)

	out, _ := Unwrap(Decode(raw))
	if got := string(out); got != "one\ntwo\n" {
		t.Fatalf("Unwrap() = %q, want blocks newline-joined", got)
	}
}

func TestUnknownContentTypePreservedAsText(t *testing.T) {
	raw := json.RawMessage(`{"content":[{"type":"audio","data":"abc"}]}`)

	out, _ := Unwrap(Decode(raw))
	if !strings.Contains(string(out), `"audio"`) {
		t.Fatalf("Unwrap() = %q, want unknown content preserved", out)
	}
}

func TestEmbeddedTextResourceWrittenToTempFile(t *testing.T) {
	raw := json.RawMessage(`{"content":[{"type":"resource","resource":{"uri":"file:///x.txt","mimeType":"text/plain","text":"resource body"}}]}`)

	out, isErr := Unwrap(Decode(raw))
	if isErr {
		t.Fatal("isError = true, want false")
	}

	path := strings.TrimSpace(string(out))
	t.Cleanup(func() { os.Remove(path) })

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading temp file %q: %v", path, err)
	}
	if string(data) != "resource body" {
		t.Fatalf("temp file content = %q, want %q", data, "resource body")
	}
}

func TestUnwrapNilResultIsError(t *testing.T) {
	out, isErr := Unwrap(nil)
	if !isErr {
		t.Fatal("Unwrap(nil) isError = false, want true")
	}
	if out != nil {
		t.Fatalf("Unwrap(nil) = %q, want nil output", out)
	}
}

func TestDecodeUnparseablePayload(t *testing.T) {
	if got := Decode(json.RawMessage(`not json`)); got != nil {
		t.Fatalf("Decode(garbage) = %v, want nil", got)
	}
	if got := Decode(nil); got != nil {
		t.Fatalf("Decode(nil) = %v, want nil", got)
	}
}
