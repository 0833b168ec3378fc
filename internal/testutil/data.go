package testutil

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AssertJSONEq checks that two JSON documents are equal after decoding,
// so key order and whitespace do not matter.
func AssertJSONEq(t *testing.T, expected, actual []byte) {
	t.Helper()

	var want, got interface{}
	if err := json.Unmarshal(expected, &want); err != nil {
		t.Fatalf("expected document is not JSON: %v", err)
	}
	if err := json.Unmarshal(actual, &got); err != nil {
		t.Fatalf("actual document is not JSON: %v", err)
	}
	AssertDiff(t, want, got)
}

// DecodeObject decodes a JSON object into a generic map for key checks.
func DecodeObject(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()

	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("failed to decode object: %v", err)
	}
	return obj
}
