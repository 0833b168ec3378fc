package testutil

import (
	"os"
	"testing"
)

func TestTempDir(t *testing.T) {
	dir, cleanup := TempDir(t)
	defer cleanup()

	// Check directory exists
	info, err := os.Stat(dir)
	AssertNoError(t, err)
	AssertTrue(t, info.IsDir(), "expected directory")

	path := WriteFile(t, dir, "plan.json", []byte(`{"type":"SEQSCAN"}`))
	data, err := os.ReadFile(path)
	AssertNoError(t, err)
	AssertEqual(t, `{"type":"SEQSCAN"}`, string(data))
}

func TestAssertions(t *testing.T) {
	AssertEqual(t, 42, 42)
	AssertEqual(t, "hello", "hello")
	AssertEqual(t, []int{1, 2, 3}, []int{1, 2, 3})
	AssertDiff(t, map[string]int{"a": 1}, map[string]int{"a": 1})

	AssertNoError(t, nil)

	AssertTrue(t, true, "should be true")
	AssertFalse(t, false, "should be false")
}

func TestJSONHelpers(t *testing.T) {
	AssertJSONEq(t,
		[]byte(`{"type":"LIMIT","limit":10,"offset":0}`),
		[]byte(`{ "offset": 0, "limit": 10, "type": "LIMIT" }`))

	obj := DecodeObject(t, []byte(`{"table_oid":42,"column_oids":[1,2]}`))
	AssertEqual(t, float64(42), obj["table_oid"])
	AssertEqual(t, 2, len(obj["column_oids"].([]interface{})))
}
