package planner

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/quantaplan/internal/catalog"
	"github.com/dshills/quantaplan/internal/errors"
	"github.com/dshills/quantaplan/internal/log"
	"github.com/dshills/quantaplan/internal/sql/expression"
	"github.com/dshills/quantaplan/internal/sql/types"
	"github.com/dshills/quantaplan/internal/testutil"
)

func quietOptions() DecodeOptions {
	return DecodeOptions{Logger: log.Discard()}
}

func TestSeqScanRoundTrip(t *testing.T) {
	a := expression.NewArena()
	original := ordersScan(t, a)

	data, err := original.ToJSON()
	require.NoError(t, err)

	decoded, err := SeqScanFromJSON(data, quietOptions())
	require.NoError(t, err)
	assert.True(t, original.Equal(decoded))
	assert.Equal(t, original.Hash(), decoded.Hash())
	assert.NotSame(t, a, decoded.ScanPredicate().Arena())
	assert.Equal(t, original.CollectInputOIDs().Sorted(), decoded.CollectInputOIDs().Sorted())

	again, err := decoded.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestSeqScanDocumentShape(t *testing.T) {
	a := expression.NewArena()
	node, err := NewSeqScanBuilder().
		SetOutputSchema(NewOutputSchema(
			NewOutputColumn("id", types.TypeIDInteger, false, a.ColumnValue(42, 1, "id", types.TypeIDInteger)),
		)).
		SetTableOID(42).
		SetColumnOIDs([]catalog.ColumnOID{1}).
		Build()
	require.NoError(t, err)

	data, err := node.ToJSON()
	require.NoError(t, err)
	testutil.AssertJSONEq(t, []byte(`{
		"type": "SEQSCAN",
		"children": [],
		"output_schema": {"columns": [{
			"name": "id",
			"type": "INTEGER",
			"nullable": false,
			"expr": {
				"type": "COLUMN_VALUE",
				"return_value_type": "INTEGER",
				"children": [],
				"table_oid": 42,
				"column_oid": 1,
				"column_name": "id"
			}
		}]},
		"predicate": null,
		"is_for_update": false,
		"database_oid": 0,
		"namespace_oid": 0,
		"table_oid": 42,
		"column_oids": [1]
	}`), data)

	decoded, err := FromJSON(data, quietOptions())
	require.NoError(t, err)
	assert.True(t, decoded.(*SeqScanPlanNode).ScanPredicate().IsNil())
	assert.True(t, node.Equal(decoded))
}

func TestPlanTreeRoundTrip(t *testing.T) {
	a := expression.NewArena()
	param, err := a.Parameter(1, types.TypeIDText)
	require.NoError(t, err)
	lower, err := a.Function("lower", types.TypeIDText, a.ColumnValue(42, 3, "name", types.TypeIDText))
	require.NoError(t, err)
	pred, err := a.Comparison(expression.CompareEqual, lower, param)
	require.NoError(t, err)

	idx, err := NewIndexScanBuilder().
		SetOutputSchema(ordersSchema(a)).
		SetScanPredicate(pred).
		SetIsForUpdate(true).
		SetDatabaseOID(1).
		SetNamespaceOID(2).
		SetIndexOID(7).
		SetTableOID(42).
		SetColumnOIDs([]catalog.ColumnOID{1, 3}).
		Build()
	require.NoError(t, err)
	limit, err := NewLimitBuilder().AddChild(idx).SetLimit(10).SetOffset(5).Build()
	require.NoError(t, err)

	data, err := limit.ToJSON()
	require.NoError(t, err)
	top := testutil.DecodeObject(t, data)
	assert.Equal(t, "LIMIT", top["type"])
	assert.Equal(t, float64(10), top["limit"])
	_, hasTable := top["table_oid"]
	assert.False(t, hasTable, "limit documents carry no scan fields")

	decoded, err := FromJSON(data, quietOptions())
	require.NoError(t, err)
	assert.True(t, limit.Equal(decoded))
	assert.Equal(t, limit.Hash(), decoded.Hash())

	child, ok := decoded.Child(0).(*IndexScanPlanNode)
	require.True(t, ok)
	assert.Equal(t, catalog.IndexOID(7), child.IndexOID())
	assert.True(t, child.IsForUpdate())
	assert.Equal(t, []catalog.ColumnOID{1, 3}, child.CollectInputOIDs().Sorted())

	_, err = SeqScanFromJSON(data, quietOptions())
	assert.True(t, errors.IsMalformedPlan(err))
}

func TestLimitDecodeDefaultsSchema(t *testing.T) {
	doc := `{"type":"LIMIT","limit":3,"children":[` +
		`{"type":"SEQSCAN","output_schema":{"columns":[{"name":"id","type":"INTEGER","nullable":false,"expr":null}]},` +
		`"table_oid":42,"column_oids":[1]}]}`

	node, err := FromJSON([]byte(doc), quietOptions())
	require.NoError(t, err)
	limit := node.(*LimitPlanNode)
	assert.Equal(t, int64(0), limit.Offset())
	assert.Equal(t, "[id]", limit.OutputSchema().String())
	assert.True(t, limit.OutputSchema().Equal(limit.Child(0).OutputSchema()))
}

func TestDecodeMalformed(t *testing.T) {
	const schema = `"output_schema":{"columns":[]}`
	const seq = `{"type":"SEQSCAN",` + schema + `,"table_oid":42,"column_oids":[1]}`

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"type":`},
		{"null document", `null`},
		{"array document", `[]`},
		{"missing type", `{` + schema + `,"table_oid":42,"column_oids":[1]}`},
		{"unknown type", `{"type":"HASHJOIN",` + schema + `}`},
		{"invalid type", `{"type":"INVALID",` + schema + `}`},
		{"missing output schema", `{"type":"SEQSCAN","table_oid":42,"column_oids":[1]}`},
		{"null output schema", `{"type":"SEQSCAN","output_schema":null,"table_oid":42,"column_oids":[1]}`},
		{"missing table oid", `{"type":"SEQSCAN",` + schema + `,"column_oids":[1]}`},
		{"missing column oids", `{"type":"SEQSCAN",` + schema + `,"table_oid":42}`},
		{"null column oids", `{"type":"SEQSCAN",` + schema + `,"table_oid":42,"column_oids":null}`},
		{"string table oid", `{"type":"SEQSCAN",` + schema + `,"table_oid":"orders","column_oids":[1]}`},
		{"negative table oid", `{"type":"SEQSCAN",` + schema + `,"table_oid":-1,"column_oids":[1]}`},
		{"reserved table oid", `{"type":"SEQSCAN",` + schema + `,"table_oid":0,"column_oids":[1]}`},
		{"object column oids", `{"type":"SEQSCAN",` + schema + `,"table_oid":42,"column_oids":{}}`},
		{"string for update", `{"type":"SEQSCAN",` + schema + `,"table_oid":42,"column_oids":[1],"is_for_update":"yes"}`},
		{"bad predicate", `{"type":"SEQSCAN",` + schema + `,"table_oid":42,"column_oids":[1],` +
			`"predicate":{"type":"COMPARE_EQUAL","children":[]}}`},
		{"scalar predicate", `{"type":"SEQSCAN",` + schema + `,"table_oid":42,"column_oids":[1],"predicate":5}`},
		{"null child", `{"type":"SEQSCAN",` + schema + `,"table_oid":42,"column_oids":[1],"children":[null]}`},
		{"object children", `{"type":"SEQSCAN",` + schema + `,"table_oid":42,"column_oids":[1],"children":{}}`},
		{"null output column", `{"type":"SEQSCAN","output_schema":{"columns":[null]},"table_oid":42,"column_oids":[1]}`},
		{"unknown column type", `{"type":"SEQSCAN","output_schema":{"columns":[{"name":"a","type":"BLOB"}]},` +
			`"table_oid":42,"column_oids":[1]}`},
		{"bad child", `{"type":"SEQSCAN",` + schema + `,"table_oid":42,"column_oids":[1],"children":[{"type":"SEQSCAN"}]}`},
		{"index scan without index", `{"type":"INDEXSCAN",` + schema + `,"table_oid":42,"column_oids":[1]}`},
		{"limit without limit", `{"type":"LIMIT","children":[` + seq + `]}`},
		{"limit without child", `{"type":"LIMIT","limit":1}`},
		{"negative limit", `{"type":"LIMIT","limit":-1,"children":[` + seq + `]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := FromJSON([]byte(tt.doc), quietOptions())
			require.Error(t, err)
			assert.Nil(t, node)
			assert.True(t, errors.IsMalformedPlan(err), "unexpected error kind: %v", err)
		})
	}
}

func TestDecodeMissingKeyNamesKey(t *testing.T) {
	_, err := FromJSON([]byte(`{"type":"SEQSCAN","output_schema":{"columns":[]},"table_oid":42}`), quietOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"column_oids"`)
	assert.Equal(t, "FromJSON", errors.GetError(err).Routine)
}

func TestDecodePlanDepthLimit(t *testing.T) {
	doc := `{"type":"SEQSCAN","output_schema":{"columns":[]},"table_oid":42,"column_oids":[]}`
	for i := 0; i < 4; i++ {
		doc = `{"type":"LIMIT","limit":1,"children":[` + doc + `]}`
	}

	_, err := FromJSON([]byte(doc), DecodeOptions{MaxPlanDepth: 5, Logger: log.Discard()})
	require.NoError(t, err)

	_, err = FromJSON([]byte(doc), DecodeOptions{MaxPlanDepth: 4, Logger: log.Discard()})
	require.Error(t, err)
	assert.True(t, errors.IsError(err, errors.StatementTooComplex))
}

func TestDecodeExpressionDepthLimit(t *testing.T) {
	data, err := ordersScan(t, expression.NewArena()).ToJSON()
	require.NoError(t, err)

	_, err = FromJSON(data, DecodeOptions{MaxExpressionDepth: 3, Logger: log.Discard()})
	require.NoError(t, err)

	_, err = FromJSON(data, DecodeOptions{MaxExpressionDepth: 2, Logger: log.Discard()})
	require.Error(t, err)
	assert.True(t, errors.IsError(err, errors.StatementTooComplex))
}

func TestDecodeExpressionDepthIsCapped(t *testing.T) {
	a := expression.NewArena()
	// Assembled by hand: the builder refuses a predicate this deep.
	pred := `{"type":"COLUMN_VALUE","return_value_type":"BOOLEAN","children":[],"table_oid":42,"column_oid":1,"column_name":"flag"}`
	for i := 0; i < expression.DefaultMaxDepth; i++ {
		pred = `{"type":"OPERATOR_NOT","return_value_type":"BOOLEAN","children":[` + pred + `]}`
	}
	doc := `{"type":"SEQSCAN","output_schema":{"columns":[]},"table_oid":42,"column_oids":[],"predicate":` + pred + `}`

	_, err := DecodeInto(a, []byte(doc), DecodeOptions{MaxExpressionDepth: 4 * expression.DefaultMaxDepth, Logger: log.Discard()})
	require.Error(t, err)
	assert.True(t, errors.IsError(err, errors.StatementTooComplex))
}

func TestDecodeIntoSharedArena(t *testing.T) {
	data, err := ordersScan(t, expression.NewArena()).ToJSON()
	require.NoError(t, err)

	arena := expression.NewArena()
	first, err := DecodeInto(arena, data, quietOptions())
	require.NoError(t, err)
	size := arena.Len()
	second, err := DecodeInto(arena, data, quietOptions())
	require.NoError(t, err)

	assert.Equal(t, 2*size, arena.Len())
	assert.Same(t, arena, first.(*SeqScanPlanNode).ScanPredicate().Arena())
	assert.Same(t, arena, second.(*SeqScanPlanNode).ScanPredicate().Arena())
	assert.True(t, first.Equal(second))
}

func TestDecodeLogsNodes(t *testing.T) {
	var buf bytes.Buffer
	limit, err := NewLimitBuilder().AddChild(ordersScan(t, expression.NewArena())).SetLimit(1).Build()
	require.NoError(t, err)
	doc, err := limit.ToJSON()
	require.NoError(t, err)

	_, err = FromJSON(doc, DecodeOptions{Logger: log.NewWithWriter(&buf, "json", slog.LevelDebug)})
	require.NoError(t, err)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "decoded plan node"))
	assert.Contains(t, out, `"type":"SEQSCAN"`)
	assert.Contains(t, out, `"type":"LIMIT"`)
}
