package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnTypeConflictsCompatible(t *testing.T) {
	cases := []struct{ a, b ColumnType }{
		{ColumnTypeNone, ColumnTypeNone},
		{ColumnTypeInt32, ColumnTypeInt32},
		{ColumnTypeDateTime, ColumnTypeDateTime},
		{ColumnTypeArray.Sub(ColumnTypeInt32), ColumnTypeArray.Sub(ColumnTypeInt32)},
		{ColumnTypeDateTime.With("Europe/Moscow"), ColumnTypeDateTime.With("UTC")},
		{ColumnTypeDateTime.With("Europe/Moscow"), ColumnTypeDateTime},
		{"Enum8('increment' = 1, 'gauge' = 2)", "Int8"},
		{"Int8", "Enum8('increment' = 1, 'gauge' = 2)"},
		{"Enum8('increment' = 1, 'gauge' = 2)", "Enum8"},
		{"Decimal256", "Decimal(76, 38)"},
		{"Nullable(Decimal256)", "Nullable(Decimal(76, 38))"},
	}
	for _, tt := range cases {
		assert.False(t, tt.a.Conflicts(tt.b), "%s ~ %s", tt.a, tt.b)
		assert.False(t, tt.b.Conflicts(tt.a), "%s ~ %s", tt.b, tt.a)
	}
}

func TestColumnTypeConflictsIncompatible(t *testing.T) {
	cases := []struct{ a, b ColumnType }{
		{ColumnTypeInt64, ColumnTypeNone},
		{ColumnTypeInt32, ColumnTypeInt64},
		{ColumnTypeDateTime, ColumnTypeInt32},
		{ColumnTypeArray.Sub(ColumnTypeInt32), ColumnTypeArray.Sub(ColumnTypeInt64)},
		{"Map(String,String)", "Map(String,Int32)"},
		{"Enum16('increment' = 1, 'gauge' = 2)", "Int8"},
	}
	for _, tt := range cases {
		assert.True(t, tt.a.Conflicts(tt.b), "%s !~ %s", tt.a, tt.b)
		assert.True(t, tt.b.Conflicts(tt.a), "%s !~ %s", tt.b, tt.a)
	}
}

func TestColumnTypeArrayAndElem(t *testing.T) {
	v := ColumnTypeInt16.Array()
	assert.Equal(t, ColumnType("Array(Int16)"), v)
	assert.True(t, v.IsArray())
	assert.Equal(t, ColumnTypeInt16, v.Elem())

	assert.Equal(t, ColumnTypeNone, ColumnTypeFloat32.Elem())
	assert.False(t, ColumnTypeInt32.IsArray())
}
