package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Scan(t *testing.T) {
	var q Query
	require.NoError(t, q.Scan([]byte(`{"database": 1, "query": {"source-table": 10}}`)))
	assert.Equal(t, float64(1), q["database"])
	assert.Equal(t, float64(10), q["query"].(map[string]any)["source-table"])

	require.NoError(t, q.Scan(`{"type": "query"}`))
	assert.Equal(t, "query", q["type"])

	require.NoError(t, q.Scan(nil))
	assert.Nil(t, q)
}

func TestQuery_Value(t *testing.T) {
	value, err := Query{"database": 1}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"database": 1}`, string(value.([]byte)))

	value, err = Query(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}
