package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionJSON_KeepsZeroPrice(t *testing.T) {
	data, err := json.Marshal(RenderReal(Table{}, 0))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"real":true`)
	assert.Contains(t, string(data), `"latest_price":0`)

	data, err = json.Marshal(RenderPlaceholder(ReasonNoData))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"reason":"no data"`)
}
