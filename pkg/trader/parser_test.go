package trader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActions_ToleratesSurroundingProse(t *testing.T) {
	raw := "Here is my analysis.\n```json\n" +
		`[{"action":"BUY","market":"WETH","confidence":60,"entry_price":1.23,"target_price":1.29,"stop_loss":1.19,"reasoning":"volume spike"}]` +
		"\n```\nLet me know if you need more."

	actions := ParseActions(raw)
	require.Len(t, actions, 1)
	a := actions[0]
	assert.Equal(t, "BUY", a.Action)
	assert.Equal(t, "WETH", a.Market)
	require.NotNil(t, a.Confidence)
	assert.Equal(t, 60, *a.Confidence)
	require.NotNil(t, a.EntryPrice)
	assert.True(t, a.EntryPrice.Equal(*decp("1.23")))
}

func TestParseActions_EmptyArray(t *testing.T) {
	assert.Empty(t, ParseActions("nothing to do: []"))
}

func TestParseActions_NoDelimiters(t *testing.T) {
	assert.Nil(t, ParseActions("I would rather wait for better conditions."))
	assert.Nil(t, ParseActions(""))
}

func TestParseActions_InvalidJSON(t *testing.T) {
	assert.Nil(t, ParseActions(`[{"action":"BUY","market":]`))
}

func TestParseActions_AbsentFieldsStayNil(t *testing.T) {
	actions := ParseActions(`[{"action":"CLOSE","market":"WETH","confidence":85,"reasoning":"target hit"}]`)
	require.Len(t, actions, 1)
	a := actions[0]
	assert.Nil(t, a.EntryPrice)
	assert.Nil(t, a.NewValue)
	assert.Nil(t, a.AmountUSD)
}
