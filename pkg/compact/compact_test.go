package compact

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_BareKeysAndValues(t *testing.T) {
	got := Encode(map[string]any{
		"symbol": "WETH",
		"usd":    12.5,
	})
	assert.Equal(t, "{symbol:WETH,usd:12.5}", got)
}

func TestEncode_QuotesWhenNeeded(t *testing.T) {
	got := Encode(map[string]any{
		"reason":    "target hit, closing",
		"weird key": "x",
		"empty":     "",
	})
	assert.Equal(t, `{empty:"",reason:"target hit, closing","weird key":x}`, got)
}

func TestEncode_SortsKeysDeterministically(t *testing.T) {
	v := map[string]any{"b": 1.0, "a": 2.0, "c": 3.0}
	first := Encode(v)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Encode(v))
	}
	assert.Equal(t, "{a:2,b:1,c:3}", first)
}

func TestEncode_Decimal(t *testing.T) {
	price := decimal.RequireFromString("1.23456789")
	got := Encode(map[string]any{"e": price})
	assert.Equal(t, "{e:1.23456789}", got)
}

func TestEncode_NestedFallsBackToJSON(t *testing.T) {
	deep := map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": map[string]any{
					"d": map[string]any{"z y": "q"},
				},
			},
		},
	}
	got := Encode(deep)
	// Depth > 3 re-enters standard JSON, so the innermost key stays quoted.
	assert.Contains(t, got, `{"z y":"q"}`)
}

func TestDecode_RoundTrip(t *testing.T) {
	v := map[string]any{
		"m": "WETH",
		"a": "BUY",
		"e": 1.23456789,
		"t": 1.29,
		"s": 1.19000001,
		"v": 1.5,
		"r": "entry, with comma",
	}
	decoded, err := Decode(Encode(v))
	require.NoError(t, err)
	assert.Equal(t, v, decoded)
}

func TestDecode_RoundTripPreservesEightDecimals(t *testing.T) {
	positions := []any{
		map[string]any{"m": "PEPE", "e": 0.00001234, "c": 0.00001299},
		map[string]any{"m": "WETH", "e": 3000.12345678, "c": 2987.00000001},
	}
	decoded, err := Decode(Encode(positions))
	require.NoError(t, err)
	list, ok := decoded.([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.InDelta(t, 0.00001234, first["e"], 1e-12)
	second := list[1].(map[string]any)
	assert.InDelta(t, 3000.12345678, second["e"], 1e-8)
}

func TestDecode_AcceptsPlainJSON(t *testing.T) {
	decoded, err := Decode(`{"symbol":"USDC","usd":10}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"symbol": "USDC", "usd": 10.0}, decoded)
}

func TestDecode_Scalars(t *testing.T) {
	cases := map[string]any{
		"null":  nil,
		"true":  true,
		"false": false,
		"1.5":   1.5,
		"WETH":  "WETH",
	}
	for in, want := range cases {
		got, err := Decode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestDecode_Errors(t *testing.T) {
	for _, in := range []string{"{m:WETH", "[1,2", `{"x":}`, "{:1}", ""} {
		_, err := Decode(in)
		assert.Error(t, err, "input %q should not decode", in)
	}
}

func TestEncode_EmptyContainers(t *testing.T) {
	assert.Equal(t, "{}", Encode(map[string]any{}))
	assert.Equal(t, "[]", Encode([]any{}))

	decoded, err := Decode("[]")
	require.NoError(t, err)
	assert.Equal(t, []any{}, decoded)
}
