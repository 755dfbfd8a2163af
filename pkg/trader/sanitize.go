package trader

import "encoding/json"

// Contract-address keys removed from payloads before they reach the model.
// The model reasons in symbols only; addresses are mapped back during
// validation.
var strippedKeys = map[string]struct{}{
	"SmartContract":    {},
	"contract_address": {},
}

// StripContractFields returns a copy of the JSON document with every
// contract-address field removed, at any nesting depth. Invalid input is
// returned unchanged.
func StripContractFields(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return raw
	}
	out, err := json.Marshal(stripValue(doc))
	if err != nil {
		return raw
	}
	return out
}

// StripContractFieldsAll applies StripContractFields to each record.
func StripContractFieldsAll(raws []json.RawMessage) []json.RawMessage {
	if raws == nil {
		return nil
	}
	out := make([]json.RawMessage, len(raws))
	for i, raw := range raws {
		out[i] = StripContractFields(raw)
	}
	return out
}

func stripValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for key := range strippedKeys {
			delete(val, key)
		}
		for k, child := range val {
			val[k] = stripValue(child)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = stripValue(child)
		}
		return val
	default:
		return v
	}
}
