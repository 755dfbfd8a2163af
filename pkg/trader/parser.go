package trader

import (
	"encoding/json"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
)

// ParseActions extracts the candidate list from a raw model completion.
// Only the substring between the first '[' and the last ']' is considered,
// so surrounding prose and markdown fences are tolerated. A response with
// no such substring, or with invalid JSON inside it, yields an empty list
// rather than an error.
func ParseActions(raw string) []Candidate {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		logx.Info("trader: no action array in model response")
		return nil
	}

	var candidates []Candidate
	if err := json.Unmarshal([]byte(raw[start:end+1]), &candidates); err != nil {
		logx.Infof("trader: undecodable action array: %v", err)
		return nil
	}
	return candidates
}
