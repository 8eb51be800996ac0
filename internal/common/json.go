package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON unmarshals an LLM response into T, tolerating the usual model
// quirks: surrounding prose, markdown fences, trailing commentary. It keeps
// the slice between the first '{' and the last '}'.
func ParseJSON[T any](response string) (T, error) {
	var result T

	start := strings.IndexByte(response, '{')
	if start == -1 {
		return result, fmt.Errorf("no JSON object found in response (missing '{')")
	}
	end := strings.LastIndexByte(response, '}')
	if end == -1 || end < start {
		return result, fmt.Errorf("no JSON object found in response (missing '}')")
	}

	jsonStr := response[start : end+1]
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}

	return result, nil
}
