package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FormatValue renders a normalised value as display text: numbers in their shortest decimal form, records as compact JSON.
func FormatValue(v any) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case json.Number:
		return val.String()
	case map[string]any, CompanyRecord:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}
