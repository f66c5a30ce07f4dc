package service

import (
	"strings"

	"github.com/octobees/leadform/internal/entity"
)

// RecordFields lists the fields a CompanyRecord exposes; anything else in a stored document is dropped.
var RecordFields = []string{
	"name",
	"foundedYear",
	"industry",
	"location",
	"size",
	"email",
	"phone",
	"website",
	"linkedin",
	"rating",
	"reviewSource",
	"pros",
	"cons",
	"services",
	"references",
	"timestamp",
	"embedding",
	"summary",
}

// Normalize cleans a raw stored value for display.
// Blank strings and nulls become nil, sequences are flattened and joined with ", ",
// mappings are cleaned field by field and other scalars pass through.
func Normalize(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return v
	case []any:
		return joinSequence(v)
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return joinSequence(items)
	case entity.CompanyRecord:
		return normalizeMapping(v)
	case map[string]any:
		return normalizeMapping(v)
	default:
		return v
	}
}

// NormalizeRecord projects a stored document onto the CompanyRecord fields and normalises each of them.
// references prefers topReferences and falls back to references when the former is empty after cleanup.
func NormalizeRecord(data map[string]any) entity.CompanyRecord {
	record := entity.CompanyRecord{}
	for _, field := range RecordFields {
		var value any
		if field == "references" {
			value = Normalize(data["topReferences"])
			if value == nil {
				value = Normalize(data["references"])
			}
		} else {
			value = Normalize(data[field])
		}
		if value != nil {
			record[field] = value
		}
	}
	return record
}

func normalizeMapping(m map[string]any) any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if cleaned := Normalize(v); cleaned != nil {
			out[k] = cleaned
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func joinSequence(items []any) any {
	parts := flatten(items, nil)
	if len(parts) == 0 {
		return nil
	}
	return strings.Join(parts, ", ")
}

func flatten(items []any, parts []string) []string {
	for _, item := range items {
		switch v := item.(type) {
		case []any:
			parts = flatten(v, parts)
		case []string:
			for _, s := range v {
				if strings.TrimSpace(s) != "" {
					parts = append(parts, s)
				}
			}
		default:
			cleaned := Normalize(v)
			if cleaned == nil {
				continue
			}
			if s, ok := cleaned.(string); ok {
				parts = append(parts, s)
			} else {
				parts = append(parts, entity.FormatValue(cleaned))
			}
		}
	}
	return parts
}
