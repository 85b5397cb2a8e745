package regen

import "strings"

// Criteria selects which records a pass regenerates. IDs take precedence
// over ModelType; both empty selects every record.
type Criteria struct {
	ModelType string
	IDs       []string
}

// ParseIDs normalizes raw --ids values. Each value may hold one id or a
// comma-delimited list. Every token is kept literally, empty ones included,
// so only an absent flag means "no ids".
func ParseIDs(raw []string) []string {
	var ids []string
	for _, value := range raw {
		ids = append(ids, strings.Split(value, ",")...)
	}
	return ids
}
