// Package extractor parses tagged numeric and tabular payloads out of
// free-text model answers. Both extractions are best-effort annotations:
// absence or malformed content is a normal outcome, never an error.
package extractor

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ExtractedAnswer is the answer text plus whatever structured payloads could
// be parsed out of it.
type ExtractedAnswer struct {
	Answer string           `json:"answer"`
	Value  *float64         `json:"extracted_value,omitempty"`
	Table  []map[string]any `json:"extracted_table,omitempty"`
}

var (
	valueRe = regexp.MustCompile(`(?s)<extracted_data>\s*(.*?)\s*</extracted_data>`)
	tableRe = regexp.MustCompile(`(?is)<table_data\s*>\s*(.*?)\s*</table_data\s*>`)
)

// Extract runs both extraction passes over the answer text.
func Extract(answer string) ExtractedAnswer {
	return ExtractedAnswer{
		Answer: answer,
		Value:  extractValue(answer),
		Table:  extractTable(answer),
	}
}

func extractValue(answer string) *float64 {
	match := valueRe.FindStringSubmatch(answer)
	if match == nil {
		return nil
	}
	raw := strings.ReplaceAll(match[1], ",", "")

	if strings.Contains(raw, ".") {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Debug().Str("value", match[1]).Msg("discarding unparsable extracted_data span")
			return nil
		}
		return &v
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Debug().Str("value", match[1]).Msg("discarding unparsable extracted_data span")
		return nil
	}
	v := float64(n)
	return &v
}

func extractTable(answer string) []map[string]any {
	match := tableRe.FindStringSubmatch(answer)
	if match == nil {
		return nil
	}

	var rows []map[string]any
	if err := json.Unmarshal([]byte(match[1]), &rows); err != nil {
		log.Debug().Err(err).Msg("discarding unparsable table_data span")
		return nil
	}
	return rows
}
