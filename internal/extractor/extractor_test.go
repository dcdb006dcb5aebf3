package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   *float64
	}{
		{
			name:   "decimal with thousands separators",
			answer: "The total revenue is <extracted_data>1,234.50</extracted_data>.",
			want:   ptr(1234.5),
		},
		{
			name:   "plain integer",
			answer: "Headcount: <extracted_data>42</extracted_data>",
			want:   ptr(42),
		},
		{
			name:   "surrounding whitespace inside tags",
			answer: "<extracted_data>  99.9  </extracted_data>",
			want:   ptr(99.9),
		},
		{
			name:   "no tags",
			answer: "There is no numeric answer here.",
			want:   nil,
		},
		{
			name:   "unparsable span discarded silently",
			answer: "<extracted_data>N/A</extracted_data>",
			want:   nil,
		},
		{
			name:   "multiline span",
			answer: "<extracted_data>\n1500\n</extracted_data>",
			want:   ptr(1500),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.answer)
			assert.Equal(t, tt.answer, got.Answer, "answer text passes through untouched")
			if tt.want == nil {
				assert.Nil(t, got.Value)
				return
			}
			require.NotNil(t, got.Value)
			assert.InDelta(t, *tt.want, *got.Value, 1e-9)
		})
	}
}

func TestExtractTable(t *testing.T) {
	answer := `Here is the data:
<table_data>[{"Year": 2023, "Revenue": 15000}, {"Year": 2024, "Revenue": 18000}]</table_data>`

	got := Extract(answer)
	require.Len(t, got.Table, 2)
	assert.Equal(t, float64(2023), got.Table[0]["Year"])
	assert.Equal(t, float64(18000), got.Table[1]["Revenue"])
}

func TestExtractTableMalformedJSONDiscarded(t *testing.T) {
	got := Extract(`<table_data>[{"Year": 2023,]</table_data>`)
	assert.Nil(t, got.Table)
}

func TestExtractTableCaseInsensitiveTag(t *testing.T) {
	got := Extract(`<TABLE_DATA>[{"a": 1}]</TABLE_DATA>`)
	require.Len(t, got.Table, 1)
	assert.Equal(t, float64(1), got.Table[0]["a"])
}

func TestExtractBothPayloads(t *testing.T) {
	answer := `Total: <extracted_data>500</extracted_data>
<table_data>[{"Category": "Rent", "Amount": 500}]</table_data>`

	got := Extract(answer)
	require.NotNil(t, got.Value)
	assert.Equal(t, float64(500), *got.Value)
	require.Len(t, got.Table, 1)
}

func ptr(f float64) *float64 { return &f }
