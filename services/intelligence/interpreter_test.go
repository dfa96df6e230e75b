package intelligence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlotSelection(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    SlotSelection
		matched bool
	}{
		{name: "bare number", text: "2", want: SlotSelection{Ordinal: 2, Hour: -1}, matched: true},
		{name: "bare number with spaces", text: "  3 ", want: SlotSelection{Ordinal: 3, Hour: -1}, matched: true},
		{name: "bare number with period", text: "1.", want: SlotSelection{Ordinal: 1, Hour: -1}, matched: true},
		{name: "spanish option", text: "la opción 2 por favor", want: SlotSelection{Ordinal: 2, Hour: -1}, matched: true},
		{name: "option without accent", text: "opcion 4", want: SlotSelection{Ordinal: 4, Hour: -1}, matched: true},
		{name: "english option", text: "the option 2", want: SlotSelection{Ordinal: 2, Hour: -1}, matched: true},
		{name: "hour selection", text: "el de las 10", want: SlotSelection{Ordinal: 0, Hour: 10}, matched: true},
		{name: "hour with am", text: "at 10 am", want: SlotSelection{Ordinal: 0, Hour: 10}, matched: true},
		{name: "hour with pm", text: "a las 4 pm", want: SlotSelection{Ordinal: 0, Hour: 16}, matched: true},
		{name: "plain question", text: "¿qué horarios tienen?", matched: false},
		{name: "large bare number", text: "2026", matched: false},
		{name: "number above option ceiling", text: "15", matched: false},
		{name: "empty", text: "", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSlotSelection(tt.text)
			require.Equal(t, tt.matched, ok)
			if tt.matched {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractPreferredDate(t *testing.T) {
	// Wednesday.
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		text    string
		want    string
		matched bool
	}{
		{name: "tomorrow", text: "puedo mañana", want: "2025-01-09", matched: true},
		{name: "morning is not tomorrow", text: "mejor en la mañana", matched: false},
		{name: "next monday", text: "el lunes me queda bien", want: "2025-01-13", matched: true},
		{name: "same weekday rolls a week", text: "el miércoles", want: "2025-01-15", matched: true},
		{name: "first of two weekdays wins", text: "lunes o martes", want: "2025-01-13", matched: true},
		{name: "mention order beats calendar order", text: "martes o lunes", want: "2025-01-14", matched: true},
		{name: "day slash month", text: "el 20/01 si se puede", want: "2025-01-20", matched: true},
		{name: "day month name", text: "el 3 de febrero", want: "2025-02-03", matched: true},
		{name: "past month rolls to next year", text: "el 15 de diciembre", want: "2025-12-15", matched: true},
		{name: "no date", text: "quiero informes de la escuela", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPreferredDate(tt.text, now)
			require.Equal(t, tt.matched, ok)
			if tt.matched {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractPreferredDatePastDayRollsForward(t *testing.T) {
	// A November mention of a January date belongs to the coming year.
	now := time.Date(2024, 11, 20, 12, 0, 0, 0, time.UTC)
	got, ok := ExtractPreferredDate("el 10 de enero", now)
	require.True(t, ok)
	assert.Equal(t, "2025-01-10", got)
}

func TestClassifyNoteKeywords(t *testing.T) {
	notes := ClassifyNoteKeywords("¿Tienen becas disponibles? También quiero saber el costo")
	require.Len(t, notes, 2)
	assert.Contains(t, notes[0], "beca")
	assert.Contains(t, notes[1], "costos")

	assert.Empty(t, ClassifyNoteKeywords("hola, buenos días"))

	// Only one note per category regardless of how many keywords match.
	single := ClassifyNoteKeywords("beca o apoyo financiero o descuento")
	assert.Len(t, single, 1)
}
