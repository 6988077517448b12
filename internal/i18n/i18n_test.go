package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/pbc_analyzer_go/internal/analysis"
	"github.com/user/pbc_analyzer_go/internal/period"
)

func TestMatch(t *testing.T) {
	assert.Equal(t, English, Match("en"))
	assert.Equal(t, English, Match("en-GB"))
	assert.Equal(t, Spanish, Match("es-MX"))
	assert.Equal(t, Spanish, Match("de"))
	assert.Equal(t, English, Match("fr;q=0.9, en;q=0.8"))
	assert.Equal(t, Spanish, Match())
}

func TestTablesHaveSameKeys(t *testing.T) {
	for key := range tables[English] {
		_, ok := tables[Spanish][key]
		assert.True(t, ok, "spanish table missing %q", key)
	}
	assert.Len(t, tables[Spanish], len(tables[English]))
}

func TestMessage(t *testing.T) {
	en := New(English)
	es := New(Spanish)
	m := analysis.Message{Kind: analysis.Rule2Triggered, Index: 15}

	assert.Equal(t, "Rule 2 triggered: All last 8 data points above or below DPA", en.Message(m))
	assert.Contains(t, es.Message(m), "Regla 2 activada")
	assert.Equal(t, []string{
		"Baseline established with first 8 data points",
		"Rule 1 triggered: Data point outside control limits and MR > MRUCL",
	}, en.Messages([]analysis.Message{
		{Kind: analysis.BaselineEstablished, Index: 7},
		{Kind: analysis.Rule1Triggered, Index: 8},
	}))
}

func TestNew_FallsBackToSpanish(t *testing.T) {
	assert.Equal(t, Spanish, New(Lang("fr")).Lang())
	assert.Equal(t, "Umbral 2", New(Lang("fr")).ThresholdLabel(2))
	assert.Equal(t, "Threshold 1", New(English).ThresholdLabel(1))
}

func TestInsufficientData(t *testing.T) {
	assert.Equal(t, "Not enough data. Need at least 8 data points.", New(English).InsufficientData())
	assert.Contains(t, New(Spanish).InsufficientData(), "8 puntos")
}

func TestCSVHeader(t *testing.T) {
	h := New(English).CSVHeader(period.Week)
	assert.Len(t, h, 15)
	assert.Len(t, ColumnLetters, 15)
	assert.Equal(t, "Start Week", h[2])
	assert.Equal(t, "", h[13])
	assert.Equal(t, "Signal", h[14])

	assert.Equal(t, "Mes de Inicio", New(Spanish).CSVHeader(period.Month)[2])
}
