// Package i18n holds the English and Spanish strings shown to users.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/user/pbc_analyzer_go/internal/analysis"
	"github.com/user/pbc_analyzer_go/internal/period"
)

// Lang is a supported display language.
type Lang string

const (
	Spanish Lang = "es"
	English Lang = "en"
)

// supported is ordered by preference; the first entry is the fallback.
var (
	supported = []Lang{Spanish, English}
	matcher   = language.NewMatcher([]language.Tag{language.Spanish, language.English})
)

// Match picks the supported language closest to the given BCP 47 tags, for
// example "en-GB" or "es-419,es;q=0.9". Unknown tags fall back to Spanish.
func Match(tags ...string) Lang {
	_, idx := language.MatchStrings(matcher, tags...)
	return supported[idx]
}

// Key names a translatable string.
type Key string

const (
	Title             Key = "title"
	TimeUnit          Key = "timeUnit"
	Months            Key = "months"
	Weeks             Key = "weeks"
	StartMonth        Key = "startMonth"
	StartWeek         Key = "startWeek"
	StartYear         Key = "startYear"
	DataPoints        Key = "dataPoints"
	Results           Key = "results"
	BaselineMsg       Key = "baselineEstablished"
	NotEnoughData     Key = "notEnoughData"
	Rule1Msg          Key = "rule1Triggered"
	Rule2Msg          Key = "rule2Triggered"
	Rule3Msg          Key = "rule3Triggered"
	DPA               Key = "dpa"
	MRA               Key = "mra"
	LCL               Key = "lcl"
	DLA               Key = "dla"
	DUA               Key = "dua"
	UCL               Key = "ucl"
	MRUCL             Key = "mrucl"
	DataPoint         Key = "dataPoint"
	MovingRange       Key = "movingRange"
	RuleApplied       Key = "ruleApplied"
	Signal            Key = "signal"
	Thresholds        Key = "thresholds"
	ThresholdDefault  Key = "thresholdDefault"
	XChartTitle       Key = "xChartTitle"
	RangeChartTitle   Key = "rangeChartTitle"
	Period            Key = "period"
	GeneratedAt       Key = "generatedAt"
	RunID             Key = "runID"
	NoThresholds      Key = "noThresholds"
	SignalPointsLabel Key = "signalPoints"
	ChartUnavailable  Key = "chartUnavailable"
)

var tables = map[Lang]map[Key]string{
	English: {
		Title:             "Process Behavior Calculator",
		TimeUnit:          "Time Unit",
		Months:            "Months",
		Weeks:             "Weeks",
		StartMonth:        "Start Month",
		StartWeek:         "Start Week",
		StartYear:         "Start Year",
		DataPoints:        "Data Points",
		Results:           "Results",
		BaselineMsg:       "Baseline established with first 8 data points",
		NotEnoughData:     "Not enough data. Need at least 8 data points.",
		Rule1Msg:          "Rule 1 triggered: Data point outside control limits and MR > MRUCL",
		Rule2Msg:          "Rule 2 triggered: All last 8 data points above or below DPA",
		Rule3Msg:          "Rule 3 triggered: At least 3 of last 4 data points above DUA or below DLA",
		DPA:               "Data Points Average (DPA)",
		MRA:               "Moving Range Average (MRA)",
		LCL:               "Lower Control Limit (LCL)",
		DLA:               "DPA-LCL Average (DLA)",
		DUA:               "DPA-UCL Average (DUA)",
		UCL:               "Upper Control Limit (UCL)",
		MRUCL:             "Moving Range Upper Control Limit (MRUCL)",
		DataPoint:         "Data Point",
		MovingRange:       "Moving Range (MR)",
		RuleApplied:       "Rule Applied",
		Signal:            "Signal",
		Thresholds:        "Threshold Lines",
		ThresholdDefault:  "Threshold %d",
		XChartTitle:       "Process Behavior Chart",
		RangeChartTitle:   "Moving Range Chart",
		Period:            "Period",
		GeneratedAt:       "Generated",
		RunID:             "Run",
		NoThresholds:      "No threshold lines.",
		SignalPointsLabel: "Signals",
		ChartUnavailable:  "Chart not available.",
	},
	Spanish: {
		Title:             "Calculadora de Comportamiento de Proceso",
		TimeUnit:          "Unidad de Tiempo",
		Months:            "Meses",
		Weeks:             "Semanas",
		StartMonth:        "Mes de Inicio",
		StartWeek:         "Semana de Inicio",
		StartYear:         "Año de Inicio",
		DataPoints:        "Datos",
		Results:           "Resultados",
		BaselineMsg:       "Línea base establecida con los primeros 8 puntos de datos",
		NotEnoughData:     "Datos insuficientes. Se necesitan al menos 8 puntos de datos.",
		Rule1Msg:          "Regla 1 activada: Punto de datos fuera de los límites de control y MR > MRUCL",
		Rule2Msg:          "Regla 2 activada: Todos los últimos 8 puntos de datos están por encima o por debajo del DPA",
		Rule3Msg:          "Regla 3 activada: Al menos 3 de los últimos 4 puntos de datos están por encima del DUA o por debajo del DLA",
		DPA:               "Promedio de Puntos de Datos (DPA)",
		MRA:               "Promedio de Rangos Móviles (MRA)",
		LCL:               "Límite de Control Inferior (LCL)",
		DLA:               "Promedio DPA-LCL (DLA)",
		DUA:               "Promedio DPA-UCL (DUA)",
		UCL:               "Límite de Control Superior (UCL)",
		MRUCL:             "Límite de Control Superior del Rango Móvil (MRUCL)",
		DataPoint:         "Punto de Datos",
		MovingRange:       "Rango Móvil (MR)",
		RuleApplied:       "Regla Aplicada",
		Signal:            "Señal",
		Thresholds:        "Líneas de Umbral",
		ThresholdDefault:  "Umbral %d",
		XChartTitle:       "Gráfico de Comportamiento de Proceso",
		RangeChartTitle:   "Gráfico de Rangos Móviles",
		Period:            "Periodo",
		GeneratedAt:       "Generado",
		RunID:             "Ejecución",
		NoThresholds:      "Sin líneas de umbral.",
		SignalPointsLabel: "Señales",
		ChartUnavailable:  "Gráfico no disponible.",
	},
}

var messageKeys = map[analysis.MessageKind]Key{
	analysis.BaselineEstablished: BaselineMsg,
	analysis.Rule1Triggered:      Rule1Msg,
	analysis.Rule2Triggered:      Rule2Msg,
	analysis.Rule3Triggered:      Rule3Msg,
}

// Translator resolves keys for one language.
type Translator struct {
	lang Lang
}

// New returns a Translator for lang; unsupported values fall back to Spanish.
func New(lang Lang) Translator {
	if _, ok := tables[lang]; !ok {
		lang = supported[0]
	}
	return Translator{lang: lang}
}

// Lang reports the active language.
func (t Translator) Lang() Lang { return t.lang }

// Text returns the string for key, or the key itself if it has no entry.
func (t Translator) Text(key Key) string {
	if s, ok := tables[t.lang][key]; ok {
		return s
	}
	return string(key)
}

// Message renders an engine event.
func (t Translator) Message(m analysis.Message) string {
	key, ok := messageKeys[m.Kind]
	if !ok {
		return m.Kind.String()
	}
	return t.Text(key)
}

// Messages renders events in order.
func (t Translator) Messages(msgs []analysis.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = t.Message(m)
	}
	return out
}

// InsufficientData is the error text shown when the series is too short.
func (t Translator) InsufficientData() string {
	return t.Text(NotEnoughData)
}

// ThresholdLabel is the default label of the n-th threshold line.
func (t Translator) ThresholdLabel(n int) string {
	return fmt.Sprintf(t.Text(ThresholdDefault), n)
}

// PeriodHeader is the column title for the period number.
func (t Translator) PeriodHeader(unit period.Unit) string {
	if unit == period.Week {
		return t.Text(StartWeek)
	}
	return t.Text(StartMonth)
}

// ColumnLetters is the spreadsheet-style first line of the CSV export.
var ColumnLetters = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N", "O"}

// CSVHeader returns the 15 localized column titles of the CSV export.
func (t Translator) CSVHeader(unit period.Unit) []string {
	return []string{
		"No.",
		t.Text(StartYear),
		t.PeriodHeader(unit),
		t.Text(DataPoint),
		t.Text(DPA),
		t.Text(MovingRange),
		t.Text(MRA),
		t.Text(LCL),
		t.Text(DLA),
		t.Text(DUA),
		t.Text(UCL),
		t.Text(MRUCL),
		t.Text(RuleApplied),
		"",
		t.Text(Signal),
	}
}
