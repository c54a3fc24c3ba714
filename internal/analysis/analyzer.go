package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Terminal analysis errors. Messages are surfaced verbatim to the end user,
// so they are worded in Turkish like the rest of the UI.
var (
	ErrUnreadableFile = errors.New("Excel dosyası okunamadı. Lütfen geçerli bir .xlsx dosyası yükleyin.")
	ErrNoSheets       = errors.New("Excel dosyasında sayfa bulunamadı")
	ErrNoScoreColumn  = errors.New("Not sütunu bulunamadı. Lütfen Excel dosyasında 'Not', 'Vize', 'Final' veya 'Puan' sütunu olduğundan emin olun.")
	ErrNoValidScores  = errors.New("Geçerli not verisi bulunamadı. Notlar 0-100 arasında sayısal değerler olmalıdır.")
)

// PassingScore is the pass/fail threshold on the 100-point scale.
const PassingScore = 50.0

// GradeDistribution counts analyzed scores per letter grade, highest bucket first.
type GradeDistribution struct {
	AA int `json:"AA"`
	BA int `json:"BA"`
	BB int `json:"BB"`
	CB int `json:"CB"`
	CC int `json:"CC"`
	DC int `json:"DC"`
	DD int `json:"DD"`
	FD int `json:"FD"`
	FF int `json:"FF"`
}

func (d *GradeDistribution) add(score float64) {
	switch {
	case score >= 90:
		d.AA++
	case score >= 85:
		d.BA++
	case score >= 80:
		d.BB++
	case score >= 75:
		d.CB++
	case score >= 70:
		d.CC++
	case score >= 65:
		d.DC++
	case score >= 60:
		d.DD++
	case score >= PassingScore:
		d.FD++
	default:
		d.FF++
	}
}

// Total returns the sum of all bucket counts.
func (d GradeDistribution) Total() int {
	return d.AA + d.BA + d.BB + d.CB + d.CC + d.DC + d.DD + d.FD + d.FF
}

// Result holds the statistics computed from one uploaded grade sheet.
// Real-valued fields are rounded to two decimals.
type Result struct {
	MinScore    float64 `json:"minScore"`
	MaxScore    float64 `json:"maxScore"`
	AvgScore    float64 `json:"avgScore"`
	MedianScore float64 `json:"medianScore"`
	StdDev      float64 `json:"stdDev"`

	StudentCnt int     `json:"studentCnt"`
	PassCount  int     `json:"passCount"`
	FailCount  int     `json:"failCount"`
	PassRate   float64 `json:"passRate"`

	GradeDistribution GradeDistribution `json:"gradeDistribution"`
}

// Known score column headers, checked in priority order: an exam-specific
// column (Final, Vize) wins over a generic one (Not, Puan, ...).
var scoreColumnCandidates = []string{
	"Final", "final", "FINAL",
	"Vize", "vize", "VIZE",
	"Not", "not", "NOTE",
	"Puan", "puan", "PUAN",
	"Score", "score", "SCORE",
	"Ortalama", "ortalama",
}

// Analyzer turns raw spreadsheet bytes into a grade statistics Result.
// It is stateless; a single instance is shared across requests.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze reads an .xlsx/.xls workbook and computes grade statistics for the
// score column of the grade sheet. It either returns a complete Result or an
// error; there is no partial output.
func (a *Analyzer) Analyze(data []byte) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheetName, err := selectGradeSheet(f)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}

	records := rowsToRecords(rows)

	column, ok := detectScoreColumn(records)
	if !ok {
		return nil, ErrNoScoreColumn
	}

	scores := extractScores(records, column)
	if len(scores) == 0 {
		return nil, ErrNoValidScores
	}

	return computeResult(scores), nil
}

// selectGradeSheet picks the sheet holding student grades: the first sheet
// whose name contains "not" or "öğrenci" (case-insensitive), falling back to
// the first sheet in the workbook.
func selectGradeSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", ErrNoSheets
	}
	for _, name := range sheets {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "not") || strings.Contains(lower, "öğrenci") {
			return name, nil
		}
	}
	return sheets[0], nil
}

// record maps a column header to the cell text of one data row. Empty cells
// are omitted, so presence of a key means the row has a value there.
type record struct {
	headers []string
	values  map[string]string
}

func rowsToRecords(rows [][]string) []record {
	if len(rows) < 2 {
		return nil
	}
	headers := rows[0]

	records := make([]record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		values := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" || i >= len(row) {
				continue
			}
			if cell := strings.TrimSpace(row[i]); cell != "" {
				values[header] = cell
			}
		}
		if len(values) > 0 {
			records = append(records, record{headers: headers, values: values})
		}
	}
	return records
}

// detectScoreColumn identifies the column holding scores. First pass: the
// known header names in priority order against the first data record. Second
// pass: the first column (in header order) whose value in the first record is
// numeric.
func detectScoreColumn(records []record) (string, bool) {
	if len(records) == 0 {
		return "", false
	}
	first := records[0]

	for _, candidate := range scoreColumnCandidates {
		if _, ok := first.values[candidate]; ok {
			return candidate, true
		}
	}

	for _, header := range first.headers {
		if value, ok := first.values[header]; ok && isNumeric(value) {
			return header, true
		}
	}
	return "", false
}

// extractScores collects the usable score values: numeric and within [0,100].
// Everything else (text, blanks, out-of-range values) is dropped silently.
func extractScores(records []record, column string) []float64 {
	scores := make([]float64, 0, len(records))
	for _, rec := range records {
		value, ok := rec.values[column]
		if !ok {
			continue
		}
		score, err := parseNumber(value)
		if err != nil {
			continue
		}
		if score < 0 || score > 100 {
			continue
		}
		scores = append(scores, score)
	}
	return scores
}

func computeResult(scores []float64) *Result {
	min, max := scores[0], scores[0]
	sum := 0.0
	passCount := 0
	var dist GradeDistribution

	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
		sum += s
		if s >= PassingScore {
			passCount++
		}
		dist.add(s)
	}

	n := len(scores)
	mean := sum / float64(n)
	failCount := n - passCount

	return &Result{
		MinScore:          round2(min),
		MaxScore:          round2(max),
		AvgScore:          round2(mean),
		MedianScore:       round2(median(scores)),
		StdDev:            round2(stdDev(scores, mean)),
		StudentCnt:        n,
		PassCount:         passCount,
		FailCount:         failCount,
		PassRate:          round2(float64(passCount) / float64(n) * 100),
		GradeDistribution: dist,
	}
}

// median of the values; for an even count, the mean of the two middle
// elements of the sorted set.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 != 0 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// stdDev is the population standard deviation (squared deviations divided by
// n, not n-1).
func stdDev(values []float64, mean float64) float64 {
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// round2 rounds half up to two decimal places. Applied only to final outputs;
// intermediate math keeps full precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isNumeric(s string) bool {
	_, err := parseNumber(s)
	return err == nil
}

var errNaNCell = errors.New("cell is NaN")

// parseNumber parses a cell as a score candidate. ParseFloat accepts the
// literal "NaN", which would poison every aggregate downstream, so it is
// rejected here. Infinities parse but fall outside [0,100].
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) {
		return 0, errNaNCell
	}
	return v, nil
}
