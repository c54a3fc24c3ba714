package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook creates a single-sheet workbook with the given header row and
// data rows and returns its raw bytes.
func buildWorkbook(t *testing.T, sheetName string, header []interface{}, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheetName))
	require.NoError(t, f.SetSheetRow(sheetName, "A1", &header))
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		require.NoError(t, f.SetSheetRow(sheetName, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestAnalyze_FiltersInvalidRows(t *testing.T) {
	data := buildWorkbook(t, "Notlar",
		[]interface{}{"Öğrenci No", "Not"},
		[][]interface{}{
			{"2021001", 85},
			{"2021002", "abc"},
			{"2021003", 150},
			{"2021004", -5},
			{"2021005", 50},
			{"2021006", "NaN"},
			{"2021007", "nan"},
		})

	result, err := NewAnalyzer().Analyze(data)
	require.NoError(t, err)

	assert.Equal(t, 2, result.StudentCnt)
	assert.Equal(t, 50.0, result.MinScore)
	assert.Equal(t, 85.0, result.MaxScore)
	assert.Equal(t, 67.5, result.AvgScore)
	assert.Equal(t, 2, result.PassCount)
	assert.Equal(t, 0, result.FailCount)
	assert.Equal(t, 100.0, result.PassRate)
	assert.Equal(t, 1, result.GradeDistribution.BA)
	assert.Equal(t, 1, result.GradeDistribution.FD)
}

func TestAnalyze_GradeBoundaries(t *testing.T) {
	data := buildWorkbook(t, "Notlar",
		[]interface{}{"Not"},
		[][]interface{}{{90}, {89.9}, {50}, {49.9}, {0}})

	result, err := NewAnalyzer().Analyze(data)
	require.NoError(t, err)

	assert.Equal(t, 5, result.StudentCnt)
	assert.Equal(t, 1, result.GradeDistribution.AA)
	assert.Equal(t, 1, result.GradeDistribution.BA)
	assert.Equal(t, 1, result.GradeDistribution.FD)
	assert.Equal(t, 2, result.GradeDistribution.FF)
	assert.Equal(t, result.StudentCnt, result.GradeDistribution.Total())
}

func TestAnalyze_MedianEvenCount(t *testing.T) {
	data := buildWorkbook(t, "Notlar",
		[]interface{}{"Not"},
		[][]interface{}{{10}, {20}, {30}, {40}})

	result, err := NewAnalyzer().Analyze(data)
	require.NoError(t, err)

	assert.Equal(t, 25.0, result.MedianScore)
	assert.Equal(t, 25.0, result.AvgScore)
	// population std dev: sqrt(((15^2)*2 + (5^2)*2) / 4)
	assert.Equal(t, 11.18, result.StdDev)
}

func TestAnalyze_MedianOddCount(t *testing.T) {
	data := buildWorkbook(t, "Notlar",
		[]interface{}{"Not"},
		[][]interface{}{{10}, {20}, {30}})

	result, err := NewAnalyzer().Analyze(data)
	require.NoError(t, err)

	assert.Equal(t, 20.0, result.MedianScore)
}

func TestAnalyze_ColumnPriority(t *testing.T) {
	// Both Final and Vize present: Final is earlier in the candidate list.
	data := buildWorkbook(t, "Notlar",
		[]interface{}{"Öğrenci No", "Vize", "Final"},
		[][]interface{}{
			{"2021001", 10, 80},
			{"2021002", 20, 90},
		})

	result, err := NewAnalyzer().Analyze(data)
	require.NoError(t, err)

	assert.Equal(t, 85.0, result.AvgScore)
	assert.Equal(t, 80.0, result.MinScore)
}

func TestAnalyze_NumericColumnFallback(t *testing.T) {
	data := buildWorkbook(t, "Notlar",
		[]interface{}{"Ad Soyad", "Toplam"},
		[][]interface{}{
			{"Ayşe Yılmaz", 77},
			{"Ahmet Demir", 63},
		})

	result, err := NewAnalyzer().Analyze(data)
	require.NoError(t, err)

	assert.Equal(t, 2, result.StudentCnt)
	assert.Equal(t, 70.0, result.AvgScore)
}

func TestAnalyze_SelectsGradeSheetByName(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Bilgi"))
	require.NoError(t, f.SetSheetRow("Bilgi", "A1", &[]interface{}{"Açıklama"}))
	require.NoError(t, f.SetSheetRow("Bilgi", "A2", &[]interface{}{"Kullanım talimatları"}))

	_, err := f.NewSheet("Öğrenci Notları")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Öğrenci Notları", "A1", &[]interface{}{"Not"}))
	require.NoError(t, f.SetSheetRow("Öğrenci Notları", "A2", &[]interface{}{75}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := NewAnalyzer().Analyze(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, 1, result.StudentCnt)
	assert.Equal(t, 75.0, result.AvgScore)
}

func TestAnalyze_NoValidScores(t *testing.T) {
	data := buildWorkbook(t, "Notlar",
		[]interface{}{"Not"},
		[][]interface{}{{"girmedi"}, {"muaf"}})

	_, err := NewAnalyzer().Analyze(data)
	assert.ErrorIs(t, err, ErrNoValidScores)
}

func TestAnalyze_NoScoreColumn(t *testing.T) {
	t.Run("no recognizable column", func(t *testing.T) {
		data := buildWorkbook(t, "Notlar",
			[]interface{}{"Ad Soyad"},
			[][]interface{}{{"Ayşe Yılmaz"}})

		_, err := NewAnalyzer().Analyze(data)
		assert.ErrorIs(t, err, ErrNoScoreColumn)
	})

	t.Run("header only", func(t *testing.T) {
		data := buildWorkbook(t, "Notlar", []interface{}{"Not"}, nil)

		_, err := NewAnalyzer().Analyze(data)
		assert.ErrorIs(t, err, ErrNoScoreColumn)
	})
}

func TestAnalyze_MalformedFile(t *testing.T) {
	_, err := NewAnalyzer().Analyze([]byte("this is not a spreadsheet"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSheets)
	assert.NotErrorIs(t, err, ErrNoScoreColumn)
}

func TestAnalyze_FullSheet(t *testing.T) {
	// 45 rows under a "Puan" header: 30 valid scores averaging 62.5
	// (25, 95, 81 and 27 times 62) plus 15 unusable rows.
	rows := [][]interface{}{
		{"2021001", 25},
		{"2021002", 95},
		{"2021003", 81},
	}
	for i := 0; i < 27; i++ {
		rows = append(rows, []interface{}{fmt.Sprintf("20210%02d", i+4), 62})
	}
	for i := 0; i < 5; i++ {
		rows = append(rows, []interface{}{fmt.Sprintf("20211%02d", i), "girmedi"})
		rows = append(rows, []interface{}{fmt.Sprintf("20212%02d", i), 150})
		rows = append(rows, []interface{}{fmt.Sprintf("20213%02d", i), -5})
	}
	data := buildWorkbook(t, "Notlar", []interface{}{"Öğrenci No", "Puan"}, rows)

	result, err := NewAnalyzer().Analyze(data)
	require.NoError(t, err)

	assert.Equal(t, 30, result.StudentCnt)
	assert.Equal(t, 62.5, result.AvgScore)
	assert.Equal(t, 25.0, result.MinScore)
	assert.Equal(t, 95.0, result.MaxScore)
	assert.Equal(t, 29, result.PassCount)
	assert.Equal(t, 1, result.FailCount)
	assert.Equal(t, 96.67, result.PassRate)

	// Structural invariants.
	assert.LessOrEqual(t, result.MinScore, result.AvgScore)
	assert.LessOrEqual(t, result.AvgScore, result.MaxScore)
	assert.Equal(t, result.StudentCnt, result.PassCount+result.FailCount)
	assert.Equal(t, result.StudentCnt, result.GradeDistribution.Total())
}
