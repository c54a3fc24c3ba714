package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TemplateService builds the downloadable Excel workbooks lecturers fill in:
// grade entry sheets per exam type and the learning outcome (DÖÇ) bulk sheet.
type TemplateService interface {
	GradeTemplate(examType, courseCode, courseName string) ([]byte, string, error)
	OutcomeTemplate() ([]byte, string, error)
}

type templateService struct {
	logger *slog.Logger
}

func NewTemplateService(logger *slog.Logger) TemplateService {
	return &templateService{logger: logger}
}

// GradeTemplate returns the workbook bytes and the suggested file name.
// Unknown exam types fall back to the general template.
func (s *templateService) GradeTemplate(examType, courseCode, courseName string) ([]byte, string, error) {
	if courseCode == "" {
		courseCode = "DERS101"
	}
	if courseName == "" {
		courseName = "Örnek Ders"
	}

	f := excelize.NewFile()
	defer f.Close()

	var err error
	fileName := fmt.Sprintf("AKPYS_%s_%s.xlsx", courseCode, strings.ToUpper(examType))
	switch examType {
	case "vize":
		err = s.buildExamTemplate(f, courseCode, courseName, "VİZE", "Vize Notları", "Vize Notu",
			"YÖKAK Uyarısı", "Notları 0-100 arası girin. Sistem otomatik hesaplama yapar.")
	case "final":
		err = s.buildExamTemplate(f, courseCode, courseName, "FİNAL", "Final Notları", "Final Notu",
			"YÖKAK Notu", "Vize ve Final notlarını ayrı ayrı sisteme yükleyin.")
	case "butunleme":
		err = s.buildExamTemplate(f, courseCode, courseName, "BÜTÜNLEME", "Bütünleme Notları", "Bütünleme Notu",
			"Önemli", "Sadece bütünlemeye giren öğrencilerin notlarını girin.")
	default:
		fileName = "AKPYS_Not_Taslagi.xlsx"
		err = s.buildGeneralTemplate(f)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to build grade template: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize grade template: %w", err)
	}

	s.logger.Debug("Grade template generated", "exam_type", examType, "course_code", courseCode)
	return buf.Bytes(), fileName, nil
}

func (s *templateService) buildGeneralTemplate(f *excelize.File) error {
	f.SetSheetName(f.GetSheetName(0), "Bilgi")
	infoRows := [][]interface{}{
		{"AKPYS - Akademik Kalite Yönetim Sistemi"},
		{""},
		{"GENEL NOT GİRİŞ ŞABLONU"},
		{""},
		{"KULLANIM:"},
		{"1. 'Notlar' sayfasına öğrenci bilgilerini girin"},
		{"2. Notları 0-100 arası sayısal değer olarak girin"},
		{"3. Dosyayı sisteme yükleyin"},
	}
	if err := writeRows(f, "Bilgi", infoRows); err != nil {
		return err
	}
	if err := f.SetColWidth("Bilgi", "A", "A", 50); err != nil {
		return err
	}

	if _, err := f.NewSheet("Notlar"); err != nil {
		return err
	}
	gradeRows := [][]interface{}{
		{"Öğrenci No", "Ad Soyad", "Not"},
		{"2021001", "Örnek Öğrenci 1", 75},
		{"2021002", "Örnek Öğrenci 2", 60},
		{"2021003", "Örnek Öğrenci 3", 45},
	}
	if err := writeRows(f, "Notlar", gradeRows); err != nil {
		return err
	}
	return f.SetColWidth("Notlar", "A", "C", 20)
}

func (s *templateService) buildExamTemplate(f *excelize.File, courseCode, courseName, examLabel, gradeSheet, gradeColumn, noteField, noteText string) error {
	f.SetSheetName(f.GetSheetName(0), "Ders Bilgisi")
	infoRows := [][]interface{}{
		{"Alan", "Değer"},
		{"Ders Kodu", courseCode},
		{"Ders Adı", courseName},
		{"Sınav Türü", examLabel},
		{"Akademik Yıl", "2024-2025"},
		{"Dönem", "Güz"},
		{"", ""},
		{noteField, noteText},
	}
	if err := writeRows(f, "Ders Bilgisi", infoRows); err != nil {
		return err
	}
	if err := f.SetColWidth("Ders Bilgisi", "A", "B", 30); err != nil {
		return err
	}

	if _, err := f.NewSheet(gradeSheet); err != nil {
		return err
	}
	gradeRows := [][]interface{}{
		{"Öğrenci No", "Ad Soyad", gradeColumn, "Açıklama"},
		{"2021001", "Örnek Öğrenci 1", 75, ""},
		{"2021002", "Örnek Öğrenci 2", 60, ""},
		{"2021003", "Örnek Öğrenci 3", 45, "Sınava girmedi"},
	}
	if err := writeRows(f, gradeSheet, gradeRows); err != nil {
		return err
	}
	if err := f.SetColWidth(gradeSheet, "A", "D", 20); err != nil {
		return err
	}

	if _, err := f.NewSheet("Soru-DÖÇ Eşleştirme"); err != nil {
		return err
	}
	mappingRows := [][]interface{}{
		{"Soru No", "DÖÇ1", "DÖÇ2", "DÖÇ3", "Puan"},
		{1, 1, 0, 0, 20},
		{2, 0, 1, 0, 25},
		{3, 1, 1, 0, 25},
		{4, 0, 0, 1, 15},
		{5, 0, 1, 1, 15},
	}
	if err := writeRows(f, "Soru-DÖÇ Eşleştirme", mappingRows); err != nil {
		return err
	}
	return f.SetColWidth("Soru-DÖÇ Eşleştirme", "A", "E", 10)
}

// OutcomeTemplate builds the DÖÇ bulk upload workbook with usage notes, an
// example outcome list and a question mapping example.
func (s *templateService) OutcomeTemplate() ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), "Kullanım Kılavuzu")
	infoRows := [][]interface{}{
		{"YÖKAK DÖÇ Toplu Yükleme Şablonu"},
		{""},
		{"KULLANIM TALİMATLARI:"},
		{"1. 'DÖÇ Listesi' sayfasını doldurun"},
		{"2. Her satıra bir DÖÇ (Ders Öğrenme Çıktısı) girin"},
		{"3. Kod alanına DÖÇ1, DÖÇ2 gibi kodlar yazın"},
		{"4. Açıklama alanına öğrenme çıktısını yazın"},
		{"5. Dosyayı kaydedin ve sisteme yükleyin"},
	}
	if err := writeRows(f, "Kullanım Kılavuzu", infoRows); err != nil {
		return nil, "", fmt.Errorf("failed to build outcome template: %w", err)
	}
	if err := f.SetColWidth("Kullanım Kılavuzu", "A", "A", 60); err != nil {
		return nil, "", err
	}

	if _, err := f.NewSheet("DÖÇ Listesi"); err != nil {
		return nil, "", err
	}
	outcomeRows := [][]interface{}{
		{"Kod", "Açıklama", "Ağırlık"},
		{"DÖÇ1", "Temel mesleki kavramları açıklayabilir", 1.0},
		{"DÖÇ2", "Problemleri analiz edebilir ve çözüm önerileri geliştirebilir", 1.0},
		{"DÖÇ3", "Ekip çalışmasına uyum sağlar ve iletişim becerilerini kullanır", 1.0},
		{"DÖÇ4", "Mesleki etik değerlere uygun davranır", 1.0},
		{"DÖÇ5", "Güncel teknolojileri takip eder ve uygular", 1.0},
	}
	if err := writeRows(f, "DÖÇ Listesi", outcomeRows); err != nil {
		return nil, "", fmt.Errorf("failed to build outcome template: %w", err)
	}
	if err := f.SetColWidth("DÖÇ Listesi", "B", "B", 60); err != nil {
		return nil, "", err
	}

	if _, err := f.NewSheet("Soru-DÖÇ Eşleştirme"); err != nil {
		return nil, "", err
	}
	mappingRows := [][]interface{}{
		{"Soru No", "Puan", "DÖÇ Kodu", "Öğrenci Ort. Puanı", "Açıklama"},
		{1, 20, "DÖÇ1", 15, "Kavram sorusu"},
		{2, 25, "DÖÇ2", 18, "Problem çözme"},
		{3, 20, "DÖÇ3", 16, "Grup çalışması"},
		{4, 15, "DÖÇ4", 12, "Etik değerlendirme"},
		{5, 20, "DÖÇ5", 17, "Teknoloji uygulaması"},
	}
	if err := writeRows(f, "Soru-DÖÇ Eşleştirme", mappingRows); err != nil {
		return nil, "", fmt.Errorf("failed to build outcome template: %w", err)
	}
	if err := f.SetColWidth("Soru-DÖÇ Eşleştirme", "A", "E", 20); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize outcome template: %w", err)
	}

	s.logger.Debug("Outcome template generated")
	return buf.Bytes(), "YOKAK_DOC_Sablonu.xlsx", nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
