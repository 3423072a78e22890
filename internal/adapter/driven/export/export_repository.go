package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/aws-log-remediator/internal/domain/entity"
	"github.com/diillson/aws-log-remediator/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

var csvHeaders = []string{
	"Run ID", "Account ID", "Region", "Log Group", "Success", "Attempts",
	"Elapsed (ms)", "Model", "Notified", "Explanation", "Error",
}

// ExportResultsToCSV grava uma linha por log group processado.
func (r *ExportRepositoryImpl) ExportResultsToCSV(summary entity.RunSummary, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeaders); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, res := range summary.Results {
		record := []string{
			summary.RunID,
			summary.AccountID,
			summary.Region,
			res.LogGroupName,
			strconv.FormatBool(res.Success),
			strconv.Itoa(res.Attempts),
			strconv.FormatInt(res.Elapsed.Milliseconds(), 10),
			res.Model,
			strconv.FormatBool(res.Notified),
			cleanRichTags(res.Explanation),
			cleanRichTags(res.Error),
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// jsonReport acrescenta os totais ao RunSummary.
type jsonReport struct {
	entity.RunSummary
	Processed   int   `json:"processed"`
	Succeeded   int   `json:"succeeded"`
	Failed      int   `json:"failed"`
	Undelivered int   `json:"undelivered"`
	DurationMS  int64 `json:"duration_ms"`
}

func (r *ExportRepositoryImpl) ExportResultsToJSON(summary entity.RunSummary, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	report := jsonReport{
		RunSummary:  summary,
		Processed:   len(summary.Results),
		Succeeded:   summary.Succeeded(),
		Failed:      summary.Failed(),
		Undelivered: summary.Undelivered(),
		DurationMS:  summary.Duration().Milliseconds(),
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportResultsToPDF gera uma página de resumo e uma seção por log group.
func (r *ExportRepositoryImpl) ExportResultsToPDF(summary entity.RunSummary, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{51, 51, 51}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	generatedAt := time.Now().Format("2006-01-02")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Generated by AWS Log Remediator | %s", generatedAt)), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	drawSection := func(title string, content string, titleColor [3]int) {
		content = cleanRichTags(content)
		if strings.TrimSpace(content) == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(titleColor[0], titleColor[1], titleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	pdf.AddPage()

	// Header
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  CloudWatch Log Groups Analysis"), "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	account := summary.AccountID
	if account == "" {
		account = "unknown"
	}
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Account ID: %s   Region: %s", account, summary.Region)), "", 1, "L", true, 0, "")
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Run: %s", summary.RunID)), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	totals := fmt.Sprintf("Processed: %d\nSucceeded: %d\nFailed: %d\nNotifications not delivered: %d\nDuration: %s",
		len(summary.Results), summary.Succeeded(), summary.Failed(), summary.Undelivered(),
		summary.Duration().Round(time.Millisecond))
	drawSection("Summary", totals, sectionTitleColor)

	for _, res := range summary.Results {
		status := "OK"
		titleColor := [3]int{0, 128, 0}
		body := res.Explanation
		if !res.Success {
			status = "FAILED"
			titleColor = [3]int{192, 0, 0}
			body = "Error: " + res.Error
		}
		title := fmt.Sprintf("%s [%s]", res.LogGroupName, status)
		if len(title) > 90 {
			title = title[:87] + "..."
		}
		meta := fmt.Sprintf("Attempts: %d | Elapsed: %s | Notified: %t", res.Attempts, res.ElapsedLabel(), res.Notified)
		drawSection(title, meta+"\n\n"+body, titleColor)
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Funções Auxiliares ---

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
