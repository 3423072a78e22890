package repository

import (
	"github.com/diillson/aws-log-remediator/internal/domain/entity"
)

type ExportRepository interface {
	ExportResultsToCSV(summary entity.RunSummary, filename, outputDir string) (string, error)
	ExportResultsToJSON(summary entity.RunSummary, filename, outputDir string) (string, error)
	ExportResultsToPDF(summary entity.RunSummary, filename, outputDir string) (string, error)
}
