package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/diillson/aws-log-remediator/internal/domain/entity"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
	"github.com/diillson/aws-log-remediator/pkg/console"
)

const (
	reportBaseName = "log_remediator"
	reportS3Prefix = "log-remediator"
)

// summaryTable lista cada log group processado com o status da análise e da entrega.
func (uc *RemediationUseCase) summaryTable(s entity.RunSummary) types.TableInterface {
	table := uc.console.CreateTable()
	table.AddColumn("#")
	table.AddColumn("Log Group")
	table.AddColumn("Analysis")
	table.AddColumn("Attempts")
	table.AddColumn("Elapsed")
	table.AddColumn("Slack")

	for i, r := range s.Results {
		analysis := console.BrightGreen("OK")
		if !r.Success {
			analysis = console.BoldRed("FAILED")
		}
		delivered := console.BrightGreen("sent")
		if !r.Notified {
			delivered = console.BoldYellow("not sent")
		}
		table.AddRow(i+1, r.LogGroupName, analysis, r.Attempts, r.ElapsedLabel(), delivered)
	}
	return table
}

// exportReports grava os relatórios pedidos em REPORT_TYPES e, se houver
// bucket configurado, envia cada arquivo para o S3. Nada aqui é fatal.
func (uc *RemediationUseCase) exportReports(ctx context.Context, s entity.RunSummary) {
	if len(uc.cfg.ReportTypes) == 0 {
		return
	}
	log := uc.console.WithComponent(componentReport)

	var paths []string
	for _, reportType := range uc.cfg.ReportTypes {
		var (
			path string
			err  error
		)
		switch reportType {
		case "csv":
			path, err = uc.exportRepo.ExportResultsToCSV(s, reportBaseName, uc.cfg.ReportDir)
		case "json":
			path, err = uc.exportRepo.ExportResultsToJSON(s, reportBaseName, uc.cfg.ReportDir)
		case "pdf":
			path, err = uc.exportRepo.ExportResultsToPDF(s, reportBaseName, uc.cfg.ReportDir)
		default:
			log.LogWarning("Unsupported report type %q", reportType)
			continue
		}
		if err != nil {
			log.LogError("Failed to export report to %s: %s", reportType, err)
			continue
		}
		log.LogSuccess("Successfully exported report to %s: %s", reportType, path)
		paths = append(paths, path)
	}

	if uc.cfg.ReportS3Bucket == "" {
		return
	}
	for _, path := range paths {
		key := fmt.Sprintf("%s/%s/%s", reportS3Prefix, s.RunID, filepath.Base(path))
		uri, err := uc.awsRepo.UploadReport(ctx, uc.cfg.ReportS3Bucket, key, path)
		if err != nil {
			log.LogError("Failed to upload %s: %s", filepath.Base(path), err)
			continue
		}
		log.LogSuccess("Uploaded report to %s", uri)
	}
}
