package main

import (
	"context"
	"fmt"
	"os"

	"github.com/diillson/aws-log-remediator/internal/adapter/driven/aws"
	"github.com/diillson/aws-log-remediator/internal/adapter/driven/config"
	"github.com/diillson/aws-log-remediator/internal/adapter/driven/export"
	"github.com/diillson/aws-log-remediator/internal/adapter/driven/openai"
	"github.com/diillson/aws-log-remediator/internal/adapter/driven/slack"
	"github.com/diillson/aws-log-remediator/internal/adapter/driving/cli"
	"github.com/diillson/aws-log-remediator/internal/application/usecase"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
	"github.com/diillson/aws-log-remediator/pkg/console"
	"github.com/diillson/aws-log-remediator/pkg/version"
)

func main() {
	consoleImpl := console.NewConsole()
	configRepo := config.NewConfigRepository()

	// Os adaptadores só são criados depois que a configuração foi resolvida.
	newRunner := func(ctx context.Context, cfg *types.Config) (cli.Runner, error) {
		awsRepo, err := aws.NewAWSRepository(ctx, cfg)
		if err != nil {
			return nil, err
		}

		return usecase.NewRemediationUseCase(
			cfg,
			awsRepo,
			openai.NewInsightRepository(cfg),
			slack.NewNotifierRepository(cfg),
			export.NewExportRepository(),
			consoleImpl,
		), nil
	}

	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version, configRepo, consoleImpl, newRunner)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
