package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diillson/aws-log-remediator/internal/domain/entity"
	"github.com/diillson/aws-log-remediator/internal/domain/repository"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
	"github.com/diillson/aws-log-remediator/pkg/version"
)

// Runner executa uma rodada completa do pipeline.
type Runner interface {
	Run(ctx context.Context) (entity.RunSummary, error)
}

// RunnerFactory monta o pipeline a partir da configuração já resolvida.
// Só é chamada depois que a configuração foi validada.
type RunnerFactory func(ctx context.Context, cfg *types.Config) (Runner, error)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	console    types.ConsoleInterface
	newRunner  RunnerFactory
	version    string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string, configRepo repository.ConfigRepository, console types.ConsoleInterface, newRunner RunnerFactory) *CLIApp {
	app := &CLIApp{
		configRepo: configRepo,
		console:    console,
		newRunner:  newRunner,
		version:    versionStr,
	}

	rootCmd := &cobra.Command{
		Use:   "log-remediator",
		Short: "Explain CloudWatch log groups with an LLM and post the results to Slack",
		Long: `log-remediator lists the first CloudWatch log groups of the configured region,
asks the language model to explain each one and posts every result (or failure) to a
Slack incoming webhook.

All settings come from the environment, a .env file or remediator.{toml,yaml,json}.`,
		Version:       version.FormatVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          app.runCommand,
	}

	// Personaliza a template para incluir mais informações de versão
	rootCmd.SetVersionTemplate(`{{printf "AWS Log Remediator version: %s\n" .Version}}`)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// SetArgs repassa argumentos ao cobra (usado em testes).
func (app *CLIApp) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, _ []string) error {
	displayWelcomeBanner(cmd.OutOrStdout(), app.version)

	// Nenhuma chamada de rede acontece antes da configuração estar completa.
	cfg, err := app.configRepo.Resolve()
	if err != nil {
		app.console.WithComponent("config").LogError("%s", err)
		return err
	}

	if app.newRunner == nil {
		return fmt.Errorf("runner factory: %w", types.ErrMissingComponent)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runner, err := app.newRunner(ctx, cfg)
	if err != nil {
		app.console.WithComponent("setup").LogError("%s", err)
		return err
	}

	// Falhas por log group já foram registradas pelo caso de uso; só o
	// erro de listagem interrompe a execução.
	_, err = runner.Run(ctx)
	return err
}
