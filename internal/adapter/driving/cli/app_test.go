package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-log-remediator/internal/domain/entity"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
	"github.com/diillson/aws-log-remediator/pkg/console"
)

type fakeConfigRepo struct {
	cfg *types.Config
	err error
}

func (f fakeConfigRepo) LoadConfigFile(string) (*types.FileConfig, error) { return nil, nil }
func (f fakeConfigRepo) Resolve() (*types.Config, error)                  { return f.cfg, f.err }

type fakeRunner struct {
	calls int
	err   error
}

func (r *fakeRunner) Run(context.Context) (entity.RunSummary, error) {
	r.calls++
	return entity.RunSummary{}, r.err
}

func newTestApp(t *testing.T, repo fakeConfigRepo, factory RunnerFactory) (*CLIApp, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	app := NewCLIApp("1.0.0", repo, console.NewConsole(console.WithWriter(&buf)), factory)
	app.rootCmd.SetOut(&buf)
	app.rootCmd.SetErr(&buf)
	app.SetArgs([]string{})
	return app, &buf
}

func TestConfigErrorStopsBeforeAnyAdapterIsBuilt(t *testing.T) {
	cfgErr := &types.ConfigurationError{Missing: []string{"OPENAI_API_KEY"}}
	factoryCalls := 0
	app, buf := newTestApp(t, fakeConfigRepo{err: cfgErr}, func(context.Context, *types.Config) (Runner, error) {
		factoryCalls++
		return &fakeRunner{}, nil
	})

	err := app.Execute()

	var ce *types.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 0, factoryCalls)
	assert.Contains(t, buf.String(), "OPENAI_API_KEY")
}

func TestRunsPipelineWithResolvedConfig(t *testing.T) {
	cfg := &types.Config{Region: "us-east-1"}
	runner := &fakeRunner{}
	var got *types.Config
	app, buf := newTestApp(t, fakeConfigRepo{cfg: cfg}, func(_ context.Context, c *types.Config) (Runner, error) {
		got = c
		return runner, nil
	})

	require.NoError(t, app.Execute())
	assert.Same(t, cfg, got)
	assert.Equal(t, 1, runner.calls)
	assert.Contains(t, buf.String(), "AWS Log Remediator")
}

func TestRunErrorIsReturned(t *testing.T) {
	listErr := &types.AuthorizationError{Component: "lister", Err: errors.New("AccessDenied")}
	runner := &fakeRunner{err: listErr}
	app, _ := newTestApp(t, fakeConfigRepo{cfg: &types.Config{}}, func(context.Context, *types.Config) (Runner, error) {
		return runner, nil
	})

	err := app.Execute()
	assert.True(t, types.IsFatal(err))
}

func TestFactoryErrorIsReturned(t *testing.T) {
	app, _ := newTestApp(t, fakeConfigRepo{cfg: &types.Config{}}, func(context.Context, *types.Config) (Runner, error) {
		return nil, errors.New("boom")
	})

	assert.EqualError(t, app.Execute(), "boom")
}

func TestMissingFactory(t *testing.T) {
	app, _ := newTestApp(t, fakeConfigRepo{cfg: &types.Config{}}, nil)
	assert.ErrorIs(t, app.Execute(), types.ErrMissingComponent)
}

func TestRejectsPositionalArguments(t *testing.T) {
	runner := &fakeRunner{}
	app, _ := newTestApp(t, fakeConfigRepo{cfg: &types.Config{}}, func(context.Context, *types.Config) (Runner, error) {
		return runner, nil
	})
	app.SetArgs([]string{"extra"})

	assert.Error(t, app.Execute())
	assert.Equal(t, 0, runner.calls)
}
