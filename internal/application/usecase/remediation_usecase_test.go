package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-log-remediator/internal/domain/entity"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
	"github.com/diillson/aws-log-remediator/pkg/retry"
)

func resultNames(rs []entity.AnalysisResult) []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.LogGroupName
	}
	return names
}

func TestRun_ProcessesEveryListedGroup(t *testing.T) {
	h := newHarness("/aws/lambda/foo", "/aws/lambda/bar")

	summary, err := h.useCase().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, h.aws.lastLimit)
	require.Len(t, h.insight.prompts, 2)
	assert.Contains(t, h.insight.prompts[0], "/aws/lambda/foo")
	assert.Contains(t, h.insight.prompts[1], "/aws/lambda/bar")

	require.Len(t, h.notifier.posts, 2)
	assert.Contains(t, h.notifier.posts[0].Title, "/aws/lambda/foo")
	assert.Contains(t, h.notifier.posts[1].Title, "/aws/lambda/bar")

	assert.Equal(t, []string{"/aws/lambda/foo", "/aws/lambda/bar"}, resultNames(summary.Results))
	for _, r := range summary.Results {
		assert.True(t, r.Success)
		assert.True(t, r.Notified)
		assert.Equal(t, 1, r.Attempts)
		assert.Equal(t, "explanation for "+r.LogGroupName, r.Explanation)
	}
	assert.Equal(t, "run-test", summary.RunID)
	assert.Equal(t, "123456789012", summary.AccountID)
	assert.Empty(t, h.slept)
	assert.Empty(t, h.export.exported)
	assert.Contains(t, h.console.out.String(), "1. /aws/lambda/foo")
}

func TestRun_AuthFailureStillNotifies(t *testing.T) {
	h := newHarness("/aws/lambda/foo", "/aws/lambda/bar")
	h.insight.respond = func(group string, _ int) (string, error) {
		if group == "/aws/lambda/bar" {
			return "", &types.AuthorizationError{Component: "openai", Err: errors.New("invalid api key")}
		}
		return "ok", nil
	}

	summary, err := h.useCase().Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)

	bar := summary.Results[1]
	assert.Equal(t, "/aws/lambda/bar", bar.LogGroupName)
	assert.False(t, bar.Success)
	assert.NotEmpty(t, bar.Error)
	assert.Equal(t, 1, bar.Attempts)
	assert.Empty(t, h.slept, "non-retryable errors never wait")

	require.Len(t, h.notifier.posts, 2)
	failure := h.notifier.posts[1]
	assert.Contains(t, failure.Title, "/aws/lambda/bar")
	assert.Equal(t, colorFailure, failure.Color)
	assert.Contains(t, failure.Text, "invalid api key")

	assert.Equal(t, 1, summary.Succeeded())
	assert.Equal(t, 1, summary.Failed())
}

func TestRun_ListerAuthorizationErrorAborts(t *testing.T) {
	h := newHarness("/aws/lambda/foo")
	h.aws.listErrs = []error{&types.AuthorizationError{Component: "cloudwatchlogs", Err: errors.New("AccessDenied")}}

	_, err := h.useCase().Run(context.Background())
	require.Error(t, err)
	assert.True(t, types.IsFatal(err))
	assert.Equal(t, 1, h.aws.listCalls)
	errs := h.console.logged("error")
	require.Len(t, errs, 1)
	assert.Equal(t, componentLister, errs[0].component)
	assert.Contains(t, errs[0].msg, "Credentials rejected")
	assert.Empty(t, h.insight.prompts)
	assert.Empty(t, h.notifier.posts)
	assert.Empty(t, h.slept)
}

func TestRun_ListerRetriesTransientFailures(t *testing.T) {
	h := newHarness("/aws/lambda/foo")
	h.aws.listErrs = []error{
		&types.TransientNetworkError{Component: "cloudwatchlogs", Err: errors.New("connection reset")},
		&types.RateLimitError{Component: "cloudwatchlogs", Err: errors.New("ThrottlingException")},
	}

	summary, err := h.useCase().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, h.aws.listCalls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, h.slept)
	assert.Len(t, summary.Results, 1)
	assert.Len(t, h.console.logged("warn"), 2)
	assert.Equal(t, []string{
		"Listing CloudWatch log groups...",
		"Listing CloudWatch log groups (attempt 2/3)...",
		"Listing CloudWatch log groups (attempt 3/3)...",
	}, *h.console.statuses)
}

func TestRun_ListerExhaustsRetries(t *testing.T) {
	h := newHarness("/aws/lambda/foo")
	transient := &types.TransientNetworkError{Component: "cloudwatchlogs", Err: errors.New("timeout")}
	h.aws.listErrs = []error{transient, transient, transient}

	_, err := h.useCase().Run(context.Background())
	require.Error(t, err)
	var exhausted *retry.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Empty(t, h.insight.prompts)
}

func TestRun_NeverProcessesMoreThanMax(t *testing.T) {
	h := newHarness("/a", "/b", "/c", "/d", "/e")
	h.cfg.MaxLogGroups = 2

	summary, err := h.useCase().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, resultNames(summary.Results))
	assert.Len(t, h.insight.prompts, 2)
	assert.Len(t, h.notifier.posts, 2)
}

func TestRun_NoLogGroups(t *testing.T) {
	h := newHarness()

	summary, err := h.useCase().Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Results)
	assert.Empty(t, h.notifier.posts)

	warnings := h.console.logged("warn")
	require.Len(t, warnings, 1)
	assert.Equal(t, componentLister, warnings[0].component)
	assert.Equal(t, types.ErrNoLogGroups.Error(), warnings[0].msg)
}

func TestGenerate_RetriesRateLimit(t *testing.T) {
	h := newHarness()
	h.insight.respond = func(_ string, call int) (string, error) {
		if call < 3 {
			return "", &types.RateLimitError{Component: "openai", Err: errors.New("429")}
		}
		return "finally", nil
	}

	res := h.useCase().Generate(context.Background(), entity.LogGroupDescriptor{Name: "/aws/lambda/foo"})
	assert.True(t, res.Success)
	assert.Equal(t, "finally", res.Explanation)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, "gpt-test", res.Model)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, h.slept)
}

func TestGenerate_ExhaustedRetriesBecomeFailureResult(t *testing.T) {
	h := newHarness()
	h.insight.respond = func(string, int) (string, error) {
		return "", &types.TransientNetworkError{Component: "openai", Err: errors.New("502 bad gateway")}
	}

	res := h.useCase().Generate(context.Background(), entity.LogGroupDescriptor{Name: "/aws/lambda/foo"})
	assert.False(t, res.Success)
	assert.Equal(t, 3, res.Attempts)
	assert.Contains(t, res.Error, "502 bad gateway")
	assert.Contains(t, res.Error, "after 3 attempts")
}

func TestGenerate_MeasuresElapsedTime(t *testing.T) {
	h := newHarness()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	uc := NewRemediationUseCase(h.cfg, h.aws, h.insight, h.notifier, h.export, h.console,
		WithClock(func() time.Time {
			calls++
			return base.Add(time.Duration(calls) * 750 * time.Millisecond)
		}),
	)

	res := uc.Generate(context.Background(), entity.LogGroupDescriptor{Name: "/x"})
	assert.Equal(t, 750*time.Millisecond, res.Elapsed)
}

func TestRun_UndeliveredNotificationIsLoggedNotFatal(t *testing.T) {
	h := newHarness("/aws/lambda/foo", "/aws/lambda/bar")
	h.notifier.err = func(n entity.Notification, _ int) error {
		if strings.Contains(n.Title, "/aws/lambda/foo") {
			return &types.TransientNetworkError{Component: "slack", Err: errors.New("503")}
		}
		return nil
	}

	summary, err := h.useCase().Run(context.Background())
	require.NoError(t, err)

	// 3 tentativas para foo, 1 para bar.
	assert.Len(t, h.notifier.posts, 4)
	assert.False(t, summary.Results[0].Notified)
	assert.True(t, summary.Results[1].Notified)
	assert.Equal(t, 1, summary.Undelivered())

	var delivery bool
	for _, l := range h.console.logged("error") {
		if l.component == componentNotifier && strings.Contains(l.msg, "/aws/lambda/foo") {
			delivery = true
		}
	}
	assert.True(t, delivery, "delivery failure must be logged by the notifier")
}

func TestNotify_ReturnsDeliveryError(t *testing.T) {
	h := newHarness()
	h.notifier.err = func(entity.Notification, int) error {
		return &types.AuthorizationError{Component: "slack", Err: errors.New("403 invalid_token")}
	}

	err := h.useCase().Notify(context.Background(), "run", entity.AnalysisResult{LogGroupName: "/x", Success: true})
	var delivery *types.NotificationDeliveryError
	require.ErrorAs(t, err, &delivery)
	assert.Equal(t, "/x", delivery.LogGroup)
	assert.Equal(t, 1, delivery.Attempts)
	assert.Len(t, h.notifier.posts, 1)
}

func TestRun_SendsRunSummaryWhenEnabled(t *testing.T) {
	h := newHarness("/aws/lambda/foo", "/aws/lambda/bar")
	h.cfg.SendRunSummary = true

	_, err := h.useCase().Run(context.Background())
	require.NoError(t, err)
	require.Len(t, h.notifier.posts, 3)
	last := h.notifier.posts[2]
	assert.Equal(t, "Log remediation run finished", last.Title)
	assert.Contains(t, last.Footer, "run-test")
}

func TestRun_EnrichesAndExportsReports(t *testing.T) {
	h := newHarness("/aws/lambda/foo")
	h.cfg.EnrichResources = true
	h.cfg.ReportTypes = []string{"csv", "json", "pdf"}
	h.cfg.ReportS3Bucket = "reports"
	h.aws.resources = map[string]*entity.SourceResource{
		"/aws/lambda/foo": {Type: "lambda:function", ID: "foo", Attributes: map[string]string{"runtime": "go1.x"}},
	}

	_, err := h.useCase().Run(context.Background())
	require.NoError(t, err)

	require.Len(t, h.insight.prompts, 1)
	assert.Contains(t, h.insight.prompts[0], "Source resource: lambda:function foo")
	assert.Contains(t, h.insight.prompts[0], "runtime: go1.x")

	assert.Equal(t, []string{"csv", "json", "pdf"}, h.export.exported)
	require.Len(t, h.aws.uploads, 3)
	for _, uri := range h.aws.uploads {
		assert.True(t, strings.HasPrefix(uri, "s3://reports/log-remediator/run-test/"), uri)
	}
}

func TestRun_AccountIDIsBestEffort(t *testing.T) {
	h := newHarness("/aws/lambda/foo")
	h.aws.accountErr = &types.AuthorizationError{Component: "sts", Err: errors.New("denied")}

	summary, err := h.useCase().Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.AccountID)
	assert.Len(t, summary.Results, 1)
}

func TestFormatNotification(t *testing.T) {
	ok := FormatNotification("r1", entity.AnalysisResult{
		LogGroupName: "/aws/lambda/foo", Explanation: "all good", Elapsed: 1234 * time.Millisecond,
		Success: true, Model: "gpt-test",
	})
	assert.Equal(t, colorSuccess, ok.Color)
	assert.Equal(t, "all good", ok.Text)
	assert.Contains(t, ok.Fallback, "1.234s")
	assert.Contains(t, ok.Footer, "r1")

	failed := FormatNotification("r1", entity.AnalysisResult{LogGroupName: "/aws/lambda/bar", Attempts: 3})
	assert.Equal(t, colorFailure, failed.Color)
	assert.Contains(t, failed.Text, "unknown error")

	long := FormatNotification("", entity.AnalysisResult{Success: true, Explanation: strings.Repeat("x", maxExplanationChars+50)})
	assert.Len(t, []rune(long.Text), maxExplanationChars)
	assert.Equal(t, "log-remediator", long.Footer)
}

func TestFormatSummaryNotification(t *testing.T) {
	s := entity.RunSummary{RunID: "r1", Region: "us-east-1", Results: []entity.AnalysisResult{
		{LogGroupName: "/a", Success: true},
		{LogGroupName: "/b"},
	}}
	n := FormatSummaryNotification(s)
	assert.Equal(t, colorWarning, n.Color)
	assert.Contains(t, n.Text, "Failed: /b")

	s.Results = s.Results[1:]
	assert.Equal(t, colorFailure, FormatSummaryNotification(s).Color)
}

func TestBuildUserPrompt(t *testing.T) {
	p := buildUserPrompt(entity.LogGroupDescriptor{
		Name:          "/aws/rds/instance/db1/error",
		Region:        "sa-east-1",
		RetentionDays: 0,
		StoredBytes:   3 * 1024 * 1024 * 1024,
	})
	assert.True(t, strings.HasPrefix(p, "Log group: /aws/rds/instance/db1/error\n"))
	assert.Contains(t, p, "Retention: never expire")
	assert.Contains(t, p, fmt.Sprintf("Stored data: %.2f GB", 3.0))
}

func TestSummaryTable_MarksFailuresAndUndelivered(t *testing.T) {
	h := newHarness()
	uc := h.useCase()

	table := uc.summaryTable(entity.RunSummary{Results: []entity.AnalysisResult{
		{LogGroupName: "/aws/lambda/foo", Success: true, Notified: true, Attempts: 1},
		{LogGroupName: "/aws/lambda/bar", Success: false, Notified: false, Attempts: 3},
	}}).(*fakeTable)

	require.Len(t, table.rows, 2)
	assert.Equal(t, []string{"#", "Log Group", "Analysis", "Attempts", "Elapsed", "Slack"}, table.columns)
	assert.Contains(t, table.rows[0][2], "OK")
	assert.Contains(t, table.rows[0][5], "sent")
	assert.Contains(t, table.rows[1][2], "FAILED")
	assert.Contains(t, table.rows[1][5], "not sent")
}
