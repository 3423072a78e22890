package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/diillson/aws-log-remediator/internal/domain/entity"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
	"github.com/diillson/aws-log-remediator/pkg/retry"
)

// --- console ---

type logLine struct {
	level, component, msg string
}

type fakeConsole struct {
	mu        *sync.Mutex
	lines     *[]logLine
	out       *strings.Builder
	statuses  *[]string
	component string
}

func newFakeConsole() *fakeConsole {
	return &fakeConsole{mu: &sync.Mutex{}, lines: &[]logLine{}, out: &strings.Builder{}, statuses: &[]string{}}
}

func (c *fakeConsole) log(level, format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.lines = append(*c.lines, logLine{level: level, component: c.component, msg: fmt.Sprintf(format, a...)})
}

func (c *fakeConsole) logged(level string) []logLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []logLine
	for _, l := range *c.lines {
		if l.level == level {
			out = append(out, l)
		}
	}
	return out
}

func (c *fakeConsole) Print(a ...interface{})                 { fmt.Fprint(c.out, a...) }
func (c *fakeConsole) Printf(format string, a ...interface{}) { fmt.Fprintf(c.out, format, a...) }
func (c *fakeConsole) Println(a ...interface{})               { fmt.Fprintln(c.out, a...) }
func (c *fakeConsole) LogInfo(f string, a ...interface{})     { c.log("info", f, a...) }
func (c *fakeConsole) LogWarning(f string, a ...interface{})  { c.log("warn", f, a...) }
func (c *fakeConsole) LogError(f string, a ...interface{})    { c.log("error", f, a...) }
func (c *fakeConsole) LogSuccess(f string, a ...interface{})  { c.log("success", f, a...) }

func (c *fakeConsole) WithComponent(name string) types.ConsoleInterface {
	clone := *c
	clone.component = name
	return &clone
}

func (c *fakeConsole) Status(msg string) types.StatusHandle {
	*c.statuses = append(*c.statuses, msg)
	return statusRecorder{statuses: c.statuses}
}

func (c *fakeConsole) ProgressWithTotal(int, string) types.ProgressHandle { return nopHandle{} }
func (c *fakeConsole) CreateTable() types.TableInterface                  { return &fakeTable{} }

type statusRecorder struct{ statuses *[]string }

func (s statusRecorder) Update(msg string) { *s.statuses = append(*s.statuses, msg) }
func (s statusRecorder) Stop()             {}

type nopHandle struct{}

func (nopHandle) Increment() {}
func (nopHandle) Stop()      {}

type fakeTable struct {
	columns []string
	rows    [][]interface{}
}

func (t *fakeTable) AddColumn(name string, _ ...interface{}) { t.columns = append(t.columns, name) }
func (t *fakeTable) AddRow(cells ...interface{})             { t.rows = append(t.rows, cells) }
func (t *fakeTable) Render() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.columns, " | "))
	b.WriteString("\n")
	for _, r := range t.rows {
		b.WriteString(fmt.Sprintln(r...))
	}
	return b.String()
}

// --- AWS ---

type fakeAWS struct {
	groups     []entity.LogGroupDescriptor
	listErrs   []error // consumidos um por chamada antes de devolver groups
	listCalls  int
	lastLimit  int
	lastPrefix string

	accountErr error
	resources  map[string]*entity.SourceResource

	uploads []string
}

func (f *fakeAWS) GetAccountID(context.Context) (string, error) {
	if f.accountErr != nil {
		return "", f.accountErr
	}
	return "123456789012", nil
}

func (f *fakeAWS) ListLogGroups(_ context.Context, limit int, prefix string) ([]entity.LogGroupDescriptor, error) {
	f.listCalls++
	f.lastLimit = limit
	f.lastPrefix = prefix
	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		return nil, err
	}
	return f.groups, nil
}

func (f *fakeAWS) DescribeSourceResource(_ context.Context, name string) (*entity.SourceResource, error) {
	return f.resources[name], nil
}

func (f *fakeAWS) UploadReport(_ context.Context, bucket, key, _ string) (string, error) {
	uri := "s3://" + bucket + "/" + key
	f.uploads = append(f.uploads, uri)
	return uri, nil
}

// --- insight ---

type fakeInsight struct {
	prompts []string
	// respond decide a resposta a partir do nome do log group e do número da chamada para ele.
	respond func(group string, call int) (string, error)
	perName map[string]int
}

func (f *fakeInsight) Model() string { return "gpt-test" }

func (f *fakeInsight) Complete(_ context.Context, _, userPrompt string) (string, error) {
	f.prompts = append(f.prompts, userPrompt)
	group := strings.TrimPrefix(strings.SplitN(userPrompt, "\n", 2)[0], "Log group: ")
	if f.perName == nil {
		f.perName = map[string]int{}
	}
	f.perName[group]++
	if f.respond == nil {
		return "explanation for " + group, nil
	}
	return f.respond(group, f.perName[group])
}

// --- notifier ---

type fakeNotifier struct {
	posts []entity.Notification
	err   func(n entity.Notification, call int) error
}

func (f *fakeNotifier) Post(_ context.Context, n entity.Notification) error {
	f.posts = append(f.posts, n)
	if f.err != nil {
		return f.err(n, len(f.posts))
	}
	return nil
}

// --- export ---

type fakeExport struct {
	exported []string
}

func (f *fakeExport) record(kind string) (string, error) {
	f.exported = append(f.exported, kind)
	return "/tmp/log_remediator_20250101_000000." + kind, nil
}

func (f *fakeExport) ExportResultsToCSV(entity.RunSummary, string, string) (string, error) {
	return f.record("csv")
}

func (f *fakeExport) ExportResultsToJSON(entity.RunSummary, string, string) (string, error) {
	return f.record("json")
}

func (f *fakeExport) ExportResultsToPDF(entity.RunSummary, string, string) (string, error) {
	return f.record("pdf")
}

// --- helpers ---

func testConfig() *types.Config {
	return &types.Config{
		Region:       "us-east-1",
		MaxLogGroups: 3,
		Retry: types.RetrySettings{
			MaxAttempts: 3,
			BaseDelay:   100 * time.Millisecond,
			Multiplier:  2,
			MaxDelay:    time.Second,
		},
	}
}

type harness struct {
	cfg      *types.Config
	aws      *fakeAWS
	insight  *fakeInsight
	notifier *fakeNotifier
	export   *fakeExport
	console  *fakeConsole
	slept    []time.Duration
}

func newHarness(groups ...string) *harness {
	h := &harness{
		cfg:      testConfig(),
		aws:      &fakeAWS{},
		insight:  &fakeInsight{},
		notifier: &fakeNotifier{},
		export:   &fakeExport{},
		console:  newFakeConsole(),
	}
	for _, g := range groups {
		h.aws.groups = append(h.aws.groups, entity.LogGroupDescriptor{Name: g, Region: "us-east-1"})
	}
	return h
}

func (h *harness) useCase() *RemediationUseCase {
	return NewRemediationUseCase(h.cfg, h.aws, h.insight, h.notifier, h.export, h.console,
		WithRunID("run-test"),
		WithRetryOptions(
			retry.WithSleeper(func(_ context.Context, d time.Duration) error {
				h.slept = append(h.slept, d)
				return nil
			}),
			retry.WithJitter(func(time.Duration) time.Duration { return 0 }),
		),
	)
}
