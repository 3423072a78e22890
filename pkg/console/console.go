package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/diillson/aws-log-remediator/internal/shared/types"
)

// Console é uma implementação do ConsoleInterface.
type Console struct {
	writer    io.Writer
	logger    *pterm.Logger
	component string
}

// Option configura um Console.
type Option func(*Console)

// WithWriter redireciona toda a saída (logs, spinner, barra de progresso).
func WithWriter(w io.Writer) Option {
	return func(c *Console) { c.writer = w }
}

// WithJSONLogs troca o formatter colorido pelo JSON do pterm.
func WithJSONLogs() Option {
	return func(c *Console) {
		c.logger = c.logger.WithFormatter(pterm.LogFormatterJSON)
	}
}

// NewConsole cria um novo Console.
func NewConsole(opts ...Option) *Console {
	c := &Console{
		writer: os.Stdout,
		logger: pterm.DefaultLogger.WithTime(true).WithTimeFormat("2006-01-02T15:04:05Z07:00"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithWriter(c.writer)
	return c
}

// WithComponent retorna uma cópia do console que anota cada log com o componente.
func (c *Console) WithComponent(name string) types.ConsoleInterface {
	clone := *c
	clone.component = name
	return &clone
}

// Print imprime no console.
func (c *Console) Print(a ...interface{}) {
	fmt.Fprint(c.writer, a...)
}

// Printf imprime uma string formatada no console.
func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Fprintf(c.writer, format, a...)
}

// Println imprime no console com uma nova linha.
func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.writer, a...)
}

func (c *Console) args(extra ...any) []pterm.LoggerArgument {
	kv := make([]any, 0, 2+len(extra))
	if c.component != "" {
		kv = append(kv, "component", c.component)
	}
	kv = append(kv, extra...)
	if len(kv) == 0 {
		return nil
	}
	return c.logger.Args(kv...)
}

// LogInfo registra uma mensagem de informação.
func (c *Console) LogInfo(format string, a ...interface{}) {
	c.logger.Info(fmt.Sprintf(format, a...), c.args())
}

// LogWarning registra uma mensagem de aviso.
func (c *Console) LogWarning(format string, a ...interface{}) {
	c.logger.Warn(fmt.Sprintf(format, a...), c.args())
}

// LogError registra uma mensagem de erro.
func (c *Console) LogError(format string, a ...interface{}) {
	c.logger.Error(fmt.Sprintf(format, a...), c.args())
}

// LogSuccess registra uma mensagem de sucesso.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	c.logger.Info(fmt.Sprintf(format, a...), c.args("status", "success"))
}

// statusHandle é uma implementação do StatusHandle.
type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status cria um spinner de status com a mensagem especificada.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.WithWriter(c.writer).Start(message)
	return &statusHandle{spinner: spinner}
}

// Cores predefinidas para uso consistente
var (
	BoldRed     = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	BoldYellow  = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// Update atualiza a mensagem de status.
func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

// Stop pára o spinner de status.
func (h *statusHandle) Stop() {
	if h.spinner != nil {
		h.spinner.Stop()
	}
}

// progressHandle é uma implementação do ProgressHandle.
type progressHandle struct {
	bar *pterm.ProgressbarPrinter
}

func (c *Console) ProgressWithTotal(total int, title string) types.ProgressHandle {
	bar, _ := pterm.DefaultProgressbar.
		WithWriter(c.writer).
		WithTotal(total).
		WithTitle(title).
		WithShowElapsedTime(true).
		WithShowCount(true).
		WithRemoveWhenDone(false). // Manter a barra após concluir
		Start()
	return &progressHandle{bar: bar}
}

// Increment incrementa a barra de progresso.
func (h *progressHandle) Increment() {
	if h.bar != nil {
		h.bar.Increment()
	}
}

// Stop pára a barra de progresso.
func (h *progressHandle) Stop() {
	if h.bar != nil {
		h.bar.Stop()
	}
}

// Table é uma implementação do TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

// AddColumn adiciona uma coluna à tabela.
func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow adiciona uma linha à tabela.
func (t *Table) AddRow(cells ...interface{}) {
	// Convertemos cada célula para string
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable
}
