package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_LogCarriesComponentAndTime(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(WithWriter(&buf), WithJSONLogs())

	c.WithComponent("lister").LogError("describe log groups failed: %s", "AccessDenied")

	out := buf.String()
	assert.Contains(t, out, "describe log groups failed: AccessDenied")
	assert.Contains(t, out, "component")
	assert.Contains(t, out, "lister")
	assert.Contains(t, out, "time")
}

func TestConsole_WithComponentDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(WithWriter(&buf), WithJSONLogs())

	_ = c.WithComponent("notifier")
	c.LogInfo("starting")

	assert.NotContains(t, buf.String(), "notifier")
}

func TestConsole_PrintGoesToWriter(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(WithWriter(&buf))

	c.Printf("%d. %s\n", 1, "/aws/lambda/foo")
	c.Println("done")

	assert.Equal(t, "1. /aws/lambda/foo\ndone\n", buf.String())
}

func TestTable_Render(t *testing.T) {
	c := NewConsole()
	table := c.CreateTable()
	table.AddColumn("Log Group")
	table.AddColumn("Status")
	table.AddRow("/aws/lambda/foo", "OK")
	table.AddRow("/aws/lambda/bar", 42)

	rendered := table.Render()
	assert.True(t, strings.Contains(rendered, "/aws/lambda/foo"))
	assert.True(t, strings.Contains(rendered, "42"))
}
