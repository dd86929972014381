package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nodes [][]string

func (n nodes) Rows() [][]string { return n }

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("table")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestFormatter_JSON(t *testing.T) {
	var out bytes.Buffer
	f := NewFormatter(FormatJSON, &out)
	require.NoError(t, f.Print(map[string]int{"a": 1}))
	assert.Equal(t, "{\"a\":1}\n", out.String())
}

func TestFormatter_Table(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var out bytes.Buffer
	f := NewFormatter(FormatTable, &out)
	require.NoError(t, f.Print(nodes{{"ID", "Address"}, {"bdb-node-1", "10.0.0.1"}}))
	assert.Contains(t, out.String(), "bdb-node-1")
	assert.Contains(t, out.String(), "Address")

	// 不支持表格的数据降级为JSON
	out.Reset()
	require.NoError(t, f.Print([]int{1, 2}))
	assert.Contains(t, out.String(), "1,")
}

func TestFormatter_MessagesGoToLogWriter(t *testing.T) {
	var out, logs bytes.Buffer
	f := NewFormatter(FormatJSON, &out)
	f.SetLogWriter(&logs)

	f.PrintInfo("connecting")
	f.PrintError(errors.New("boom"))
	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "connecting")
	assert.Contains(t, logs.String(), "boom")

	logs.Reset()
	f.SetSilent(true)
	f.PrintSuccess("done")
	assert.Empty(t, logs.String())
}
