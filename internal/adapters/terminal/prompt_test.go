package terminal_test

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"agent-portal/internal/adapters/terminal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_ReadsLines(t *testing.T) {
	var out bytes.Buffer
	p := terminal.New(strings.NewReader("agent@example.com\n  s3cret \nlast"), &out)

	assert.False(t, p.IsTerminal())
	assert.Equal(t, "agent@example.com", p.Line("Email: "))
	assert.Equal(t, "s3cret", p.Secret("Password: "))

	s, err := p.ReadLine("> ")
	assert.Equal(t, "last", s)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "Email: Password: > ", out.String())
}

func TestPrompter_PipeIsNotTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	_, err = w.WriteString("hunter2\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var out bytes.Buffer
	p := terminal.New(r, &out)
	assert.False(t, p.IsTerminal())
	assert.Equal(t, "hunter2", p.Secret("Password: "))
}
