package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_Line(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(WithWriter(&buf))

	c.Line("Downloading: engine/Binaries/Editor.dll")
	c.Line("Version is already the latest (7)")

	assert.Equal(t,
		"Downloading: engine/Binaries/Editor.dll\nVersion is already the latest (7)\n",
		buf.String(),
	)
	assert.NoError(t, c.Close())
}

func TestMulti_FanOut(t *testing.T) {
	first := &MockReporter{}
	second := &MockReporter{}
	m := NewMulti(first, second)

	m.Line("one")
	m.Line("two")

	assert.Equal(t, []string{"one", "two"}, first.Lines)
	assert.Equal(t, []string{"one", "two"}, second.Lines)
}

func TestMulti_CloseClosesAll(t *testing.T) {
	first := &MockReporter{CloseErr: errors.New("surface already gone")}
	second := &MockReporter{}
	m := NewMulti(first, second)

	err := m.Close()
	require.Error(t, err)
	assert.ErrorContains(t, err, "surface already gone")

	// Every reporter is closed even when an earlier one fails.
	assert.Equal(t, 1, first.CloseCalls)
	assert.Equal(t, 1, second.CloseCalls)
}

func TestMulti_Empty(t *testing.T) {
	m := NewMulti()
	m.Line("ignored")
	assert.NoError(t, m.Close())
}
