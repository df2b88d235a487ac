package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posturemon/config"
)

// newTestConsole returns a console with an "echo" verb that replies with
// its arguments and a "fail" verb that always errors
func newTestConsole(tweak func(*config.ConsoleConfig)) (*Console, *fakeLink, *[][]string) {
	cfg := config.DefaultPostureConfig().Console
	if tweak != nil {
		tweak(&cfg)
	}
	link := &fakeLink{}
	registry := NewCommandRegistry()
	var calls [][]string

	registry.Register("echo", "", "", func(args []string, r *Reply) error {
		calls = append(calls, append([]string(nil), args...))
		r.OK(strings.Join(args[1:], " "))
		return nil
	})
	registry.Register("fail", "", "", func(args []string, r *Reply) error {
		return errors.New("it broke")
	})

	return NewConsole(cfg, registry, link), link, &calls
}

func feed(c *Console, s string) {
	for i := 0; i < len(s); i++ {
		c.Feed(s[i])
	}
}

func TestConsoleDispatchAndPrompt(t *testing.T) {
	c, link, calls := newTestConsole(func(cfg *config.ConsoleConfig) { cfg.Echo = false })

	feed(c, "echo a  b\r\n")

	require.Len(t, *calls, 1)
	assert.Equal(t, []string{"echo", "a", "b"}, (*calls)[0])
	assert.Equal(t, "OK [a b]\r\n> ", link.take())
	assert.Equal(t, uint32(1), c.Dispatched())
}

func TestConsoleEcho(t *testing.T) {
	c, link, _ := newTestConsole(nil)

	feed(c, "ex")
	c.Feed(0x7F)
	feed(c, "cho\r")

	assert.Equal(t, "ex\b \bcho\r\nOK []\r\n> ", link.take())
}

func TestConsoleBackspaceOnEmptyIsSilent(t *testing.T) {
	c, link, _ := newTestConsole(nil)

	c.Feed(0x08)
	c.Feed(0x7F)
	assert.Empty(t, link.take())
	assert.Equal(t, 0, c.Buffered())
}

func TestConsoleEmptyLinesAreIgnored(t *testing.T) {
	c, link, calls := newTestConsole(nil)

	feed(c, "\r\n\r\n")
	assert.Empty(t, *calls)
	assert.Empty(t, link.take())

	// Whitespace-only is a dispatch with no verb: prompt, nothing else
	feed(c, "   \r")
	assert.Empty(t, *calls)
	assert.Equal(t, "   \r\n> ", link.take())
}

func TestConsoleUnknownAndFailingCommands(t *testing.T) {
	c, link, _ := newTestConsole(func(cfg *config.ConsoleConfig) { cfg.Echo = false })

	feed(c, "bogus\r")
	assert.Equal(t, "ERROR: Unknown command. Type 'help'\r\n> ", link.take())

	feed(c, "fail\r")
	assert.Equal(t, "ERROR: it broke\r\n> ", link.take())
}

func TestConsoleOverflowDropsCharacters(t *testing.T) {
	c, _, calls := newTestConsole(func(cfg *config.ConsoleConfig) {
		cfg.BufferSize = 8
		cfg.Echo = false
	})

	feed(c, "echo abcdefgh\r")
	assert.Equal(t, 0, c.Buffered())
	require.Len(t, *calls, 1)
	assert.Equal(t, []string{"echo", "abc"}, (*calls)[0])
}

func TestConsoleTokenLimit(t *testing.T) {
	c, _, calls := newTestConsole(func(cfg *config.ConsoleConfig) { cfg.Echo = false })

	feed(c, "echo 1 2 3 4 5 6\r")
	require.Len(t, *calls, 1)
	assert.Equal(t, []string{"echo", "1", "2", "3", "4"}, (*calls)[0])
}

func TestConsoleIgnoresControlBytes(t *testing.T) {
	c, _, calls := newTestConsole(func(cfg *config.ConsoleConfig) { cfg.Echo = false })

	feed(c, "ec\x01\x1bho\x00 x\t\r")
	require.Len(t, *calls, 1)
	assert.Equal(t, []string{"echo", "x"}, (*calls)[0])
}
