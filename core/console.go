package core

import (
	"posturemon/config"
	"posturemon/protocol"
)

// Reply is the response channel handed to command handlers
type Reply struct {
	link   Link
	line   protocol.LineWriter
	failed uint32
}

// Write sends raw bytes to the link
func (r *Reply) Write(p []byte) {
	if _, err := r.link.Write(p); err != nil {
		r.failed++
	}
}

// Println sends s followed by CRLF
func (r *Reply) Println(s string) {
	w := r.Line()
	w.String(s)
	r.Send()
}

// OK sends "OK [detail]"
func (r *Reply) OK(detail string) {
	w := r.Line()
	w.String(protocol.OKPrefix)
	w.String(" [")
	w.String(detail)
	w.Byte(']')
	r.Send()
}

// Error sends "ERROR: msg"
func (r *Reply) Error(err error) {
	w := r.Line()
	w.String(protocol.ErrorPrefix)
	w.String(err.Error())
	r.Send()
}

// Line returns the cleared scratch line for building a formatted response;
// finish with Send.
func (r *Reply) Line() *protocol.LineWriter {
	r.line.Reset()
	return &r.line
}

// Send terminates the scratch line with CRLF and writes it
func (r *Reply) Send() {
	r.line.String(protocol.CRLF)
	r.Write(r.line.Result())
}

// Failed returns how many link writes reported an error
func (r *Reply) Failed() uint32 {
	return r.failed
}

// Console is the byte-at-a-time line editor in front of the command registry
type Console struct {
	buf       []byte
	maxTokens int
	echo      bool
	prompt    string

	registry *CommandRegistry
	reply    Reply
	tokens   []string

	dispatched uint32
}

// NewConsole creates a console writing to link
func NewConsole(cfg config.ConsoleConfig, registry *CommandRegistry, link Link) *Console {
	return &Console{
		buf:       make([]byte, 0, cfg.BufferSize),
		maxTokens: cfg.MaxTokens,
		echo:      cfg.Echo,
		prompt:    cfg.Prompt,
		registry:  registry,
		reply:     Reply{link: link},
		tokens:    make([]string, 0, cfg.MaxTokens),
	}
}

// Feed processes one received byte
func (c *Console) Feed(b byte) {
	switch {
	case protocol.IsLineEnd(b):
		if len(c.buf) == 0 {
			return
		}
		if c.echo {
			c.reply.Write([]byte(protocol.CRLF))
		}
		c.dispatch(c.buf)
		c.buf = c.buf[:0]

	case protocol.IsErase(b):
		if len(c.buf) == 0 {
			return
		}
		c.buf = c.buf[:len(c.buf)-1]
		if c.echo {
			c.reply.Write([]byte(protocol.EraseSeq))
		}

	case protocol.IsPrintable(b):
		if len(c.buf) == cap(c.buf) {
			return // Full: drop silently
		}
		c.buf = append(c.buf, b)
		if c.echo {
			c.reply.Write([]byte{b})
		}
	}
}

// Execute dispatches a complete line as if it had been typed
func (c *Console) Execute(line string) {
	c.dispatch([]byte(line))
}

// Clear discards any partially typed line
func (c *Console) Clear() {
	c.buf = c.buf[:0]
}

// Buffered returns the length of the partially typed line
func (c *Console) Buffered() int {
	return len(c.buf)
}

// Capacity returns the line buffer size
func (c *Console) Capacity() int {
	return cap(c.buf)
}

// Dispatched returns the number of lines dispatched so far
func (c *Console) Dispatched() uint32 {
	return c.dispatched
}

// Reply exposes the response channel, used for banners and notices
func (c *Console) Reply() *Reply {
	return &c.reply
}

// Prompt writes the prompt string
func (c *Console) Prompt() {
	c.reply.Write([]byte(c.prompt))
}

func (c *Console) dispatch(line []byte) {
	c.dispatched++

	args := c.tokenize(line)
	if len(args) > 0 {
		if err := c.registry.Dispatch(args, &c.reply); err != nil {
			c.reply.Error(err)
		}
	}
	c.Prompt()
}

// tokenize splits line on spaces into at most maxTokens words; the rest of
// the line is discarded.
func (c *Console) tokenize(line []byte) []string {
	c.tokens = c.tokens[:0]
	i := 0
	for i < len(line) && len(c.tokens) < c.maxTokens {
		for i < len(line) && line[i] == ' ' {
			i++
		}
		start := i
		for i < len(line) && line[i] != ' ' {
			i++
		}
		if i > start {
			c.tokens = append(c.tokens, string(line[start:i]))
		}
	}
	return c.tokens
}
