// Package pages holds the portal's server-rendered pages as templ components.
package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// markup writes HTML fragments and keeps the first write error.
type markup struct {
	w   io.Writer
	err error
}

func (m *markup) raw(parts ...string) {
	for _, p := range parts {
		if m.err != nil {
			return
		}
		_, m.err = io.WriteString(m.w, p)
	}
}

// text writes s escaped. It is safe inside double-quoted attribute values.
func (m *markup) text(s string) {
	m.raw(templ.EscapeString(s))
}

func (m *markup) num(n int) {
	m.raw(strconv.Itoa(n))
}

// child renders c in place.
func (m *markup) child(ctx context.Context, c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

// class writes a class attribute holding name when on is set.
func (m *markup) class(name string, on bool) {
	if on {
		m.raw(` class="`, templ.EscapeString(name), `"`)
	}
}

func component(fn func(ctx context.Context, m *markup)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{w: w}
		fn(ctx, m)
		return m.err
	})
}
