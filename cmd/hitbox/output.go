package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vovakirdan/hitbox/internal/collision"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	fixedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	dynamicStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	hitStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// printer writes plain text when stdout is not a terminal.
type printer struct {
	w     io.Writer
	style bool
}

func newPrinter() *printer {
	return &printer{
		w:     os.Stdout,
		style: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.style {
		return text
	}
	return s.Render(text)
}

func (p *printer) header(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(headerStyle, fmt.Sprintf(format, args...)))
}

func (p *printer) muted(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(mutedStyle, fmt.Sprintf(format, args...)))
}

func (p *printer) ref(r collision.Ref) string {
	if r.Category == collision.Fixed {
		return p.render(fixedStyle, r.String())
	}
	return p.render(dynamicStyle, r.String())
}

// entries prints every rectangle of reg, fixed first.
func (p *printer) entries(reg *collision.Registry) {
	for _, c := range []collision.Category{collision.Fixed, collision.Dynamic} {
		for h, r := range reg.Entries(c) {
			fmt.Fprintf(p.w, "  %-14s %v\n", p.ref(collision.Ref{Category: c, Handle: h}), r)
		}
	}
}

// pairs prints colliding pairs with their rectangles. A ref the registry
// does not hold, e.g. from a stored report, is printed as missing.
func (p *printer) pairs(reg *collision.Registry, pairs []collision.Pair) {
	if len(pairs) == 0 {
		p.muted("No collisions.")
		return
	}
	p.header("%s", p.render(hitStyle, fmt.Sprintf("%d collision(s):", len(pairs))))
	for _, pair := range pairs {
		fmt.Fprintf(p.w, "  %s %s  <->  %s %s\n", p.ref(pair.A), p.rect(reg, pair.A), p.ref(pair.B), p.rect(reg, pair.B))
	}
}

func (p *printer) rect(reg *collision.Registry, ref collision.Ref) string {
	r, err := reg.Lookup(ref)
	if err != nil {
		return p.render(hitStyle, "(missing)")
	}
	return r.String()
}
