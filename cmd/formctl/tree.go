package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reglet-dev/reglet-forms/component"
	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/registry"
)

var (
	colorBlue    = lipgloss.Color("#89b4fa")
	colorGreen   = lipgloss.Color("#a6e3a1")
	colorText    = lipgloss.Color("#cdd6f4")
	colorOverlay = lipgloss.Color("#7f849c")

	screenStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	sectionStyle = lipgloss.NewStyle().Foreground(colorGreen)
	controlStyle = lipgloss.NewStyle().Foreground(colorText)
	metaStyle    = lipgloss.NewStyle().Foreground(colorOverlay)
)

type fieldLister interface {
	InputType() string
	FieldIDs() []string
}

// writeTree prints the prepared containers of p with their descendants.
func writeTree(w io.Writer, p *registry.Prepared) {
	fmt.Fprintln(w, metaStyle.Render(p.Namespace.String()))
	if len(p.Containers) == 0 {
		fmt.Fprintln(w, metaStyle.Render("  (nothing visible)"))
		return
	}
	for _, c := range p.Containers {
		writeNode(w, c, 1)
	}
}

func writeNode(w io.Writer, c component.Component, depth int) {
	indent := strings.Repeat("  ", depth)
	label := c.Label()
	if label == "" {
		label = c.ID()
	}

	var line string
	switch n := c.(type) {
	case component.Container:
		style := sectionStyle
		if n.Kind() == entities.KindScreen {
			style = screenStyle
		}
		line = style.Render(label) + " " + metaStyle.Render(fmt.Sprintf("%s %s", c.Kind(), c.ID()))
	case fieldLister:
		line = controlStyle.Render(label) + " " +
			metaStyle.Render(fmt.Sprintf("%s [%s] -> %s", c.ID(), n.InputType(), strings.Join(n.FieldIDs(), ", ")))
	default:
		line = controlStyle.Render(label)
	}
	fmt.Fprintln(w, indent+line)

	if ctr, ok := c.(component.Container); ok {
		for _, child := range ctr.Children() {
			writeNode(w, child, depth+1)
		}
	}
}
