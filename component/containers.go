package component

import "github.com/reglet-dev/reglet-forms/entities"

// Screen is a top-level container of sections. "Form" is its alias.
type Screen struct {
	Base
	children
}

// NewScreen is the default screen factory.
func NewScreen(p Params) (Component, error) {
	s := &Screen{Base: NewBase(p)}
	s.bind(s)
	return s, nil
}

func (s *Screen) ChildKind() entities.Kind { return entities.KindSection }

// Sections returns the prepared sections in display order.
func (s *Screen) Sections() []*Section {
	out := make([]*Section, 0, len(s.list))
	for _, c := range s.list {
		if sec, ok := c.(*Section); ok {
			out = append(out, sec)
		}
	}
	return out
}

// Section groups controls. Sections without a parent screen are top-level.
type Section struct {
	Base
	children
}

// NewSection is the default section factory.
func NewSection(p Params) (Component, error) {
	s := &Section{Base: NewBase(p)}
	s.bind(s)
	return s, nil
}

func (s *Section) ChildKind() entities.Kind { return entities.KindControl }

// Controls returns the prepared controls in display order.
func (s *Section) Controls() []*Control {
	out := make([]*Control, 0, len(s.list))
	for _, c := range s.list {
		if ctl, ok := c.(*Control); ok {
			out = append(out, ctl)
		}
	}
	return out
}

var (
	_ Container = (*Screen)(nil)
	_ Container = (*Section)(nil)
)
