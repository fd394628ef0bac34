package component

import (
	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/policy"
	"github.com/reglet-dev/reglet-forms/values"
)

// Params is everything a Factory needs to build a component.
type Params struct {
	Declaration    *entities.Declaration
	Env            *Env
	Namespace      values.Namespace
	Kind           entities.Kind
	ID             string
	InstanceNumber int
}

// Base implements the Component methods common to every kind. Concrete
// components embed it and call bind with themselves so callbacks receive the
// outer value.
type Base struct {
	self     Component
	parent   Component
	decl     *entities.Declaration
	env      *Env
	ns       values.Namespace
	kind     entities.Kind
	id       string
	itemID   string
	instance int
}

// NewBase builds the shared state from p.
func NewBase(p Params) Base {
	decl := p.Declaration
	if decl == nil {
		decl = &entities.Declaration{}
	}
	id := p.ID
	if id == "" {
		id = decl.ID
	}
	return Base{
		decl:     decl,
		env:      p.Env.withDefaults(),
		ns:       p.Namespace,
		kind:     p.Kind,
		id:       id,
		instance: p.InstanceNumber,
	}
}

func (b *Base) bind(self Component) {
	b.self = self
}

func (b *Base) subject() Component {
	if b.self != nil {
		return b.self
	}
	return b
}

func (b *Base) ID() string { return b.id }
func (b *Base) Kind() entities.Kind { return b.kind }
func (b *Base) Type() string { return b.decl.Type }
func (b *Base) Namespace() values.Namespace { return b.ns }
func (b *Base) Label() string { return b.decl.Label }
func (b *Base) Description() string { return b.decl.Description }
func (b *Base) Priority() int { return b.decl.PriorityOrDefault() }
func (b *Base) InstanceNumber() int { return b.instance }
func (b *Base) Declaration() *entities.Declaration { return b.decl }
func (b *Base) ParentID() string { return b.decl.Parent }
func (b *Base) Parent() Component { return b.parent }
func (b *Base) SetParent(p Component) { b.parent = p }
func (b *Base) SetItemID(itemID string) { b.itemID = itemID }
func (b *Base) Env() *Env { return b.env }
func (b *Base) Option(key string) (any, bool) { return b.decl.Option(key) }

// ResolvedObjectType returns the declared backend object type, else the
// nearest ancestor's, else the namespace object type.
func (b *Base) ResolvedObjectType() string {
	if b.decl.ObjectType != "" {
		return b.decl.ObjectType
	}
	if b.parent != nil {
		return b.parent.ResolvedObjectType()
	}
	return b.ns.ObjectType
}

// ResolvedObjectSubtype returns the nearest ancestor's subtype, else the
// namespace subtype.
func (b *Base) ResolvedObjectSubtype() string {
	if b.parent != nil {
		return b.parent.ResolvedObjectSubtype()
	}
	return b.ns.ObjectSubtype
}

// ResolvedItemID returns the component's item id, else the nearest
// ancestor's. Empty when no ancestor is bound to an item.
func (b *Base) ResolvedItemID() string {
	if b.itemID != "" {
		return b.itemID
	}
	if b.parent != nil {
		return b.parent.ResolvedItemID()
	}
	return ""
}

// IsVisible evaluates the component's own gate.
func (b *Base) IsVisible() bool {
	return b.env.Policy.Check(b.subject(), policy.RuleFromDeclaration(b.decl))
}

// IsActive evaluates the active callback.
func (b *Base) IsActive() bool {
	if b.decl.ActiveCallback == nil {
		return true
	}
	return b.decl.ActiveCallback(b.subject())
}

// children is the shared child list of containers.
type children struct {
	list []Component
}

func (c *children) Children() []Component { return c.list }
func (c *children) AppendChild(x Component) { c.list = append(c.list, x) }
func (c *children) ResetChildren() { c.list = nil }
func (c *children) SortChildren() { Sort(c.list) }
