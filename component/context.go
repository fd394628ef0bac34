package component

// RenderContext carries the object binding down a render traversal.
// Explicit values win over anything the components resolve themselves.
type RenderContext struct {
	ObjectType    string
	ObjectSubtype string
	ItemID        string
}

// For returns the context c renders under.
func (rc RenderContext) For(c Component) RenderContext {
	out := rc
	if out.ObjectType == "" {
		out.ObjectType = c.ResolvedObjectType()
	}
	if out.ObjectSubtype == "" {
		out.ObjectSubtype = c.ResolvedObjectSubtype()
	}
	if out.ItemID == "" {
		out.ItemID = c.ResolvedItemID()
	}
	return out
}

// Counter hands out instance numbers in registration order.
type Counter struct {
	n int
}

// Next returns the next instance number, starting at 1.
func (c *Counter) Next() int {
	c.n++
	return c.n
}
