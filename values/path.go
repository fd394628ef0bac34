package values

import (
	"fmt"
	"strings"
)

// Path is an ordered list of keys addressing a location inside a nested value
// tree. Nested trees are map[string]any.
type Path []string

// ParseID splits a bracket-notation identifier into its base key and path.
//
//	ParseID("header_image_data[url]")    // "header_image_data", ["url"]
//	ParseID("social[links][twitter]")    // "social", ["links", "twitter"]
//	ParseID("color")                     // "color", []
func ParseID(id string) (string, Path) {
	open := strings.IndexByte(id, '[')
	if open < 0 {
		return id, nil
	}

	base := id[:open]
	var path Path
	rest := id[open:]
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return base, path
}

// JoinID is the inverse of ParseID.
func JoinID(base string, path Path) string {
	var b strings.Builder
	b.WriteString(base)
	for _, key := range path {
		b.WriteByte('[')
		b.WriteString(key)
		b.WriteByte(']')
	}
	return b.String()
}

// IsEmpty reports whether the path addresses the root.
func (p Path) IsEmpty() bool {
	return len(p) == 0
}

// String returns the path in bracket notation without a base.
func (p Path) String() string {
	return JoinID("", p)
}

// Get returns the value stored at p inside root, or def when any segment is
// absent or crosses a non-map value. root is never modified.
func (p Path) Get(root any, def any) any {
	if len(p) == 0 {
		if root == nil {
			return def
		}
		return root
	}

	node := root
	for _, key := range p {
		m, ok := asMap(node)
		if !ok {
			return def
		}
		next, ok := m[key]
		if !ok {
			return def
		}
		node = next
	}
	return node
}

// Has reports whether every segment of p exists in root.
func (p Path) Has(root any) bool {
	node := root
	for _, key := range p {
		m, ok := asMap(node)
		if !ok {
			return false
		}
		if node, ok = m[key]; !ok {
			return false
		}
	}
	return true
}

// Replace returns a new root with value spliced in at p. Maps along the path are
// copied, missing intermediate maps are created and non-map occupants are
// replaced by empty maps. An empty path makes value the new root.
func (p Path) Replace(root any, value any) any {
	if len(p) == 0 {
		return value
	}

	m, _ := asMap(root)
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}

	key := p[0]
	if len(p) == 1 {
		out[key] = value
		return out
	}
	out[key] = p[1:].Replace(out[key], value)
	return out
}

// Delete returns a new root with the key at p removed. Deleting a missing key
// returns an equivalent copy.
func (p Path) Delete(root any) any {
	if len(p) == 0 {
		return nil
	}

	m, ok := asMap(root)
	if !ok {
		return root
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}

	key := p[0]
	if len(p) == 1 {
		delete(out, key)
		return out
	}
	if child, exists := out[key]; exists {
		out[key] = p[1:].Delete(child)
	}
	return out
}

// asMap accepts the map shapes produced by JSON and YAML decoders. Non-string
// YAML keys such as 1 or true are converted to their string form, matching
// how bracket segments address them.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
