package ctrldef

import "strings"

// RowDepth counts the leading indentation glyphs of the object-name cell and
// returns the depth together with the bare object name.
func RowDepth(cell, glyph string) (int, string) {
	name := strings.TrimSpace(cell)
	if glyph == "" {
		return 0, name
	}

	depth := 0
	for strings.HasPrefix(name, glyph) {
		depth++
		name = strings.TrimLeft(name[len(glyph):], " \t")
	}
	return depth, strings.TrimSpace(name)
}

// frame is one entry of the hierarchy stack.
type frame struct {
	depth      int
	namespace  string
	descriptor *Descriptor
}

// hierarchy rebuilds parent/child links from row depths. Rows must be placed
// in table order.
type hierarchy struct {
	stack         []frame
	rootNamespace string
	roots         []*Descriptor
}

func newHierarchy(rootNamespace string) *hierarchy {
	return &hierarchy{
		stack:         make([]frame, 0, 8),
		rootNamespace: rootNamespace,
	}
}

// resolve pops every frame at depth >= depth and returns the parent of a row
// at that depth with the namespace the row belongs to. A group parent hands
// down its sub-namespace, any other parent its own namespace.
func (h *hierarchy) resolve(depth int) (*Descriptor, string) {
	for len(h.stack) > 0 && h.stack[len(h.stack)-1].depth >= depth {
		h.stack = h.stack[:len(h.stack)-1]
	}

	if len(h.stack) == 0 {
		return nil, h.rootNamespace
	}

	top := h.stack[len(h.stack)-1]
	if top.descriptor.IsGroup() {
		return top.descriptor, top.descriptor.SubNamespace
	}
	return top.descriptor, top.namespace
}

// attach links d under parent (or as a root) and pushes it on the stack.
func (h *hierarchy) attach(parent, d *Descriptor) {
	if parent != nil {
		d.Parent = parent
		parent.Children = append(parent.Children, d)
	} else {
		h.roots = append(h.roots, d)
	}
	h.stack = append(h.stack, frame{depth: d.Depth, namespace: d.Namespace, descriptor: d})
}
