package ctrldef

import (
	"github.com/google/uuid"
)

// Descriptor is one declared control.
//
// Descriptors produced by the Parser are unregistered (LoadOrder is -1 and
// ID is uuid.Nil) until a Registry accepts them.
type Descriptor struct {
	ID           uuid.UUID `json:"id" yaml:"id"`
	Category     Category  `json:"category" yaml:"category"`
	ControlName  string    `json:"control_name" yaml:"control_name"`
	ObjectName   string    `json:"object_name" yaml:"object_name"`
	Namespace    string    `json:"namespace" yaml:"namespace"`
	SubNamespace string    `json:"sub_namespace,omitempty" yaml:"sub_namespace,omitempty"`
	LoadOrder    int       `json:"load_order" yaml:"load_order"`
	Depth        int       `json:"depth" yaml:"depth"`
	Row          int       `json:"row,omitempty" yaml:"row,omitempty"`

	Common  Common  `json:"common" yaml:"common"`
	Payload Payload `json:"payload" yaml:"payload"`

	// Fields holds the coerced cells of the basic column group, Extra the
	// cells of every other group keyed by group name.
	Fields map[string]any            `json:"fields,omitempty" yaml:"fields,omitempty"`
	Extra  map[string]map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`

	Parent   *Descriptor   `json:"-" yaml:"-"`
	Children []*Descriptor `json:"-" yaml:"-"`
}

// IsGroup reports whether d introduces a sub-namespace.
func (d *Descriptor) IsGroup() bool {
	return d.Category == CategoryGroup
}

// Registered reports whether a Registry has accepted d.
func (d *Descriptor) Registered() bool {
	return d.LoadOrder >= 0
}

// ParentName returns the control name of the parent, or "" for roots.
func (d *Descriptor) ParentName() string {
	if d.Parent == nil {
		return ""
	}
	return d.Parent.ControlName
}

// Field looks a column value up in the basic group first, then in the
// extra groups.
func (d *Descriptor) Field(column string) (any, bool) {
	if v, ok := d.Fields[column]; ok {
		return v, true
	}
	for _, group := range d.Extra {
		if v, ok := group[column]; ok {
			return v, true
		}
	}
	return nil, false
}

// AllFields returns the basic and extra fields as a single map.
func (d *Descriptor) AllFields() map[string]any {
	return mergeFields(d.Fields, d.Extra)
}

// newRootDescriptor builds the permanent basic group that anchors the root
// namespace. Its ID only depends on the root namespace.
func newRootDescriptor(rootNamespace string) *Descriptor {
	return &Descriptor{
		ID:           uuid.NewSHA1(uuid.NameSpaceOID, []byte(RootControlName+"/"+rootNamespace)),
		Category:     CategoryGroup,
		ControlName:  RootControlName,
		ObjectName:   RootControlName,
		SubNamespace: rootNamespace,
		LoadOrder:    -1,
		Payload:      &GroupPayload{SubNamespace: rootNamespace},
	}
}
