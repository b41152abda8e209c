package ctrldef

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrReservedName         = errors.New("control name is reserved")
	ErrEmptyControlName     = errors.New("control name cannot be empty")
	ErrDuplicateControlName = errors.New("a control with this name is already registered")
	ErrDuplicateObjectName  = errors.New("a control of this category already uses this object name")
	ErrInvalidNamespace     = errors.New("namespace is not introduced by any group")
	ErrInvalidSubNamespace  = errors.New("invalid group sub-namespace")
	ErrAlreadyRegistered    = errors.New("descriptor is already registered")
	ErrNilDescriptor        = errors.New("descriptor cannot be nil")
)

// Registry owns the canonical set of descriptors. It checks that control
// names are globally unique, that object names are unique per category and
// that every namespace was introduced by a group.
//
// The basic group (control name "group") is created with the Registry and
// survives Clear. Its sub-namespace is the root namespace.
//
// A Registry does no locking. Callers sharing one across goroutines must
// serialize access themselves.
type Registry struct {
	root          *Descriptor
	rootNamespace string

	collections   [categoryCount]*Collection
	names         map[string]*Descriptor
	subNamespaces map[string]*Descriptor // sub-namespace -> group introducing it
	namespaces    []string               // in introduction order
	members       map[string][]string
	ordered       []*Descriptor
	next          int

	logger zerolog.Logger
}

// RegistryOpts configures a Registry. The zero value is usable.
type RegistryOpts struct {
	// RootNamespace is the sub-namespace of the basic group. Defaults to
	// DefaultRootNamespace.
	RootNamespace string
	Logger        *zerolog.Logger
}

// NewRegistry creates an empty Registry holding only the basic group.
func NewRegistry(opts RegistryOpts) *Registry {
	rootNamespace := opts.RootNamespace
	if rootNamespace == "" {
		rootNamespace = DefaultRootNamespace
	}

	reg := &Registry{
		root:          newRootDescriptor(rootNamespace),
		rootNamespace: rootNamespace,
		logger:        zerolog.Nop(),
	}
	if opts.Logger != nil {
		reg.logger = *opts.Logger
	}

	reg.reset()
	return reg
}

// reset drops every non-root descriptor and re-seeds the root namespace.
func (reg *Registry) reset() {
	for i := range reg.collections {
		reg.collections[i] = newCollection(Category(i))
	}
	reg.names = make(map[string]*Descriptor)
	reg.subNamespaces = map[string]*Descriptor{reg.rootNamespace: reg.root}
	reg.namespaces = []string{reg.rootNamespace}
	reg.members = map[string][]string{reg.rootNamespace: {}}
	reg.ordered = nil
	reg.next = 0
}

// CreateOption customizes a descriptor built by Create.
type CreateOption func(d *Descriptor)

// WithObjectName sets the object name. It defaults to the control name.
func WithObjectName(name string) CreateOption {
	return func(d *Descriptor) { d.ObjectName = name }
}

// WithNamespace places the control in a namespace. It defaults to the root
// namespace.
func WithNamespace(namespace string) CreateOption {
	return func(d *Descriptor) { d.Namespace = namespace }
}

// WithSubNamespace sets the namespace a group introduces.
func WithSubNamespace(namespace string) CreateOption {
	return func(d *Descriptor) { d.SubNamespace = namespace }
}

// WithFields sets the basic fields; the payload is decoded from them unless
// WithPayload is also given.
func WithFields(fields map[string]any) CreateOption {
	return func(d *Descriptor) { d.Fields = fields }
}

// WithPayload sets the payload directly instead of decoding it from the
// fields.
func WithPayload(p Payload) CreateOption {
	return func(d *Descriptor) { d.Payload = p }
}

// WithCommon sets the common fields. They default to DefaultCommon.
func WithCommon(c Common) CreateOption {
	return func(d *Descriptor) { d.Common = c }
}

// Create builds a descriptor and registers it. The name and namespace
// checks run before the payload is decoded, so they are reported first.
// Nothing is registered when an error is returned.
func (reg *Registry) Create(category Category, controlName string, opts ...CreateOption) (*Descriptor, error) {
	d := &Descriptor{
		Category:    category,
		ControlName: controlName,
		Namespace:   reg.rootNamespace,
		LoadOrder:   -1,
		Common:      DefaultCommon(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := reg.checkIdentity(d); err != nil {
		return nil, err
	}
	if err := fillPayload(d); err != nil {
		return nil, err
	}
	if err := reg.Register(d); err != nil {
		return nil, err
	}
	return d, nil
}

// fillPayload makes sure d carries a payload of its category and that a
// group's payload and SubNamespace agree. The payload is validated later by
// Register.
func fillPayload(d *Descriptor) error {
	if d.Payload == nil {
		p, err := decodePayload(d.Category, d.AllFields())
		if err != nil {
			return err
		}
		d.Payload = p
	}

	if g, ok := d.Payload.(*GroupPayload); ok {
		if d.SubNamespace == "" {
			d.SubNamespace = g.SubNamespace
		} else {
			g.SubNamespace = d.SubNamespace
		}
	}
	return nil
}

// Register validates d and links it into every index. Checks run in this
// order: reserved name, duplicate control name, duplicate object name,
// unknown namespace, the group sub-namespace rules, then the payload. d is
// not modified when an error is returned.
func (reg *Registry) Register(d *Descriptor) error {
	if err := reg.checkIdentity(d); err != nil {
		return err
	}
	if err := reg.checkSubNamespace(d); err != nil {
		return err
	}
	if err := checkPayload(d); err != nil {
		return err
	}

	reg.link(d)
	return nil
}

// objectNameOf returns the object name d is indexed under.
func objectNameOf(d *Descriptor) string {
	if d.ObjectName == "" {
		return d.ControlName
	}
	return d.ObjectName
}

func (reg *Registry) checkIdentity(d *Descriptor) error {
	if d == nil {
		return ErrNilDescriptor
	}
	if !d.Category.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(d.Category))
	}
	if d.ControlName == "" {
		return ErrEmptyControlName
	}
	if d.Registered() {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, d.ControlName)
	}

	if d.ControlName == RootControlName {
		return fmt.Errorf("%w: %q", ErrReservedName, d.ControlName)
	}
	if _, exists := reg.names[d.ControlName]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateControlName, d.ControlName)
	}
	if _, exists := reg.collections[d.Category].byObject[objectNameOf(d)]; exists {
		return fmt.Errorf("%w: %s %q", ErrDuplicateObjectName, d.Category, objectNameOf(d))
	}
	if _, exists := reg.subNamespaces[d.Namespace]; !exists {
		return fmt.Errorf("%w: %q", ErrInvalidNamespace, d.Namespace)
	}
	return nil
}

func (reg *Registry) checkSubNamespace(d *Descriptor) error {
	if !d.IsGroup() {
		return nil
	}
	switch owner, taken := reg.subNamespaces[d.SubNamespace]; {
	case d.SubNamespace == "":
		return fmt.Errorf("%w: group %q declares no sub-namespace", ErrInvalidSubNamespace, d.ControlName)
	case d.SubNamespace == d.Namespace:
		return fmt.Errorf("%w: group %q uses its own namespace %q", ErrInvalidSubNamespace, d.ControlName, d.Namespace)
	case taken:
		return fmt.Errorf("%w: %q is already introduced by %q", ErrInvalidSubNamespace, d.SubNamespace, owner.ControlName)
	}
	return nil
}

// checkPayload validates the payload of d, if it has one.
func checkPayload(d *Descriptor) error {
	if d.Payload == nil {
		return nil
	}
	if d.Payload.Category() != d.Category {
		return fmt.Errorf("%w: %s payload on a %s", ErrInvalidField, d.Payload.Category(), d.Category)
	}
	if err := d.Payload.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidField, d.Category, err)
	}
	return nil
}

// link assigns the load order and ID and adds d to every index.
func (reg *Registry) link(d *Descriptor) {
	d.ObjectName = objectNameOf(d)
	d.LoadOrder = reg.next
	reg.next++
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	reg.collections[d.Category].add(d)
	reg.names[d.ControlName] = d
	reg.members[d.Namespace] = append(reg.members[d.Namespace], d.ControlName)
	reg.ordered = append(reg.ordered, d)
	if d.IsGroup() {
		reg.subNamespaces[d.SubNamespace] = d
		reg.namespaces = append(reg.namespaces, d.SubNamespace)
		reg.members[d.SubNamespace] = []string{}
	}

	reg.logger.Debug().
		Str("control", d.ControlName).
		Stringer("category", d.Category).
		Str("namespace", d.Namespace).
		Int("load_order", d.LoadOrder).
		Msg("control registered")
}

// identity is the part of a descriptor Register fills in.
type identity struct {
	id         uuid.UUID
	objectName string
}

// Load registers every descriptor of a parse result in table order. It is
// all or nothing: on error the descriptors added by this call are removed
// again, restored to their unregistered state, and the registry is left as
// it was.
func (reg *Registry) Load(result *ParseResult) error {
	mark := len(reg.ordered)
	saved := make([]identity, 0, len(result.Flat))

	for _, d := range result.Flat {
		if d == nil {
			reg.rollback(mark, saved)
			return ErrNilDescriptor
		}

		before := identity{id: d.ID, objectName: d.ObjectName}
		if err := reg.Register(d); err != nil {
			reg.rollback(mark, saved)
			return &RowError{Row: d.Row, Object: d.ObjectName, Err: err}
		}
		saved = append(saved, before)
	}

	reg.logger.Debug().Int("controls", len(result.Flat)).Msg("table loaded")
	return nil
}

// rollback unlinks every descriptor registered after the first mark ones,
// newest first, so each removal undoes the latest append of every index.
// saved holds the identity of each of them before registration.
func (reg *Registry) rollback(mark int, saved []identity) {
	for i := len(reg.ordered) - 1; i >= mark; i-- {
		d := reg.ordered[i]

		reg.collections[d.Category].removeLast()
		delete(reg.names, d.ControlName)
		members := reg.members[d.Namespace]
		reg.members[d.Namespace] = members[:len(members)-1]
		if d.IsGroup() {
			delete(reg.subNamespaces, d.SubNamespace)
			delete(reg.members, d.SubNamespace)
			reg.namespaces = reg.namespaces[:len(reg.namespaces)-1]
		}

		d.LoadOrder = -1
		d.ID = saved[i-mark].id
		d.ObjectName = saved[i-mark].objectName
	}

	reg.ordered = reg.ordered[:mark]
	reg.next = mark
}

// Get returns the descriptor with the given control name. The reserved
// root name always resolves to the basic group.
func (reg *Registry) Get(controlName string) (*Descriptor, bool) {
	if controlName == RootControlName {
		return reg.root, true
	}
	d, ok := reg.names[controlName]
	return d, ok
}

// Root returns the permanent basic group.
func (reg *Registry) Root() *Descriptor {
	return reg.root
}

// RootNamespace returns the sub-namespace of the basic group.
func (reg *Registry) RootNamespace() string {
	return reg.rootNamespace
}

// Len returns the number of registered descriptors, root excluded.
func (reg *Registry) Len() int {
	return len(reg.ordered)
}

// Ordered returns every non-root descriptor sorted by load order.
func (reg *Registry) Ordered() []*Descriptor {
	return append([]*Descriptor(nil), reg.ordered...)
}

// NamespaceMembers maps each namespace to the control names placed in it,
// in load order. Namespaces of empty groups map to an empty list.
func (reg *Registry) NamespaceMembers() map[string][]string {
	out := make(map[string][]string, len(reg.members))
	for ns, names := range reg.members {
		out[ns] = append([]string{}, names...)
	}
	return out
}

// Namespaces returns every registered namespace, root first, in the order
// the groups introducing them were registered.
func (reg *Registry) Namespaces() []string {
	return append([]string(nil), reg.namespaces...)
}

// Members returns the control names placed in namespace.
func (reg *Registry) Members(namespace string) ([]string, bool) {
	names, ok := reg.members[namespace]
	if !ok {
		return nil, false
	}
	return append([]string{}, names...), true
}

// Owner returns the group that introduced namespace.
func (reg *Registry) Owner(namespace string) (*Descriptor, bool) {
	d, ok := reg.subNamespaces[namespace]
	return d, ok
}

// Collection returns the descriptors of one category.
func (reg *Registry) Collection(category Category) *Collection {
	if !category.Valid() {
		return nil
	}
	return reg.collections[category]
}

// Clear drops every non-root descriptor and resets the load order counter.
// Calling it again has no further effect.
func (reg *Registry) Clear() {
	for _, d := range reg.ordered {
		d.LoadOrder = -1
	}
	reg.reset()
	reg.logger.Debug().Msg("registry cleared")
}

///////////////////////////////////////////////////////////////////////////////
// Collection
///////////////////////////////////////////////////////////////////////////////

// Collection is the per-category view of a Registry, addressed by object
// name.
type Collection struct {
	category Category
	byObject map[string]*Descriptor
	order    []*Descriptor
}

func newCollection(category Category) *Collection {
	return &Collection{
		category: category,
		byObject: make(map[string]*Descriptor),
	}
}

func (c *Collection) add(d *Descriptor) {
	c.byObject[d.ObjectName] = d
	c.order = append(c.order, d)
}

func (c *Collection) removeLast() {
	last := c.order[len(c.order)-1]
	delete(c.byObject, last.ObjectName)
	c.order = c.order[:len(c.order)-1]
}

// Category returns the category every descriptor in c belongs to.
func (c *Collection) Category() Category {
	return c.category
}

// Get returns the descriptor with the given object name.
func (c *Collection) Get(objectName string) (*Descriptor, bool) {
	d, ok := c.byObject[objectName]
	return d, ok
}

// Names returns the object names in load order.
func (c *Collection) Names() []string {
	names := make([]string, len(c.order))
	for i, d := range c.order {
		names[i] = d.ObjectName
	}
	return names
}

// All returns the descriptors in load order.
func (c *Collection) All() []*Descriptor {
	return append([]*Descriptor(nil), c.order...)
}

// Len returns the number of descriptors in c.
func (c *Collection) Len() int {
	return len(c.order)
}
