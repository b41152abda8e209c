package ctrldef

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrMissingHandler  = errors.New("no handler for category")
	ErrUnknownCallback = errors.New("callback is not bound")
)

// Handler consumes one registered descriptor, typically by building the
// host widget for it.
type Handler func(d *Descriptor) error

// HandlerTable maps every category to its handler.
type HandlerTable map[Category]Handler

// Validate reports the categories without a handler.
func (t HandlerTable) Validate() error {
	var missing []string
	for _, c := range Categories() {
		if t[c] == nil {
			missing = append(missing, c.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingHandler, strings.Join(missing, ", "))
	}
	return nil
}

// Dispatch calls the handler of every non-root descriptor in load order and
// stops at the first error. The table must cover every category.
func (reg *Registry) Dispatch(table HandlerTable) error {
	if err := table.Validate(); err != nil {
		return err
	}

	for _, d := range reg.ordered {
		if err := table[d.Category](d); err != nil {
			return fmt.Errorf("%s %q: %w", d.Category, d.ControlName, err)
		}
	}
	return nil
}

// Callback reacts to a value change of a control.
type Callback func(d *Descriptor, value any) error

// CallbackTable maps callback names, as written in the callback column, to
// their implementation.
type CallbackTable map[string]Callback

// BindCallbacks resolves the callback name of every registered descriptor.
// Descriptors without a callback name are skipped. The result is keyed by
// descriptor ID.
func (reg *Registry) BindCallbacks(table CallbackTable) (map[uuid.UUID]Callback, error) {
	bound := make(map[uuid.UUID]Callback)

	for _, d := range reg.ordered {
		name := d.Common.Callback
		if name == "" {
			continue
		}
		cb, ok := table[name]
		if !ok || cb == nil {
			return nil, fmt.Errorf("%w: %q (control %q)", ErrUnknownCallback, name, d.ControlName)
		}
		bound[d.ID] = cb
	}

	return bound, nil
}
