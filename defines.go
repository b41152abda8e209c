package ctrldef

import "reflect"

// constants for reserved identifiers
const (
	RootControlName      = "group"
	DefaultRootNamespace = "props"
	DefaultIndentGlyph   = "→"
)

// constants for structural markers in the control table
const (
	TemplateRowMarker    = "-"
	GroupNextMarker      = "|"
	GroupHereMarker      = "||"
	IncludedColumnMarker = "O"
	ExcludedColumnMarker = "X"
	CellQuote            = '"'
	CellDelimiter        = ','
	hexPrefix            = "0x"
)

// Reserved column names in the header row.
const (
	CategoryColumn     = "category"
	ControlNameColumn  = "control_name"
	SubNamespaceColumn = "sub_namespace"
)

// Column group names.
const (
	BasicGroupName = "basic"
	ExtraGroupName = "extra"
)

// constants for the `ctrl` struct tag used by payload types
const (
	PayloadTagName           = "ctrl"
	PayloadTagDelimiter      = ","
	RequiredPayloadModifier  = "required"
	OmitEmptyPayloadModifier = "omitempty"
)

// reflect.TypeOf constants for type checks
var (
	AnyType        = reflect.TypeOf((*any)(nil)).Elem()
	StringListType = reflect.TypeOf([]string{})
)
