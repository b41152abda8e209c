// Package ctrldef compiles declarative control tables into a validated,
// ordered set of control descriptors for a host settings panel.
//
// A control table is comma separated text. The first row names the columns
// and splits them into column groups with the "|" and "||" markers. Rows
// starting with "-" are templates, one per category, marking each column as
// included (O) or excluded (X). Every following non-blank row declares one
// control:
//
//	name,category,control_name,description,|,checked,value,items,sub_namespace
//	-,button,O,O,|,X,X,X,X
//	-,group,O,O,|,X,X,X,O
//	-,checkbox,O,O,|,O,X,X,X
//	-,combobox,O,O,|,X,O,O,X
//
//	top,button,,Top
//	grp,group,,Options,|,,,,g1
//	→chk,checkbox,,Enabled,|,true,,,
//	→cmb,combobox,,Mode,|,,fast,"[""fast"",""slow""]",
//	bottom,button,,Bottom
//
// Leading "→" glyphs give the row depth. A row belongs to the namespace its
// nearest group ancestor introduces (its sub_namespace), or to the root
// namespace when it has none.
//
// Cells are coerced before use:
//   - empty or X: no value
//   - "...": text, with "" as an escaped quote; JSON arrays and objects
//     inside the quotes are decoded
//   - true/false: bool
//   - 1.5: float64, 42: int64, 0xFF: int64
//   - anything else: text
//
// The Parser produces descriptors; a Registry checks them:
//   - control names are unique, and "group" is reserved for the basic group
//   - object names are unique per category
//   - namespaces must be introduced by exactly one group
//
// Accepted descriptors get a load order, which is the order renderers
// should build them in. Compile wires the two together:
//
//	reg, _, err := ctrldef.Compile(file, ctrldef.CompileOpts{RootNamespace: "props"})
//	if err != nil {
//	    return err
//	}
//	for _, d := range reg.Ordered() {
//	    // build the widget for d
//	}
//
// Registries do no locking; share one across goroutines only behind a lock
// of your own.
package ctrldef
