package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/SimonDaKappa/go-ctrldef"
	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatSpew = "spew"
)

// Document is the printed form of a compiled registry.
type Document struct {
	RootNamespace string                `json:"root_namespace" yaml:"root_namespace"`
	Controls      []*ctrldef.Descriptor `json:"controls" yaml:"controls"`
	Namespaces    map[string][]string   `json:"namespaces" yaml:"namespaces"`
}

func newDocument(reg *ctrldef.Registry) Document {
	return Document{
		RootNamespace: reg.RootNamespace(),
		Controls:      reg.Ordered(),
		Namespaces:    reg.NamespaceMembers(),
	}
}

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	MaxDepth:                4,
}

// render writes doc to w in the given format.
func render(w io.Writer, format string, doc Document) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case formatSpew:
		spewConfig.Fdump(w, doc)
		return nil
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, format)
	}
}
