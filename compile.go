package ctrldef

import (
	"io"

	"github.com/rs/zerolog"
)

// CompileOpts combines the parser and registry options used by Compile.
type CompileOpts struct {
	RootNamespace string
	IndentGlyph   string
	Strict        bool
	Logger        *zerolog.Logger
}

// Compile reads a control table, parses it and loads the result into a new
// Registry.
func Compile(r io.Reader, opts CompileOpts) (*Registry, *ParseResult, error) {
	parser := NewParser(ParserOpts{
		RootNamespace: opts.RootNamespace,
		IndentGlyph:   opts.IndentGlyph,
		Strict:        opts.Strict,
		Logger:        opts.Logger,
	})

	result, err := parser.ParseReader(r)
	if err != nil {
		return nil, nil, err
	}

	reg := NewRegistry(RegistryOpts{
		RootNamespace: result.RootNamespace,
		Logger:        opts.Logger,
	})
	if err := reg.Load(result); err != nil {
		return nil, nil, err
	}

	return reg, result, nil
}
