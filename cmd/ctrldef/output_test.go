package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/SimonDaKappa/go-ctrldef"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testTable = `name,category,description,|,checked,sub_namespace
-,group,O,|,X,O
-,checkbox,O,|,O,X

grp,group,Options,|,,g1
→chk,checkbox,Enabled,|,true,
last,checkbox,Last,|,,
`

func compileTestTable(t *testing.T) *ctrldef.Registry {
	t.Helper()
	reg, _, err := ctrldef.Compile(strings.NewReader(testTable), ctrldef.CompileOpts{})
	require.NoError(t, err)
	return reg
}

func TestRender(t *testing.T) {
	doc := newDocument(compileTestTable(t))

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, formatJSON, doc))

		var out struct {
			RootNamespace string              `json:"root_namespace"`
			Namespaces    map[string][]string `json:"namespaces"`
			Controls      []struct {
				Category    string         `json:"category"`
				ControlName string         `json:"control_name"`
				Namespace   string         `json:"namespace"`
				LoadOrder   int            `json:"load_order"`
				Payload     map[string]any `json:"payload"`
			} `json:"controls"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

		assert.Equal(t, ctrldef.DefaultRootNamespace, out.RootNamespace)
		assert.Equal(t, []string{"chk"}, out.Namespaces["g1"])
		require.Len(t, out.Controls, 3)
		assert.Equal(t, "checkbox", out.Controls[1].Category)
		assert.Equal(t, "g1", out.Controls[1].Namespace)
		assert.Equal(t, true, out.Controls[1].Payload["checked"])
		assert.Equal(t, "g1", out.Controls[0].Payload["sub_namespace"])
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, formatYAML, doc))

		var out map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
		assert.Equal(t, ctrldef.DefaultRootNamespace, out["root_namespace"])
		assert.Contains(t, buf.String(), "category: group")
	})

	t.Run("Spew", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, formatSpew, doc))
		assert.Contains(t, buf.String(), "ControlName: (string) (len=3) \"chk\"")
	})

	t.Run("Unknown", func(t *testing.T) {
		assert.ErrorIs(t, render(&bytes.Buffer{}, "xml", doc), ErrInvalidConfig)
	})
}

func TestSummarize(t *testing.T) {
	var buf bytes.Buffer
	summarize(&buf, compileTestTable(t))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "3 controls in 2 namespaces\n"))
	assert.Contains(t, out, "props (group): 2")
	assert.Contains(t, out, "g1 (grp): 1")
}

func TestWatchTable(t *testing.T) {
	cfg = *defaultConfig()
	logger = zerolog.Nop()
	path := writeFile(t, "controls.csv", testTable)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	calls := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchTable(ctx, path, func(p string) { calls <- p })
	}()

	select {
	case p := <-calls:
		assert.Equal(t, path, p)
	case <-ctx.Done():
		t.Fatal("no initial compile")
	}

	require.NoError(t, os.WriteFile(path, []byte(testTable+"more,checkbox,More,|,,\n"), 0o644))

	select {
	case p := <-calls:
		assert.Equal(t, path, p)
	case <-ctx.Done():
		t.Fatal("no recompile after write")
	}

	reg, err := compileFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, reg.Len())

	cancel()
	assert.NoError(t, <-done)
}
