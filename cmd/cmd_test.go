package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

const goodDoc = `{"blocks":[
	{"id":"h","type":"heading","props":{"text":"Hello <world>"}},
	{"id":"s","type":"section","props":{"blocks":[{"id":"t","type":"text","props":{"text":"inside"}}]}}
]}`

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", goodDoc)
	bad := writeFile(t, dir, "bad.json", `{"blocks":[{"id":"","type":"text"}]}`)

	out, err := run(t, "", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "(3 blocks)")

	out, err = run(t, "", "validate", good, bad)
	require.ErrorIs(t, err, errInvalidDocuments)
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "$.blocks[0].id")

	out, err = run(t, `{"blocks":[]}`, "validate", "--format", "json", "-")
	require.NoError(t, err)
	var results []validationResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.True(t, results[0].Valid)
	assert.Equal(t, "-", results[0].File)

	_, err = run(t, "", "validate", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "page.json", `{"blocks":[
		{"id":"h","type":"heading","props":{"text":"Hello <world>"}},
		{"id":"u","type":"carousel"}
	]}`)

	out, err := run(t, "", "render", "--title", "Demo", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "<title>Demo</title>")
	assert.Contains(t, out, "Hello &lt;world&gt;")
	assert.NotContains(t, out, "carousel")

	out, err = run(t, "", "render", "--mode", "draft", "--fragment", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "carousel")
	assert.NotContains(t, out, "<html")

	target := filepath.Join(dir, "page.html")
	_, err = run(t, "", "render", "-o", target, doc)
	require.NoError(t, err)
	assert.FileExists(t, target)

	_, err = run(t, "", "render", "--mode", "print", doc)
	assert.Error(t, err)
}

func TestTemplatesCheckCommand(t *testing.T) {
	out, err := run(t, "", "templates", "check", "../templates")
	require.NoError(t, err)
	assert.Contains(t, out, "developer-portfolio")

	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: Broken\nslug: broken\ncontent:\n  blocks:\n    - type: text\n")
	out, err = run(t, "", "templates", "check", dir)
	require.ErrorIs(t, err, errInvalidDocuments)
	assert.Contains(t, out, "$.blocks[0].id")
}

func TestTemplatesSeedRequiresDir(t *testing.T) {
	_, err := run(t, "", "templates", "seed")
	assert.ErrorContains(t, err, "--dir")
}
