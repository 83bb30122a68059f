package seed

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

const minimal = `
name: Minimal
slug: minimal
defaultTitle: My page
order: 2
content:
  blocks:
    - id: title
      type: heading
      props:
        text: Hello
        level: h1
`

func TestParseDefaultsAndContent(t *testing.T) {
	tmpl, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "Minimal", tmpl.Name)
	assert.Equal(t, "minimal", tmpl.Slug)
	assert.Equal(t, "general", tmpl.Category)
	assert.Equal(t, 2, tmpl.Order)
	assert.True(t, tmpl.IsActive)
	assert.False(t, tmpl.IsPremium)
	assert.JSONEq(t, `{"blocks":[{"id":"title","type":"heading","props":{"text":"Hello","level":"h1"}}]}`, string(tmpl.ContentJSON))
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"no content":    "name: A\nslug: a\n",
		"unknown field": "name: A\nslug: a\ncolour: red\ncontent: {blocks: []}\n",
		"not yaml":      "name: [\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.yaml", "name: B\nslug: b\nactive: false\ncontent: {blocks: []}\n")
	write(t, dir, "a.yml", minimal)
	write(t, dir, "notes.txt", "ignored")

	rows, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "minimal", rows[0].Slug)
	assert.Equal(t, "b", rows[1].Slug)
	assert.False(t, rows[1].IsActive)

	write(t, dir, "c.yaml", "name: C\n")
	write(t, dir, "d.yaml", "name: [\n")
	_, err = LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c.yaml")
	assert.Contains(t, err.Error(), "d.yaml")
}

func TestWatchAppliesAfterChanges(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var applied atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, logger.Nop(), dir, 20*time.Millisecond, func(context.Context) error {
			applied.Add(1)
			return nil
		})
	}()

	// the watcher registers asynchronously; keep touching files until it reacts
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(minimal), 0o644)
		return applied.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	// let the last burst settle
	time.Sleep(150 * time.Millisecond)
	before := applied.Load()
	write(t, dir, "ignored.txt", "x")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, applied.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func write(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}
