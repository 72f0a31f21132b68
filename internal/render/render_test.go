package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestRenderInjectsVariables(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "greeting.tmpl", "Hello {{.name}}, you have {{.count}} items")

	out, err := New(dir, nil).RenderString("greeting", map[string]any{"name": "Ada", "count": 3})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, you have 3 items", out)
}

func TestRenderNestedNameAndFuncs(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "mail/welcome.tmpl", "{{upper .name}}")

	r := New(dir, template.FuncMap{"upper": strings.ToUpper})
	out, err := r.RenderString("mail/welcome", map[string]any{"name": "ada"})
	require.NoError(t, err)
	assert.Equal(t, "ADA", out)
}

func TestRenderMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), nil).RenderString("x", nil)
	assert.ErrorIs(t, err, ErrTemplateDir)
}

func TestRenderMissingTemplate(t *testing.T) {
	_, err := New(t.TempDir(), nil).RenderString("absent", nil)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = New(t.TempDir(), nil).RenderString("../escape", nil)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestRenderExecuteErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "bad.tmpl", "before {{index .list 5}}")

	var sb strings.Builder
	err := New(dir, nil).Render(&sb, "bad", map[string]any{"list": []int{1}})
	assert.Error(t, err)
	assert.Empty(t, sb.String())
}
