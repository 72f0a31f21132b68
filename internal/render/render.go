// Package render 执行目录下的具名模板文件并捕获输出，与缓存本身无耦合。
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// templateExt 为模板文件后缀。
const templateExt = ".tmpl"

var (
	// ErrTemplateDir 表示模板目录不存在或不可读。
	ErrTemplateDir = errors.New("template directory not available")
	// ErrTemplateNotFound 表示目录下没有对应的模板文件。
	ErrTemplateNotFound = errors.New("template not found")
)

// Renderer 以 dir 为根查找 <name>.tmpl 并注入变量执行。
type Renderer struct {
	dir   string
	funcs template.FuncMap
}

// New 构造 Renderer，目录的存在性在渲染时检查。
func New(dir string, funcs template.FuncMap) *Renderer {
	return &Renderer{dir: dir, funcs: funcs}
}

// Dir 返回模板目录。
func (r *Renderer) Dir() string { return r.dir }

// Render 执行模板 name，将输出写入 w。
func (r *Renderer) Render(w io.Writer, name string, vars map[string]any) error {
	info, err := os.Stat(r.dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrTemplateDir, r.dir)
	}
	if name == "" || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	file := filepath.Join(r.dir, filepath.FromSlash(name)+templateExt)
	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s in %s", ErrTemplateNotFound, name+templateExt, r.dir)
		}
		return err
	}

	tmpl, err := template.New(filepath.Base(file)).Funcs(r.funcs).Option("missingkey=zero").ParseFiles(file)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}

	// 先写入缓冲区，执行失败时不输出半截内容。
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// RenderString 执行模板 name 并返回输出字符串。
func (r *Renderer) RenderString(name string, vars map[string]any) (string, error) {
	var sb strings.Builder
	if err := r.Render(&sb, name, vars); err != nil {
		return "", err
	}
	return sb.String(), nil
}
