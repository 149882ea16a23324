package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/group-shedule/schedule-site/internal/model"
	"github.com/group-shedule/schedule-site/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer 页面渲染器，模板在启动时解析一次
type Renderer struct {
	tpl *template.Template
}

// NewRenderer 解析内嵌模板
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"homework":   FormatHomework,
		"photoCount": func(e model.ScheduleEntry) int { return e.PhotoCount() },
		"modalIs": func(st *session.State, mode string) bool {
			return string(st.Modal.Mode) == mode
		},
		"weekly": func(t model.Template) bool { return t.IsWeekly() },
		"lines":  func(s string) []string { return strings.Split(s, "\n") },
	}
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("解析页面模板失败: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// Render 渲染整页；先写入缓冲区，模板出错时不输出半个页面
func (r *Renderer) Render(w io.Writer, p *Page) error {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		return fmt.Errorf("渲染页面失败: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
