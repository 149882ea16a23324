package view

import (
	"strings"
	"testing"
)

func TestFormatHomework(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		contains    []string
		notContains []string
		exact       string
	}{
		{name: "空作业", text: "", exact: NoHomework},
		{name: "纯文本换行", text: "стр. 12\nупр. 3", exact: "стр. 12<br>упр. 3"},
		{
			name:        "Telegram 链接不开新标签",
			text:        "см. http://t.me/x",
			contains:    []string{`href="http://t.me/x"`},
			notContains: []string{"target="},
		},
		{
			name:     "普通链接新标签打开",
			text:     "https://example.com/x",
			contains: []string{`href="https://example.com/x"`, `target="_blank"`},
		},
		{
			name:        "链接后换行不被吞入",
			text:        "https://example.com/a\nдалее",
			contains:    []string{`href="https://example.com/a"`, "</a><br>далее"},
			notContains: []string{`a<br>"`},
		},
		{
			name:        "HTML 被转义",
			text:        `<script>alert(1)</script>`,
			contains:    []string{"&lt;script&gt;"},
			notContains: []string{"<script>"},
		},
		{
			name:        "相似域名不视为 Telegram",
			text:        "https://chat.me/x",
			contains:    []string{`target="_blank"`},
		},
		{
			name:        "引号内的链接",
			text:        `"https://x.com"`,
			exact:       `&#34;<a class="hw-link" href="https://x.com" target="_blank" rel="noopener">https://x.com</a>&#34;`,
			notContains: []string{`x.com&#34;"`},
		},
		{
			name:     "句末标点不属于链接",
			text:     "читать https://x.com/a.",
			contains: []string{`href="https://x.com/a"`, "</a>."},
		},
		{
			name:        "链接遇到尖括号截止",
			text:        "https://x.com/<b>",
			contains:    []string{`href="https://x.com/"`, "&lt;b&gt;"},
			notContains: []string{"<b>"},
		},
		{
			name:     "查询参数中的 & 被转义",
			text:     "https://x.com/?a=1&b=2",
			contains: []string{`href="https://x.com/?a=1&amp;b=2"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(FormatHomework(tt.text))
			if tt.exact != "" && got != tt.exact {
				t.Errorf("期望 %q，实际: %q", tt.exact, got)
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("期望包含 %q，实际: %q", s, got)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(got, s) {
					t.Errorf("不应包含 %q，实际: %q", s, got)
				}
			}
		})
	}
}

func TestHumanDate(t *testing.T) {
	got := HumanDate("2024-09-02")
	if !strings.Contains(got, "2024") || !strings.Contains(got, "2") {
		t.Errorf("期望包含日期与年份，实际: %q", got)
	}
	if strings.Contains(got, "Monday") || strings.Contains(got, "September") {
		t.Errorf("期望俄语输出，实际: %q", got)
	}
	if HumanDate("не дата") != "не дата" {
		t.Error("无法解析的日期应原样返回")
	}
}
