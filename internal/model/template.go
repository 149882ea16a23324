package model

// 模板类型
const (
	TemplateTypeWeek = "week"
	TemplateTypeDay  = "day"
)

// TemplateEntry 模板中的一节课
// DayIndex 为相对周一的偏移（0=周一 … 6=周日），仅周模板携带
type TemplateEntry struct {
	DayIndex  *int   `json:"day_index,omitempty"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
	Subject   string `json:"subject"`
	Teacher   string `json:"teacher"`
}

// Template 课表模板（由后端存储）
type Template struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  string          `json:"type,omitempty"`
	Pairs []TemplateEntry `json:"pairs"`
}

// IsWeekly 模板形态：只要任一条目带有星期偏移即视为周模板
// 旧数据可能缺少 type 字段，因此以条目为准
func (t *Template) IsWeekly() bool {
	if t.Type == TemplateTypeWeek {
		return true
	}
	for _, p := range t.Pairs {
		if p.DayIndex != nil {
			return true
		}
	}
	return false
}
