package dto

// ── 页面表单绑定 ──

// ShiftDateForm 前后翻天
type ShiftDateForm struct {
	Delta int `form:"delta" binding:"required"`
}

// PickDateQuery GET / 的日期参数
type PickDateQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// CreateEntryForm 新增课程表单（只校验必填）
type CreateEntryForm struct {
	TimeStart string `form:"time_start" binding:"required"`
	TimeEnd   string `form:"time_end"   binding:"required"`
	Subject   string `form:"subject"    binding:"required"`
	Teacher   string `form:"teacher"    binding:"required"`
}

// UpdateFieldRequest 内联编辑（JSON 或表单）
type UpdateFieldRequest struct {
	Field string `json:"field" form:"field" binding:"required,oneof=subject teacher"`
	Value string `json:"value" form:"value"`
}

// HomeworkForm 保存作业
type HomeworkForm struct {
	Text string `form:"homework"`
}

// LoginForm 管理员登录（空值视为取消，不做 required 校验）
type LoginForm struct {
	Login    string `form:"login"`
	Password string `form:"password"`
}

// TemplateNameForm 保存模板时输入的名称（空值视为取消）
type TemplateNameForm struct {
	Name string `form:"name"`
}

// NotificationLogQuery 通知记录查询
type NotificationLogQuery struct {
	PaginationRequest
}
