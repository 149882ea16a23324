package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/group-shedule/schedule-site/internal/dto"
	"github.com/group-shedule/schedule-site/internal/model"
)

// ── 后端调用错误 ──

var (
	// ErrUnexpectedResponse 后端返回无法解析的内容
	ErrUnexpectedResponse = errors.New("backend: unexpected response")
	// ErrNotConfirmed 后端未明确返回 success=true
	ErrNotConfirmed = errors.New("backend: success not confirmed")
)

// APIError 后端返回的非成功响应（非 2xx 或 success=false）
type APIError struct {
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s: HTTP %d", e.Path, e.Status)
	}
	return fmt.Sprintf("backend %s: HTTP %d: %s", e.Path, e.Status, e.Message)
}

// Photo 待上传的一张照片
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size 照片字节数
func (p *Photo) Size() int64 { return int64(len(p.Data)) }

// Backend 外部课表后端的 REST 接口
//
// 后端拥有全部持久化数据（课表、照片、模板、推送），
// 本接口只做一对一的请求映射，不重试、不缓存。
type Backend interface {
	// GetSchedule GET /schedule?date=YYYY-MM-DD
	GetSchedule(ctx context.Context, date string) ([]model.ScheduleEntry, error)
	// AddPair POST /add-pair
	AddPair(ctx context.Context, req *dto.AddPairRequest) error
	// DeletePair POST /delete-pair（后端级联删除照片）
	DeletePair(ctx context.Context, id string) error
	// UpdateText POST /update-text
	UpdateText(ctx context.Context, req dto.UpdateTextRequest) error
	// UploadLecture POST /upload-lecture（multipart: id, photos[]）
	UploadLecture(ctx context.Context, id string, photos []Photo) error
	// DeleteImage POST /delete-single-image
	DeleteImage(ctx context.Context, req *dto.ImageRequest) error
	// RotateImage POST /rotate-image，返回旋转后的新地址
	RotateImage(ctx context.Context, req *dto.ImageRequest) (string, error)
	// SaveTemplate POST /save-template
	SaveTemplate(ctx context.Context, req *dto.SaveTemplateRequest) error
	// ListTemplates GET /templates
	ListTemplates(ctx context.Context) ([]model.Template, error)
	// DeleteTemplate POST /delete-template
	DeleteTemplate(ctx context.Context, id string) error
	// Notify POST /notify，仅当后端返回 success=true 时视为成功
	Notify(ctx context.Context, message string) error
	// Login POST /login，返回后端是否接受该凭据
	Login(ctx context.Context, login, password string) (bool, error)
}
