package view

import (
	"html/template"

	"github.com/group-shedule/schedule-site/internal/model"
	"github.com/group-shedule/schedule-site/internal/session"
)

// UploadHint 上传区域的提示信息
type UploadHint struct {
	Compress bool
	MaxMB    int64
}

// Page 一次整页渲染所需的数据
type Page struct {
	State     *session.State
	Flash     []string
	CSRFField template.HTML
	CSRFToken string
	Today     string
	Upload    UploadHint
	Journal   bool

	// 当前弹窗关联的课程（作业、相册）
	ModalEntry *model.ScheduleEntry

	// 相册
	Photo      model.LectureFile
	HasPhoto   bool
	PhotoPos   int
	PhotoTotal int
}

// NewPage 从会话状态组装页面数据，取走待展示的提示
func NewPage(st *session.State) *Page {
	p := &Page{State: st, Flash: st.TakeFlash()}
	if st.Modal.EntryID != "" {
		if e, ok := model.FindEntry(st.Entries, st.Modal.EntryID); ok {
			p.ModalEntry = e
		}
	}
	if st.Modal.Mode == session.ModalGallery {
		p.Photo, p.HasPhoto = st.Gallery.Current()
		p.PhotoPos, p.PhotoTotal = st.Gallery.Position()
	}
	return p
}

// ModalTitle 弹窗标题
func (p *Page) ModalTitle() string {
	switch p.State.Modal.Mode {
	case session.ModalHomework:
		return "Домашнее задание"
	case session.ModalGallery:
		return "Материалы лекции"
	case session.ModalTemplates:
		return "Шаблоны"
	case session.ModalLogin:
		return "Вход администратора"
	case session.ModalConfirm:
		return "Подтверждение"
	case session.ModalAdd:
		return "Новая пара"
	}
	return ""
}
