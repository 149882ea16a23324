package session

import (
	"github.com/group-shedule/schedule-site/internal/model"
)

// ModalMode 弹窗模式，同一时刻只有一种
type ModalMode string

const (
	ModalClosed    ModalMode = ""
	ModalHomework  ModalMode = "homework"
	ModalGallery   ModalMode = "gallery"
	ModalTemplates ModalMode = "templates"
	ModalLogin     ModalMode = "login"
	ModalConfirm   ModalMode = "confirm"
	ModalAdd       ModalMode = "add"
)

// Modal 当前弹窗
type Modal struct {
	Mode    ModalMode `json:"mode,omitempty"`
	EntryID string    `json:"entry_id,omitempty"`
}

// Confirmation 等待用户确认的操作
// 页面展示 Message 原文，用户点"确定"后带 confirm=yes 重新提交 Action
type Confirmation struct {
	Message string            `json:"message"`
	Action  string            `json:"action"`
	Fields  map[string]string `json:"fields,omitempty"`
	Return  Modal             `json:"return"`
}

// State 单个浏览器会话的全部界面状态
//
// 每个请求从 Store 取出、修改、写回；IsAdmin/AdminName 不落盘，
// 由管理员 Cookie 在每个请求上重新计算。
type State struct {
	Date      string                `json:"date"`
	HumanDate string                `json:"human_date,omitempty"`
	Entries   []model.ScheduleEntry `json:"entries"`
	Loading   bool                  `json:"loading,omitempty"`
	IsAdmin   bool                  `json:"-"`
	AdminName string                `json:"-"`
	Modal     Modal                 `json:"modal"`
	Gallery   Gallery               `json:"gallery"`
	ChangeLog []string              `json:"change_log,omitempty"`
	Confirm   *Confirmation         `json:"confirm,omitempty"`
	Flash     []string              `json:"flash,omitempty"`
	Templates []model.Template      `json:"templates,omitempty"`

	// Fresh 快照刚由一次变更后的重新拉取得到，下一次页面渲染无需再拉
	Fresh bool `json:"fresh,omitempty"`
}

// New 创建空会话状态
func New() *State {
	return &State{Entries: []model.ScheduleEntry{}}
}

// AddFlash 追加一条提示，下一次渲染时展示
func (s *State) AddFlash(msg string) {
	s.Flash = append(s.Flash, msg)
}

// TakeFlash 取出并清空提示
func (s *State) TakeFlash() []string {
	f := s.Flash
	s.Flash = nil
	return f
}

// OpenModal 切换到指定弹窗（覆盖之前的弹窗）
func (s *State) OpenModal(mode ModalMode, entryID string) {
	s.Modal = Modal{Mode: mode, EntryID: entryID}
}

// CloseModal 关闭弹窗
// 确认框被取消时回到弹出确认前的弹窗
func (s *State) CloseModal() {
	if s.Confirm != nil {
		s.Modal = s.Confirm.Return
		s.Confirm = nil
		return
	}
	s.Modal = Modal{}
}

// AskConfirm 挂起一个待确认操作
func (s *State) AskConfirm(message, action string, fields map[string]string) {
	ret := s.Modal
	if s.Confirm != nil {
		ret = s.Confirm.Return
	}
	s.Confirm = &Confirmation{Message: message, Action: action, Fields: fields, Return: ret}
	s.Modal = Modal{Mode: ModalConfirm}
}

// ResolveConfirm 用户已确认：丢弃挂起的确认并回到原弹窗
func (s *State) ResolveConfirm() {
	if s.Confirm == nil {
		return
	}
	s.Modal = s.Confirm.Return
	s.Confirm = nil
}

// AppendChange 记录一条变更，发送通知前不去重
func (s *State) AppendChange(line string) {
	s.ChangeLog = append(s.ChangeLog, line)
}

// ReplaceEntries 用一次完整快照替换当前课程列表
func (s *State) ReplaceEntries(entries []model.ScheduleEntry) {
	if entries == nil {
		entries = []model.ScheduleEntry{}
	}
	s.Entries = entries
	s.Loading = false
	s.Fresh = true
}

// ConsumeFresh 读取并清除 Fresh 标记
func (s *State) ConsumeFresh() bool {
	f := s.Fresh
	s.Fresh = false
	return f
}
