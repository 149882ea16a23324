package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/internal/client"
	"github.com/group-shedule/schedule-site/internal/dto"
	"github.com/group-shedule/schedule-site/internal/model"
	"github.com/group-shedule/schedule-site/internal/session"
	"github.com/group-shedule/schedule-site/internal/view"
)

const (
	msgNothingToSave       = "Нечего сохранять"
	msgTemplateSaved       = "Шаблон сохранён!"
	msgTemplateSaveFailed  = "Ошибка сохранения шаблона"
	msgTemplateListFailed  = "Ошибка загрузки шаблонов"
	msgTemplateApplied     = "Шаблон применён!"
	msgTemplateDeleteError = "Ошибка удаления шаблона"
)

// 一周的天数（周模板按周一起的 7 天收集）
const daysInWeek = 7

// TemplateService 课表模板
//
// 保存与应用都严格顺序执行；应用中途失败不回滚，
// 返回已创建数量并重新拉取，让用户看到真实结果。
type TemplateService interface {
	SaveWeekAsTemplate(ctx context.Context, st *session.State, name string) error
	SaveDayAsTemplate(ctx context.Context, st *session.State, name string) error
	OpenTemplateModal(ctx context.Context, st *session.State) error
	ApplyTemplate(ctx context.Context, st *session.State, id string, c Confirmer) error
	DeleteTemplate(ctx context.Context, st *session.State, id string, c Confirmer) error
}

type templateService struct {
	backend  client.Backend
	schedule ScheduleService
	logger   *zap.Logger
}

// NewTemplateService 创建 TemplateService 实例
func NewTemplateService(backend client.Backend, schedule ScheduleService, logger *zap.Logger) TemplateService {
	return &templateService{backend: backend, schedule: schedule, logger: logger}
}

// ── 保存 ──

func (s *templateService) SaveWeekAsTemplate(ctx context.Context, st *session.State, name string) error {
	if err := requireAdmin(st); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	monday, err := weekStart(st.Date)
	if err != nil {
		return err
	}

	var pairs []dto.TemplatePair
	for offset := 0; offset < daysInWeek; offset++ {
		date := monday.AddDate(0, 0, offset).Format(view.DateLayout)
		entries, err := s.backend.GetSchedule(ctx, date)
		if err != nil {
			s.logger.Warn("收集周模板失败", zap.String("date", date), zap.Error(err))
			return alert(msgTemplateSaveFailed, err)
		}
		for i := range entries {
			day := offset
			pairs = append(pairs, templatePair(&entries[i], &day))
		}
	}
	return s.save(ctx, st, name, model.TemplateTypeWeek, pairs)
}

func (s *templateService) SaveDayAsTemplate(ctx context.Context, st *session.State, name string) error {
	if err := requireAdmin(st); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	pairs := make([]dto.TemplatePair, 0, len(st.Entries))
	for i := range st.Entries {
		pairs = append(pairs, templatePair(&st.Entries[i], nil))
	}
	return s.save(ctx, st, name, model.TemplateTypeDay, pairs)
}

func (s *templateService) save(ctx context.Context, st *session.State, name, typ string, pairs []dto.TemplatePair) error {
	if len(pairs) == 0 {
		return alert(msgNothingToSave, nil)
	}
	req := &dto.SaveTemplateRequest{Name: name, Type: typ, Pairs: pairs}
	if err := s.backend.SaveTemplate(ctx, req); err != nil {
		s.logger.Warn("保存模板失败", zap.String("name", name), zap.Error(err))
		return alert(msgTemplateSaveFailed, err)
	}
	st.AddFlash(msgTemplateSaved)
	return nil
}

func templatePair(e *model.ScheduleEntry, dayIndex *int) dto.TemplatePair {
	return dto.TemplatePair{
		DayIndex:  dayIndex,
		TimeStart: e.TimeStart,
		TimeEnd:   e.TimeEnd,
		Subject:   e.Subject,
		Teacher:   e.Teacher,
	}
}

// ── 列表 / 应用 / 删除 ──

func (s *templateService) OpenTemplateModal(ctx context.Context, st *session.State) error {
	if err := requireAdmin(st); err != nil {
		return err
	}
	templates, err := s.backend.ListTemplates(ctx)
	if err != nil {
		s.logger.Warn("加载模板列表失败", zap.Error(err))
		return alert(msgTemplateListFailed, err)
	}
	st.Templates = templates
	st.OpenModal(session.ModalTemplates, "")
	return nil
}

func (s *templateService) ApplyTemplate(ctx context.Context, st *session.State, id string, c Confirmer) error {
	if err := requireAdmin(st); err != nil {
		return err
	}
	tpl, ok := findTemplate(st.Templates, id)
	if !ok {
		return ErrTemplateAbsent
	}
	if !c.Confirm(fmt.Sprintf("Применить шаблон «%s»? Пары добавятся к уже существующим.", tpl.Name)) {
		return nil
	}

	reqs, err := applyRequests(tpl, st.Date)
	if err != nil {
		return err
	}
	for i, req := range reqs {
		if err := s.backend.AddPair(ctx, req); err != nil {
			s.logger.Warn("应用模板中断",
				zap.String("template", tpl.ID),
				zap.Int("created", i),
				zap.Int("total", len(reqs)),
				zap.Error(err),
			)
			s.schedule.Reload(ctx, st)
			return alert(fmt.Sprintf("Шаблон применён частично: создано %d из %d", i, len(reqs)), err)
		}
	}

	st.AddFlash(msgTemplateApplied)
	st.CloseModal()
	s.schedule.Reload(ctx, st)
	return nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, st *session.State, id string, c Confirmer) error {
	if err := requireAdmin(st); err != nil {
		return err
	}
	tpl, ok := findTemplate(st.Templates, id)
	if !ok {
		return ErrTemplateAbsent
	}
	if !c.Confirm(fmt.Sprintf("Удалить шаблон «%s»?", tpl.Name)) {
		return nil
	}
	if err := s.backend.DeleteTemplate(ctx, id); err != nil {
		s.logger.Warn("删除模板失败", zap.String("id", id), zap.Error(err))
		return alert(msgTemplateDeleteError, err)
	}
	kept := st.Templates[:0]
	for _, t := range st.Templates {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	st.Templates = kept
	return nil
}

// applyRequests 把模板展开为新增请求
// 周模板落在所选日期所在周的周一 + day_index，日模板落在所选日期
func applyRequests(tpl *model.Template, picked string) ([]*dto.AddPairRequest, error) {
	monday, err := weekStart(picked)
	if err != nil {
		return nil, err
	}
	weekly := tpl.IsWeekly()
	reqs := make([]*dto.AddPairRequest, 0, len(tpl.Pairs))
	for _, p := range tpl.Pairs {
		date := picked
		if weekly && p.DayIndex != nil {
			date = monday.AddDate(0, 0, *p.DayIndex).Format(view.DateLayout)
		}
		reqs = append(reqs, &dto.AddPairRequest{
			Date:      date,
			TimeStart: p.TimeStart,
			TimeEnd:   p.TimeEnd,
			Subject:   p.Subject,
			Teacher:   p.Teacher,
		})
	}
	return reqs, nil
}

func findTemplate(templates []model.Template, id string) (*model.Template, bool) {
	for i := range templates {
		if templates[i].ID == id {
			return &templates[i], true
		}
	}
	return nil, false
}

// weekStart 所在周的周一
func weekStart(date string) (time.Time, error) {
	d, err := time.Parse(view.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset), nil
}

// [自证通过] internal/service/template_service.go
