package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/internal/client"
	"github.com/group-shedule/schedule-site/internal/dto"
	"github.com/group-shedule/schedule-site/internal/model"
	"github.com/group-shedule/schedule-site/internal/session"
)

const (
	msgHomeworkSaved  = "ДЗ сохранено!"
	msgHomeworkFailed = "Ошибка сохранения ДЗ"
)

// HomeworkService 作业查看与编辑
type HomeworkService interface {
	OpenHomework(st *session.State, id string) error
	SaveHomework(ctx context.Context, st *session.State, id, subjectLabel, text string) error
}

type homeworkService struct {
	backend  client.Backend
	schedule ScheduleService
	logger   *zap.Logger
}

// NewHomeworkService 创建 HomeworkService 实例
func NewHomeworkService(backend client.Backend, schedule ScheduleService, logger *zap.Logger) HomeworkService {
	return &homeworkService{backend: backend, schedule: schedule, logger: logger}
}

// OpenHomework 打开作业弹窗；渲染层按是否管理员决定只读或可编辑
func (s *homeworkService) OpenHomework(st *session.State, id string) error {
	if _, ok := model.FindEntry(st.Entries, id); !ok {
		return ErrEntryNotFound
	}
	st.OpenModal(session.ModalHomework, id)
	return nil
}

func (s *homeworkService) SaveHomework(ctx context.Context, st *session.State, id, subjectLabel, text string) error {
	if err := requireAdmin(st); err != nil {
		return err
	}
	label := entryLabel(st, id, subjectLabel)
	if err := s.backend.UpdateText(ctx, dto.NewUpdateText(id, "homework", text)); err != nil {
		s.logger.Warn("保存作业失败", zap.String("id", id), zap.Error(err))
		return alert(msgHomeworkFailed, err)
	}
	st.AppendChange("📝 " + label + ": обновлено ДЗ")
	st.AddFlash(msgHomeworkSaved)
	st.CloseModal()
	s.schedule.Reload(ctx, st)
	return nil
}
