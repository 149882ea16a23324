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
	msgPhotoDeleteConfirm = "Удалить это фото?"
	msgPhotoDeleteFailed  = "Ошибка удаления фото"
	msgPhotoRotateFailed  = "Ошибка поворота фото"
)

// GalleryService 课堂照片浏览
//
// 删除与旋转成功后保持相册打开，并在后台重新拉取当天课表，
// 让卡片上的照片数量与相册一致；重新拉取不触碰相册状态。
type GalleryService interface {
	OpenGallery(st *session.State, id string) error
	NextSlide(st *session.State)
	PrevSlide(st *session.State)
	DeletePhoto(ctx context.Context, st *session.State, c Confirmer) error
	RotatePhoto(ctx context.Context, st *session.State) error
}

type galleryService struct {
	backend  client.Backend
	schedule ScheduleService
	logger   *zap.Logger
}

// NewGalleryService 创建 GalleryService 实例
func NewGalleryService(backend client.Backend, schedule ScheduleService, logger *zap.Logger) GalleryService {
	return &galleryService{backend: backend, schedule: schedule, logger: logger}
}

func (s *galleryService) OpenGallery(st *session.State, id string) error {
	e, ok := model.FindEntry(st.Entries, id)
	if !ok {
		return ErrEntryNotFound
	}
	st.Gallery.Reset(id, e.LectureFiles)
	st.OpenModal(session.ModalGallery, id)
	return nil
}

func (s *galleryService) NextSlide(st *session.State) { st.Gallery.Next() }

func (s *galleryService) PrevSlide(st *session.State) { st.Gallery.Prev() }

func (s *galleryService) DeletePhoto(ctx context.Context, st *session.State, c Confirmer) error {
	if err := requireAdmin(st); err != nil {
		return err
	}
	req, err := currentImage(st)
	if err != nil {
		return err
	}
	if !c.Confirm(msgPhotoDeleteConfirm) {
		return nil
	}
	if err := s.backend.DeleteImage(ctx, req); err != nil {
		s.logger.Warn("删除照片失败", zap.String("doc_id", req.DocID), zap.String("image_id", req.ImageID), zap.Error(err))
		return alert(msgPhotoDeleteFailed, err)
	}
	st.Gallery.RemoveCurrent()
	s.schedule.Reload(ctx, st)
	return nil
}

func (s *galleryService) RotatePhoto(ctx context.Context, st *session.State) error {
	if err := requireAdmin(st); err != nil {
		return err
	}
	req, err := currentImage(st)
	if err != nil {
		return err
	}
	newURL, err := s.backend.RotateImage(ctx, req)
	if err != nil {
		s.logger.Warn("旋转照片失败", zap.String("doc_id", req.DocID), zap.String("image_id", req.ImageID), zap.Error(err))
		return alert(msgPhotoRotateFailed, err)
	}
	st.Gallery.ReplaceCurrentURL(newURL)
	s.schedule.Reload(ctx, st)
	return nil
}

func currentImage(st *session.State) (*dto.ImageRequest, error) {
	cur, ok := st.Gallery.Current()
	if !ok {
		return nil, ErrNoPhoto
	}
	return &dto.ImageRequest{
		DocID:    st.Gallery.EntryID,
		ImageID:  cur.ID,
		ImageURL: cur.URL,
	}, nil
}
