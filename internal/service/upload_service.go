package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/group-shedule/schedule-site/config"
	"github.com/group-shedule/schedule-site/internal/client"
	"github.com/group-shedule/schedule-site/internal/session"
)

const (
	msgUploadDone     = "Фото успешно загружены!"
	msgUploadFailed   = "Ошибка загрузки фото"
	msgCompressFailed = "Не удалось обработать файл %s"
)

// UploadService 课堂照片上传
//
// limit 模式：任一文件超过单文件上限则整批拒绝，不发任何请求；
// compress 模式：全部照片并发压缩，全部成功后一次性上传。
type UploadService interface {
	UploadPhotos(ctx context.Context, st *session.State, id, subjectLabel string, files []client.Photo) error
}

type uploadService struct {
	cfg      *config.UploadConfig
	backend  client.Backend
	schedule ScheduleService
	logger   *zap.Logger
}

// NewUploadService 创建 UploadService 实例
func NewUploadService(cfg *config.UploadConfig, backend client.Backend, schedule ScheduleService, logger *zap.Logger) UploadService {
	return &uploadService{cfg: cfg, backend: backend, schedule: schedule, logger: logger}
}

func (s *uploadService) UploadPhotos(ctx context.Context, st *session.State, id, subjectLabel string, files []client.Photo) error {
	if err := requireAdmin(st); err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}
	label := entryLabel(st, id, subjectLabel)

	var (
		photos []client.Photo
		err    error
	)
	switch s.cfg.Mode {
	case config.UploadModeLimit:
		if err := s.checkLimit(files); err != nil {
			return err
		}
		photos = files
	default:
		photos, err = s.compressAll(ctx, files)
		if err != nil {
			return err
		}
	}

	if err := s.backend.UploadLecture(ctx, id, photos); err != nil {
		s.logger.Warn("上传照片失败", zap.String("id", id), zap.Int("count", len(photos)), zap.Error(err))
		return alert(msgUploadFailed, err)
	}

	st.AppendChange("📸 " + label + ": загружены фото лекции")
	st.AddFlash(msgUploadDone)
	s.schedule.Reload(ctx, st)
	return nil
}

// checkLimit 单文件上限校验（超过上限的文件使整批失败）
func (s *uploadService) checkLimit(files []client.Photo) error {
	for i := range files {
		if files[i].Size() > s.cfg.MaxFileBytes {
			return alert(fmt.Sprintf("Файл %s больше %d МБ", files[i].Name, s.cfg.MaxFileBytes/(1024*1024)), nil)
		}
	}
	return nil
}

// compressAll 并发压缩，任一失败或 ctx 取消时整体放弃
func (s *uploadService) compressAll(ctx context.Context, files []client.Photo) ([]client.Photo, error) {
	out := make([]client.Photo, len(files))
	g, gctx := errgroup.WithContext(ctx)
	limit := s.cfg.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := range files {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := compressPhoto(&files[i], s.cfg.MaxWidth, s.cfg.JPEGQuality)
			if err != nil {
				return alert(fmt.Sprintf(msgCompressFailed, files[i].Name), err)
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("压缩照片失败", zap.Int("count", len(files)), zap.Error(err))
		return nil, err
	}
	return out, nil
}

// compressPhoto 按 EXIF 方向摆正，宽度超过 maxWidth 时等比缩小，重新编码为 JPEG
func compressPhoto(p *client.Photo, maxWidth, quality int) (client.Photo, error) {
	img, err := imaging.Decode(bytes.NewReader(p.Data), imaging.AutoOrientation(true))
	if err != nil {
		return client.Photo{}, err
	}
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	if quality <= 0 || quality > 100 {
		quality = 70
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return client.Photo{}, err
	}
	return client.Photo{
		Name:        jpegName(p.Name),
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
	}, nil
}

func jpegName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		base = "photo"
	}
	return base + ".jpg"
}
