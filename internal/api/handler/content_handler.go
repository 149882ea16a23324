package handler

import (
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/internal/api/middleware"
	"github.com/group-shedule/schedule-site/internal/client"
	"github.com/group-shedule/schedule-site/internal/dto"
	"github.com/group-shedule/schedule-site/internal/service"
)

// MsgPhotosTooLarge 一次上传的照片超过请求体上限
const MsgPhotosTooLarge = "Слишком много фото за один раз"

const msgUploadBroken = "Не удалось прочитать файлы"

// ContentHandler 作业、相册与照片上传
type ContentHandler struct {
	homeworkSvc service.HomeworkService
	gallerySvc  service.GalleryService
	uploadSvc   service.UploadService
	logger      *zap.Logger
}

// NewContentHandler 创建 ContentHandler
func NewContentHandler(homeworkSvc service.HomeworkService, gallerySvc service.GalleryService, uploadSvc service.UploadService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{homeworkSvc: homeworkSvc, gallerySvc: gallerySvc, uploadSvc: uploadSvc, logger: logger}
}

// ── 作业 ──

// OpenHomework 打开作业弹窗
// POST /entries/:id/homework/open
func (h *ContentHandler) OpenHomework(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	finish(c, st, h.homeworkSvc.OpenHomework(st, c.Param("id")), h.logger)
}

// SaveHomework 保存作业
// POST /entries/:id/homework
func (h *ContentHandler) SaveHomework(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	var form dto.HomeworkForm
	if !bindForm(c, st, &form) {
		return
	}
	err := h.homeworkSvc.SaveHomework(c.Request.Context(), st, c.Param("id"), c.PostForm("subject"), form.Text)
	finish(c, st, err, h.logger)
}

// ── 相册 ──

// OpenGallery 打开相册
// POST /entries/:id/gallery/open
func (h *ContentHandler) OpenGallery(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	finish(c, st, h.gallerySvc.OpenGallery(st, c.Param("id")), h.logger)
}

// NextSlide POST /gallery/next
func (h *ContentHandler) NextSlide(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	h.gallerySvc.NextSlide(st)
	redirectHome(c)
}

// PrevSlide POST /gallery/prev
func (h *ContentHandler) PrevSlide(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	h.gallerySvc.PrevSlide(st)
	redirectHome(c)
}

// DeletePhoto 删除当前照片（需确认）
// POST /gallery/delete
func (h *ContentHandler) DeletePhoto(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	confirm := formConfirmer(c, st, c.Request.URL.Path, nil)
	finish(c, st, h.gallerySvc.DeletePhoto(c.Request.Context(), st, confirm), h.logger)
}

// RotatePhoto 旋转当前照片
// POST /gallery/rotate
func (h *ContentHandler) RotatePhoto(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	finish(c, st, h.gallerySvc.RotatePhoto(c.Request.Context(), st), h.logger)
}

// ── 上传 ──

// UploadPhotos 上传课堂照片
// POST /entries/:id/photos (multipart/form-data, field="photos")
func (h *ContentHandler) UploadPhotos(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	if !st.IsAdmin {
		handleActionError(c, st, service.ErrNotAdmin, h.logger)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			st.AddFlash(MsgPhotosTooLarge)
		} else {
			st.AddFlash(msgUploadBroken)
		}
		redirectHome(c)
		return
	}

	photos, err := readPhotos(form.File["photos"])
	if err != nil {
		h.logger.Warn("读取上传文件失败", zap.Error(err))
		st.AddFlash(msgUploadBroken)
		redirectHome(c)
		return
	}

	err = h.uploadSvc.UploadPhotos(c.Request.Context(), st, c.Param("id"), c.PostForm("subject"), photos)
	finish(c, st, err, h.logger)
}

// readPhotos 把 multipart 文件读入内存
func readPhotos(headers []*multipart.FileHeader) ([]client.Photo, error) {
	photos := make([]client.Photo, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		photos = append(photos, client.Photo{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return photos, nil
}
