package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/group-shedule/schedule-site/config"
	"github.com/group-shedule/schedule-site/internal/client"
	"github.com/group-shedule/schedule-site/internal/model"
	"github.com/group-shedule/schedule-site/internal/session"
)

// ── Homework 测试 ──

func TestHomeworkService_SaveHomework(t *testing.T) {
	env := setupTestService()
	env.backend.seed(testToday, model.ScheduleEntry{ID: "a", Subject: "Матан"})
	st := adminState()
	env.svc.Schedule.LoadSchedule(context.Background(), st, testToday)

	if err := env.svc.Homework.OpenHomework(st, "a"); err != nil {
		t.Fatalf("OpenHomework 失败: %v", err)
	}
	if err := env.svc.Homework.SaveHomework(context.Background(), st, "a", "", "стр. 12"); err != nil {
		t.Fatalf("SaveHomework 失败: %v", err)
	}

	if st.Entries[0].Homework != "стр. 12" {
		t.Errorf("保存后应重新拉取，实际: %q", st.Entries[0].Homework)
	}
	if len(st.ChangeLog) != 1 || st.ChangeLog[0] != "📝 Матан: обновлено ДЗ" {
		t.Errorf("变更日志不正确: %v", st.ChangeLog)
	}
	if st.Modal.Mode != session.ModalClosed {
		t.Error("保存后应关闭弹窗")
	}
	if f := st.TakeFlash(); len(f) != 1 || f[0] != "ДЗ сохранено!" {
		t.Errorf("提示不正确: %v", f)
	}
}

func TestHomeworkService_SaveHomework_Failure(t *testing.T) {
	env := setupTestService()
	env.backend.seed(testToday, model.ScheduleEntry{ID: "a", Subject: "Матан"})
	st := adminState()
	env.svc.Schedule.LoadSchedule(context.Background(), st, testToday)
	_ = env.svc.Homework.OpenHomework(st, "a")
	env.backend.failOn["UpdateText"] = errBackendDown

	if err := env.svc.Homework.SaveHomework(context.Background(), st, "a", "", "x"); alertMessage(err) == "" {
		t.Errorf("失败应返回提示，实际: %v", err)
	}
	if len(st.ChangeLog) != 0 {
		t.Error("失败时不应记录变更")
	}
	if st.Modal.Mode != session.ModalHomework {
		t.Error("失败时弹窗保持打开")
	}
}

func TestHomeworkService_OpenUnknown(t *testing.T) {
	env := setupTestService()
	if err := env.svc.Homework.OpenHomework(session.New(), "zzz"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("期望 ErrEntryNotFound，实际: %v", err)
	}
}

// ── Gallery 测试 ──

func galleryFixture(env *testEnv) *session.State {
	env.backend.seed(testToday, model.ScheduleEntry{
		ID: "a", Subject: "Матан",
		LectureFiles: []model.LectureFile{{ID: "p1", URL: "u1"}, {ID: "p2", URL: "u2"}, {ID: "p3", URL: "u3"}},
	})
	st := adminState()
	env.svc.Schedule.LoadSchedule(context.Background(), st, testToday)
	return st
}

func TestGalleryService_Navigation(t *testing.T) {
	env := setupTestService()
	st := galleryFixture(env)

	if err := env.svc.Gallery.OpenGallery(st, "a"); err != nil {
		t.Fatalf("OpenGallery 失败: %v", err)
	}
	for i := 0; i < 7; i++ {
		env.svc.Gallery.NextSlide(st)
	}
	if st.Gallery.Index != 2 {
		t.Errorf("3 张照片 next 7 次后期望下标 2，实际: %d", st.Gallery.Index)
	}

	// 重新打开从第一张开始
	_ = env.svc.Gallery.OpenGallery(st, "a")
	if st.Gallery.Index != 0 || st.Modal.Mode != session.ModalGallery {
		t.Errorf("重新打开应重置，实际: %+v %+v", st.Gallery, st.Modal)
	}
}

func TestGalleryService_DeletePhoto(t *testing.T) {
	env := setupTestService()
	st := galleryFixture(env)
	_ = env.svc.Gallery.OpenGallery(st, "a")
	env.svc.Gallery.NextSlide(st)
	env.svc.Gallery.NextSlide(st)

	if err := env.svc.Gallery.DeletePhoto(context.Background(), st, yes()); err != nil {
		t.Fatalf("DeletePhoto 失败: %v", err)
	}
	if len(st.Gallery.Files) != 2 || st.Gallery.Index != 1 {
		t.Errorf("删除末张后下标应收敛，实际: %+v", st.Gallery)
	}
	if st.Modal.Mode != session.ModalGallery {
		t.Error("删除后相册保持打开")
	}
	if st.Entries[0].PhotoCount() != 2 {
		t.Errorf("卡片照片数应同步，实际: %d", st.Entries[0].PhotoCount())
	}
}

func TestGalleryService_RotatePhoto(t *testing.T) {
	env := setupTestService()
	st := galleryFixture(env)
	_ = env.svc.Gallery.OpenGallery(st, "a")
	env.svc.Gallery.NextSlide(st)

	if err := env.svc.Gallery.RotatePhoto(context.Background(), st); err != nil {
		t.Fatalf("RotatePhoto 失败: %v", err)
	}
	if cur, _ := st.Gallery.Current(); cur.URL != "http://img/rotated" {
		t.Errorf("应替换为新地址，实际: %s", cur.URL)
	}
	if st.Gallery.Index != 1 {
		t.Error("旋转后位置不变")
	}

	env.backend.failOn["RotateImage"] = errBackendDown
	if err := env.svc.Gallery.RotatePhoto(context.Background(), st); alertMessage(err) == "" {
		t.Errorf("失败应返回提示，实际: %v", err)
	}
}

func TestGalleryService_EmptyGallery(t *testing.T) {
	env := setupTestService()
	env.backend.seed(testToday, model.ScheduleEntry{ID: "a"})
	st := adminState()
	env.svc.Schedule.LoadSchedule(context.Background(), st, testToday)
	_ = env.svc.Gallery.OpenGallery(st, "a")

	if err := env.svc.Gallery.DeletePhoto(context.Background(), st, yes()); !errors.Is(err, ErrNoPhoto) {
		t.Errorf("期望 ErrNoPhoto，实际: %v", err)
	}
	if env.backend.callCount("DeleteImage") != 0 {
		t.Error("空相册不应发起请求")
	}
}

// ── Upload 测试 ──

func TestUploadService_LimitRejectsWholeBatch(t *testing.T) {
	env := setupTestService()
	st := adminState()

	files := []client.Photo{
		{Name: "small.jpg", Data: make([]byte, 100)},
		{Name: "big.jpg", Data: make([]byte, 10*1024*1024+1)},
	}
	err := env.svc.Upload.UploadPhotos(context.Background(), st, "a", "Матан", files)
	if alertMessage(err) != "Файл big.jpg больше 10 МБ" {
		t.Errorf("提示不正确: %v", err)
	}
	if env.backend.callCount("UploadLecture") != 0 {
		t.Error("超限时不应发起任何请求")
	}
	if len(st.ChangeLog) != 0 {
		t.Error("失败时不应记录变更")
	}
}

func TestUploadService_LimitExactlyAtCeiling(t *testing.T) {
	env := setupTestService()
	env.backend.seed(testToday, model.ScheduleEntry{ID: "a", Subject: "Матан"})
	st := adminState()
	env.svc.Schedule.LoadSchedule(context.Background(), st, testToday)

	files := []client.Photo{{Name: "edge.jpg", Data: make([]byte, 10*1024*1024)}}
	if err := env.svc.Upload.UploadPhotos(context.Background(), st, "a", "", files); err != nil {
		t.Fatalf("恰好等于上限应放行: %v", err)
	}
	if len(st.ChangeLog) != 1 || st.ChangeLog[0] != "📸 Матан: загружены фото лекции" {
		t.Errorf("变更日志不正确: %v", st.ChangeLog)
	}
	if f := st.TakeFlash(); len(f) != 1 || f[0] != "Фото успешно загружены!" {
		t.Errorf("提示不正确: %v", f)
	}
	if st.Entries[0].PhotoCount() != 1 {
		t.Error("上传后应重新拉取")
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("生成测试图片失败: %v", err)
	}
	return buf.Bytes()
}

func TestUploadService_CompressMode(t *testing.T) {
	env := setupTestService()
	env.cfg.Upload.Mode = config.UploadModeCompress
	env.cfg.Upload.MaxWidth = 800
	st := adminState()

	files := []client.Photo{
		{Name: "wide.png", ContentType: "image/png", Data: pngBytes(t, 1200, 300)},
		{Name: "narrow.png", ContentType: "image/png", Data: pngBytes(t, 400, 300)},
	}
	if err := env.svc.Upload.UploadPhotos(context.Background(), st, "a", "Матан", files); err != nil {
		t.Fatalf("UploadPhotos 失败: %v", err)
	}
	if len(env.backend.uploads) != 1 || len(env.backend.uploads[0]) != 2 {
		t.Fatalf("应一次性上传 2 张，实际: %+v", env.backend.uploads)
	}

	sent := env.backend.uploads[0]
	if sent[0].Name != "wide.jpg" || sent[0].ContentType != "image/jpeg" {
		t.Errorf("压缩后应为 JPEG，实际: %s %s", sent[0].Name, sent[0].ContentType)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(sent[0].Data))
	if err != nil {
		t.Fatalf("压缩结果不是 JPEG: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 200 {
		t.Errorf("期望等比缩小到 800x200，实际: %dx%d", cfg.Width, cfg.Height)
	}
	narrow, _ := jpeg.DecodeConfig(bytes.NewReader(sent[1].Data))
	if narrow.Width != 400 {
		t.Errorf("窄图不应放大，实际宽度: %d", narrow.Width)
	}
}

func TestUploadService_CompressFailureSendsNothing(t *testing.T) {
	env := setupTestService()
	env.cfg.Upload.Mode = config.UploadModeCompress
	st := adminState()

	files := []client.Photo{
		{Name: "ok.png", Data: pngBytes(t, 10, 10)},
		{Name: "broken.png", Data: []byte("not an image")},
	}
	err := env.svc.Upload.UploadPhotos(context.Background(), st, "a", "Матан", files)
	if !strings.Contains(alertMessage(err), "broken.png") {
		t.Errorf("提示应包含文件名，实际: %v", err)
	}
	if env.backend.callCount("UploadLecture") != 0 {
		t.Error("压缩失败时不应上传")
	}
}

func TestUploadService_CancelledContext(t *testing.T) {
	env := setupTestService()
	env.cfg.Upload.Mode = config.UploadModeCompress
	st := adminState()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := []client.Photo{{Name: "a.png", Data: pngBytes(t, 10, 10)}}
	if err := env.svc.Upload.UploadPhotos(ctx, st, "a", "Матан", files); err == nil {
		t.Error("ctx 已取消时应返回错误")
	}
	if env.backend.callCount("UploadLecture") != 0 {
		t.Error("取消后不应上传")
	}
}
