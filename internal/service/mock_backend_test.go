package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/config"
	"github.com/group-shedule/schedule-site/internal/client"
	"github.com/group-shedule/schedule-site/internal/dto"
	"github.com/group-shedule/schedule-site/internal/model"
	"github.com/group-shedule/schedule-site/internal/repository"
	"github.com/group-shedule/schedule-site/internal/session"
	"github.com/group-shedule/schedule-site/pkg/jwt"
)

var errBackendDown = errors.New("backend down")

// ── Mock Backend ──

// mockBackend 内存版后端：按日期保存课程，记录每次调用
type mockBackend struct {
	mu        sync.Mutex
	days      map[string][]model.ScheduleEntry
	templates []model.Template
	nextID    int

	calls     []string
	added     []dto.AddPairRequest
	updates   []dto.UpdateTextRequest
	uploads   [][]client.Photo
	notified  []string
	savedTpls []dto.SaveTemplateRequest

	failOn     map[string]error // 方法名 → 错误
	failAddAt  int              // 第 n 次 AddPair 失败（1 起），0 表示不失败
	loginOK    bool
	rotatedURL string
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		days:       make(map[string][]model.ScheduleEntry),
		failOn:     make(map[string]error),
		rotatedURL: "http://img/rotated",
	}
}

func (m *mockBackend) record(name string) error {
	m.calls = append(m.calls, name)
	return m.failOn[name]
}

func (m *mockBackend) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *mockBackend) seed(date string, entries ...model.ScheduleEntry) {
	m.days[date] = append(m.days[date], entries...)
}

func (m *mockBackend) GetSchedule(_ context.Context, date string) ([]model.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetSchedule"); err != nil {
		return nil, err
	}
	out := make([]model.ScheduleEntry, len(m.days[date]))
	for i, e := range m.days[date] {
		e.LectureFiles = append([]model.LectureFile(nil), e.LectureFiles...)
		out[i] = e
	}
	return out, nil
}

func (m *mockBackend) AddPair(_ context.Context, req *dto.AddPairRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AddPair"); err != nil {
		return err
	}
	if m.failAddAt > 0 && len(m.added)+1 == m.failAddAt {
		return errBackendDown
	}
	m.added = append(m.added, *req)
	m.nextID++
	m.days[req.Date] = append(m.days[req.Date], model.ScheduleEntry{
		ID:        fmt.Sprintf("new-%d", m.nextID),
		Date:      req.Date,
		TimeStart: req.TimeStart,
		TimeEnd:   req.TimeEnd,
		Subject:   req.Subject,
		Teacher:   req.Teacher,
	})
	return nil
}

func (m *mockBackend) DeletePair(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeletePair"); err != nil {
		return err
	}
	for date, entries := range m.days {
		kept := entries[:0]
		for _, e := range entries {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		m.days[date] = kept
	}
	return nil
}

func (m *mockBackend) UpdateText(_ context.Context, req dto.UpdateTextRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateText"); err != nil {
		return err
	}
	m.updates = append(m.updates, req)
	for date := range m.days {
		for i := range m.days[date] {
			e := &m.days[date][i]
			if e.ID != req["id"] {
				continue
			}
			if v, ok := req["homework"]; ok {
				e.Homework = v
			}
			if v, ok := req["subject"]; ok {
				e.Subject = v
			}
			if v, ok := req["teacher"]; ok {
				e.Teacher = v
			}
		}
	}
	return nil
}

func (m *mockBackend) UploadLecture(_ context.Context, id string, photos []client.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UploadLecture"); err != nil {
		return err
	}
	m.uploads = append(m.uploads, photos)
	for date := range m.days {
		for i := range m.days[date] {
			e := &m.days[date][i]
			if e.ID != id {
				continue
			}
			for _, p := range photos {
				e.LectureFiles = append(e.LectureFiles, model.LectureFile{ID: p.Name, URL: "http://img/" + p.Name})
			}
		}
	}
	return nil
}

func (m *mockBackend) DeleteImage(_ context.Context, req *dto.ImageRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteImage"); err != nil {
		return err
	}
	for date := range m.days {
		for i := range m.days[date] {
			e := &m.days[date][i]
			if e.ID != req.DocID {
				continue
			}
			kept := e.LectureFiles[:0]
			for _, f := range e.LectureFiles {
				if f.ID != req.ImageID {
					kept = append(kept, f)
				}
			}
			e.LectureFiles = kept
		}
	}
	return nil
}

func (m *mockBackend) RotateImage(_ context.Context, _ *dto.ImageRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RotateImage"); err != nil {
		return "", err
	}
	return m.rotatedURL, nil
}

func (m *mockBackend) SaveTemplate(_ context.Context, req *dto.SaveTemplateRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SaveTemplate"); err != nil {
		return err
	}
	m.savedTpls = append(m.savedTpls, *req)
	return nil
}

func (m *mockBackend) ListTemplates(_ context.Context) ([]model.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListTemplates"); err != nil {
		return nil, err
	}
	return append([]model.Template(nil), m.templates...), nil
}

func (m *mockBackend) DeleteTemplate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteTemplate"); err != nil {
		return err
	}
	kept := m.templates[:0]
	for _, t := range m.templates {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	m.templates = kept
	return nil
}

func (m *mockBackend) Notify(_ context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Notify"); err != nil {
		return err
	}
	m.notified = append(m.notified, message)
	return nil
}

func (m *mockBackend) Login(_ context.Context, _, _ string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Login"); err != nil {
		return false, err
	}
	return m.loginOK, nil
}

// ── Mock NotificationLogRepository ──

type mockNotificationLogRepo struct {
	logs []model.NotificationLog
	err  error
}

func (m *mockNotificationLogRepo) Create(_ context.Context, log *model.NotificationLog) error {
	if m.err != nil {
		return m.err
	}
	log.NotificationLogID = fmt.Sprintf("log-%d", len(m.logs)+1)
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockNotificationLogRepo) List(_ context.Context, offset, limit int) ([]model.NotificationLog, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	total := int64(len(m.logs))
	if offset >= len(m.logs) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(m.logs) {
		end = len(m.logs)
	}
	return m.logs[offset:end], total, nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	revoked map[string]time.Duration
	err     error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.revoked[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── 测试辅助 ──

// 2024-09-04 是星期三
const testToday = "2024-09-04"

func testNow() time.Time {
	return time.Date(2024, 9, 4, 9, 0, 0, 0, time.UTC)
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{JWTSecret: "0123456789abcdef-test", TokenTTL: time.Hour},
		Upload: config.UploadConfig{
			Mode:         config.UploadModeLimit,
			MaxFileBytes: 10 * 1024 * 1024,
			MaxWidth:     1600,
			JPEGQuality:  70,
			Concurrency:  2,
		},
		Schedule: config.ScheduleConfig{Timezone: "UTC"},
	}
}

type testEnv struct {
	svc       *Service
	backend   *mockBackend
	journal   *mockNotificationLogRepo
	blacklist *mockBlacklist
	jwtMgr    *jwt.Manager
	cfg       *config.Config
}

func setupTestService() *testEnv {
	cfg := testConfig()
	backend := newMockBackend()
	journal := &mockNotificationLogRepo{}
	blacklist := newMockBlacklist()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewService(Deps{
		Config:    cfg,
		Backend:   backend,
		Repo:      &repository.Repository{NotificationLog: journal},
		JWT:       jwtMgr,
		Blacklist: blacklist,
		Logger:    zap.NewNop(),
		Now:       testNow,
	})
	return &testEnv{svc: svc, backend: backend, journal: journal, blacklist: blacklist, jwtMgr: jwtMgr, cfg: cfg}
}

func adminState() *session.State {
	st := session.New()
	st.Date = testToday
	st.IsAdmin = true
	st.AdminName = "admin"
	return st
}

// 固定回答的确认器，同时记录看到的提示文本
type fixedConfirmer struct {
	answer   bool
	messages []string
}

func (c *fixedConfirmer) Confirm(message string) bool {
	c.messages = append(c.messages, message)
	return c.answer
}

func yes() *fixedConfirmer { return &fixedConfirmer{answer: true} }
func no() *fixedConfirmer  { return &fixedConfirmer{answer: false} }

func alertMessage(err error) string {
	var a *AlertError
	if errors.As(err, &a) {
		return a.Message
	}
	return ""
}
