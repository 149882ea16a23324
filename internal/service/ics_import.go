package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/internal/client"
	"github.com/group-shedule/schedule-site/internal/dto"
	"github.com/group-shedule/schedule-site/internal/session"
	"github.com/group-shedule/schedule-site/internal/view"
)

// ── ICS 导入 ──────────────────────────────────────────────
//
// 职责：把外部 iCalendar 中落在所选周内的事件逐条新增到课表。
//
// 设计决策：
//   - DTSTART/DTEND 决定日期与时间，按课表时区换算
//   - RRULE 仅展开 WEEKLY / DAILY（含 INTERVAL、COUNT、UNTIL、EXDATE）
//   - SUMMARY → subject，LOCATION → teacher（与导出一致）
//   - 与模板应用相同：顺序新增、只增不删、中途失败不回滚
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
)

const (
	msgImportNothing = "В календаре нет пар на эту неделю"
	msgImportFailed  = "Не удалось прочитать календарь"
	msgImportDone    = "Импортировано пар: %d"
)

var ErrICSFormat = errors.New("неверный формат ICS")

// ImportService ICS 导入
type ImportService interface {
	// ImportICS 从上传的文件导入
	ImportICS(ctx context.Context, st *session.State, r io.Reader) error
	// ImportICSURL 从订阅地址导入（支持 webcal://）
	ImportICSURL(ctx context.Context, st *session.State, rawURL string) error
}

type importService struct {
	backend  client.Backend
	schedule ScheduleService
	loc      *time.Location
	http     *http.Client
	logger   *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(backend client.Backend, schedule ScheduleService, loc *time.Location, logger *zap.Logger) ImportService {
	return &importService{
		backend:  backend,
		schedule: schedule,
		loc:      loc,
		http:     &http.Client{Timeout: icsFetchTimeout},
		logger:   logger,
	}
}

func (s *importService) ImportICSURL(ctx context.Context, st *session.State, rawURL string) error {
	if err := requireAdmin(st); err != nil {
		return err
	}
	body, err := s.fetchICS(ctx, rawURL)
	if err != nil {
		s.logger.Warn("获取 ICS 失败", zap.String("url", rawURL), zap.Error(err))
		return alert(msgImportFailed, err)
	}
	defer body.Close()
	return s.ImportICS(ctx, st, body)
}

func (s *importService) ImportICS(ctx context.Context, st *session.State, r io.Reader) error {
	if err := requireAdmin(st); err != nil {
		return err
	}
	monday, err := weekStart(st.Date)
	if err != nil {
		return err
	}
	events, err := parseICSWeek(io.LimitReader(r, icsMaxFileSize), monday, s.loc)
	if err != nil {
		return alert(msgImportFailed, err)
	}
	if len(events) == 0 {
		return alert(msgImportNothing, nil)
	}

	for i, evt := range events {
		req := &dto.AddPairRequest{
			Date:      evt.Start.Format(view.DateLayout),
			TimeStart: evt.Start.Format("15:04"),
			TimeEnd:   evt.End.Format("15:04"),
			Subject:   evt.Summary,
			Teacher:   evt.Location,
		}
		if err := s.backend.AddPair(ctx, req); err != nil {
			s.logger.Warn("ICS 导入中断", zap.Int("created", i), zap.Int("total", len(events)), zap.Error(err))
			s.schedule.Reload(ctx, st)
			return alert(fmt.Sprintf("Импорт прерван: создано %d из %d", i, len(events)), err)
		}
	}

	st.AddFlash(fmt.Sprintf(msgImportDone, len(events)))
	st.CloseModal()
	s.schedule.Reload(ctx, st)
	return nil
}

// fetchICS 从 URL 获取 ICS 内容，响应体大小受限
func (s *importService) fetchICS(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u := strings.TrimSpace(rawURL)
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return nil, fmt.Errorf("%w: %s", ErrICSFormat, rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// icsEvent 落在目标周内的一次课
type icsEvent struct {
	Summary  string
	Location string
	Start    time.Time
	End      time.Time
}

// parseICSWeek 解析 ICS 并展开出 [monday, monday+7d) 内的全部事件，按开始时间排序
func parseICSWeek(r io.Reader, monday time.Time, loc *time.Location) ([]icsEvent, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSFormat, err)
	}

	from := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, daysInWeek)

	var out []icsEvent
	for _, comp := range cal.Events() {
		out = append(out, expandVEvent(comp, from, to, loc)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// expandVEvent 展开单个 VEVENT 在区间内的全部发生
func expandVEvent(evt *ics.VEvent, from, to time.Time, loc *time.Location) []icsEvent {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return nil
	}
	location := ""
	if p := evt.GetProperty(ics.ComponentPropertyLocation); p != nil {
		location = strings.TrimSpace(p.Value)
	}

	// 全天事件不是一节课
	if p := evt.GetProperty(ics.ComponentPropertyDtStart); p == nil || len(p.Value) == len("20060102") {
		return nil
	}
	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return nil
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil || !dtEnd.After(dtStart) {
		// 缺少 DTEND 时按一节课 90 分钟处理
		dtEnd = dtStart.Add(90 * time.Minute)
	}
	length := dtEnd.Sub(dtStart)

	var out []icsEvent
	for _, start := range occurrences(evt, dtStart, from, to, loc) {
		out = append(out, icsEvent{
			Summary:  strings.TrimSpace(summary.Value),
			Location: location,
			Start:    start,
			End:      start.Add(length),
		})
	}
	return out
}

// occurrences 根据 RRULE / EXDATE 计算区间内的开始时间
func occurrences(evt *ics.VEvent, dtStart, from, to time.Time, loc *time.Location) []time.Time {
	inRange := func(t time.Time) bool { return !t.Before(from) && t.Before(to) }

	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		if inRange(dtStart) {
			return []time.Time{dtStart}
		}
		return nil
	}

	rule := parseRRule(rruleProp.Value)
	var stepDays int
	switch rule.freq {
	case "WEEKLY":
		stepDays = 7
	case "DAILY":
		stepDays = 1
	default:
		if inRange(dtStart) {
			return []time.Time{dtStart}
		}
		return nil
	}
	interval := rule.interval
	if interval < 1 {
		interval = 1
	}

	exDates := parseExDates(evt, loc)
	var out []time.Time
	count := 0
	for current := dtStart; !current.After(to); current = current.AddDate(0, 0, stepDays*interval) {
		if !rule.until.IsZero() && current.After(rule.until) {
			break
		}
		if rule.count > 0 && count >= rule.count {
			break
		}
		count++
		if inRange(current) && !exDates[current.Format("20060102")] {
			out = append(out, current)
		}
	}
	return out
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=WEEKLY;COUNT=16;INTERVAL=1）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			fmt.Sscanf(kv[1], "%d", &r.interval)
		case "COUNT":
			fmt.Sscanf(kv[1], "%d", &r.count)
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				t, _ = time.Parse("20060102", kv[1])
			}
			r.until = t
		}
	}
	return r
}

// parseExDates 解析事件中所有 EXDATE（按课表时区的日期）
func parseExDates(evt *ics.VEvent, loc *time.Location) map[string]bool {
	exDates := make(map[string]bool)
	for _, prop := range evt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			t, err := time.Parse("20060102T150405Z", v)
			if err != nil {
				t, err = time.ParseInLocation("20060102T150405", v, loc)
				if err != nil {
					t, err = time.ParseInLocation("20060102", v, loc)
				}
			}
			if err == nil {
				exDates[t.In(loc).Format("20060102")] = true
			}
		}
	}
	return exDates
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{"20060102T150405", "20060102"} {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}
