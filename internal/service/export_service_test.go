package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/group-shedule/schedule-site/internal/model"
)

// ── ExportDayICS 测试 ──

func TestExportService_ExportDayICS(t *testing.T) {
	env := setupTestService()
	env.backend.seed(testToday,
		model.ScheduleEntry{ID: "a", TimeStart: "09:00", TimeEnd: "10:30", Subject: "Матан", Teacher: "Петров"},
		model.ScheduleEntry{ID: "b", TimeStart: "??", TimeEnd: "12:00", Subject: "Сломано"},
		model.ScheduleEntry{ID: "c", TimeStart: "13:00", TimeEnd: "14:30", Subject: "Физика", Homework: "стр. 5"},
	)

	data, filename, err := env.svc.Export.ExportDayICS(context.Background(), testToday)
	if err != nil {
		t.Fatalf("ExportDayICS 失败: %v", err)
	}
	if filename != "schedule_2024-09-04.ics" {
		t.Errorf("文件名不正确: %s", filename)
	}
	text := string(data)
	if n := strings.Count(text, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("期望 2 个 VEVENT（跳过无法解析的），实际: %d", n)
	}
	if !strings.Contains(text, "20240904T090000Z") {
		t.Errorf("开始时间应按课表时区换算，实际:\n%s", text)
	}
	if !strings.Contains(text, "Матан") || strings.Contains(text, "Сломано") {
		t.Error("课程内容不正确")
	}
}

func TestExportService_ExportDayICS_Errors(t *testing.T) {
	env := setupTestService()
	if _, _, err := env.svc.Export.ExportDayICS(context.Background(), "not-a-date"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
	env.backend.failOn["GetSchedule"] = errBackendDown
	if _, _, err := env.svc.Export.ExportDayICS(context.Background(), testToday); !errors.Is(err, ErrExportFetch) {
		t.Errorf("期望 ErrExportFetch，实际: %v", err)
	}
}

// ── ExportWeekXLSX 测试 ──

func TestExportService_ExportWeekXLSX(t *testing.T) {
	env := setupTestService()
	env.backend.seed("2024-09-02", model.ScheduleEntry{ID: "a", TimeStart: "09:00", TimeEnd: "10:30", Subject: "Матан", Teacher: "Петров",
		LectureFiles: []model.LectureFile{{ID: "p1"}, {ID: "p2"}}})
	env.backend.seed("2024-09-06", model.ScheduleEntry{ID: "b", TimeStart: "11:00", TimeEnd: "12:30", Subject: "Физика", Homework: "стр. 5"})

	buf, filename, err := env.svc.Export.ExportWeekXLSX(context.Background(), testToday)
	if err != nil {
		t.Fatalf("ExportWeekXLSX 失败: %v", err)
	}
	if filename != "schedule_week_2024-09-02.xlsx" {
		t.Errorf("文件名不正确: %s", filename)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Fatal("输出应为 xlsx（zip）")
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("无法打开生成的 xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Неделя")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("期望 1 标题 + 1 表头 + 2 数据行，实际: %d", len(rows))
	}
	if rows[1][0] != "День" || rows[1][5] != "Фото" {
		t.Errorf("表头不正确: %v", rows[1])
	}
	if !strings.HasPrefix(rows[2][0], "Понедельник") || rows[2][2] != "Матан" || rows[2][5] != "2" {
		t.Errorf("周一行不正确: %v", rows[2])
	}
	if !strings.HasPrefix(rows[3][0], "Пятница") || rows[3][4] != "стр. 5" {
		t.Errorf("周五行不正确: %v", rows[3])
	}
}
