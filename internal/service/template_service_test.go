package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/group-shedule/schedule-site/internal/model"
)

func intPtr(v int) *int { return &v }

func TestWeekStart(t *testing.T) {
	tests := []struct{ date, want string }{
		{"2024-09-02", "2024-09-02"}, // 周一
		{"2024-09-04", "2024-09-02"}, // 周三
		{"2024-09-08", "2024-09-02"}, // 周日
		{"2024-09-01", "2024-08-26"}, // 跨月
	}
	for _, tt := range tests {
		got, err := weekStart(tt.date)
		if err != nil {
			t.Fatalf("weekStart(%s) 失败: %v", tt.date, err)
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("weekStart(%s) = %s, want %s", tt.date, got.Format("2006-01-02"), tt.want)
		}
	}
	if _, err := weekStart("bad"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
}

func TestTemplateService_ApplyWeekly_Offsets(t *testing.T) {
	env := setupTestService()
	var pairs []model.TemplateEntry
	for i := 0; i <= 5; i++ {
		pairs = append(pairs, model.TemplateEntry{DayIndex: intPtr(i), TimeStart: "09:00", TimeEnd: "10:30", Subject: "S"})
	}
	env.backend.templates = []model.Template{{ID: "w", Name: "Неделя", Type: model.TemplateTypeWeek, Pairs: pairs}}

	// 所选为周三，落点仍从周一算起
	st := adminState()
	if err := env.svc.Template.OpenTemplateModal(context.Background(), st); err != nil {
		t.Fatalf("OpenTemplateModal 失败: %v", err)
	}
	if err := env.svc.Template.ApplyTemplate(context.Background(), st, "w", yes()); err != nil {
		t.Fatalf("ApplyTemplate 失败: %v", err)
	}

	want := []string{"2024-09-02", "2024-09-03", "2024-09-04", "2024-09-05", "2024-09-06", "2024-09-07"}
	if len(env.backend.added) != len(want) {
		t.Fatalf("期望 %d 次新增，实际: %d", len(want), len(env.backend.added))
	}
	for i, req := range env.backend.added {
		if req.Date != want[i] {
			t.Errorf("第 %d 条期望日期 %s，实际: %s", i, want[i], req.Date)
		}
	}
}

func TestTemplateService_ApplyDay_OntoPickedDate(t *testing.T) {
	env := setupTestService()
	env.backend.templates = []model.Template{{ID: "d", Name: "День", Type: model.TemplateTypeDay, Pairs: []model.TemplateEntry{
		{TimeStart: "09:00", Subject: "A"}, {TimeStart: "11:00", Subject: "B"},
	}}}
	env.backend.seed(testToday, model.ScheduleEntry{ID: "existing"})
	st := adminState()
	_ = env.svc.Template.OpenTemplateModal(context.Background(), st)

	if err := env.svc.Template.ApplyTemplate(context.Background(), st, "d", yes()); err != nil {
		t.Fatalf("ApplyTemplate 失败: %v", err)
	}
	for _, req := range env.backend.added {
		if req.Date != testToday {
			t.Errorf("日模板应落在所选日期，实际: %s", req.Date)
		}
	}
	// 只增不删
	if len(st.Entries) != 3 {
		t.Errorf("应在原有课程基础上追加，实际: %d", len(st.Entries))
	}
}

func TestTemplateService_Apply_PartialFailure(t *testing.T) {
	env := setupTestService()
	env.backend.templates = []model.Template{{ID: "d", Name: "День", Pairs: []model.TemplateEntry{
		{Subject: "A"}, {Subject: "B"}, {Subject: "C"},
	}}}
	env.backend.failAddAt = 2
	st := adminState()
	_ = env.svc.Template.OpenTemplateModal(context.Background(), st)

	err := env.svc.Template.ApplyTemplate(context.Background(), st, "d", yes())
	if !strings.Contains(alertMessage(err), "создано 1 из 3") {
		t.Errorf("应报告已创建数量，实际: %v", err)
	}
	if env.backend.callCount("AddPair") != 2 {
		t.Error("失败后应停止，不再继续")
	}
	if len(st.Entries) != 1 {
		t.Errorf("不回滚，重新拉取后应看到已创建的 1 条，实际: %d", len(st.Entries))
	}
}

func TestTemplateService_Apply_Cancelled(t *testing.T) {
	env := setupTestService()
	env.backend.templates = []model.Template{{ID: "d", Name: "День", Pairs: []model.TemplateEntry{{Subject: "A"}}}}
	st := adminState()
	_ = env.svc.Template.OpenTemplateModal(context.Background(), st)

	if err := env.svc.Template.ApplyTemplate(context.Background(), st, "d", no()); err != nil {
		t.Fatalf("取消不应返回错误: %v", err)
	}
	if env.backend.callCount("AddPair") != 0 {
		t.Error("取消后不应新增")
	}
}

func TestTemplateService_SaveWeek(t *testing.T) {
	env := setupTestService()
	env.backend.seed("2024-09-02", model.ScheduleEntry{ID: "m", Subject: "Пн"})
	env.backend.seed("2024-09-06", model.ScheduleEntry{ID: "f", Subject: "Пт"})
	st := adminState()

	if err := env.svc.Template.SaveWeekAsTemplate(context.Background(), st, "  Осень "); err != nil {
		t.Fatalf("SaveWeekAsTemplate 失败: %v", err)
	}
	if env.backend.callCount("GetSchedule") != 7 {
		t.Errorf("应顺序拉取 7 天，实际: %d", env.backend.callCount("GetSchedule"))
	}
	saved := env.backend.savedTpls[0]
	if saved.Name != "Осень" || saved.Type != model.TemplateTypeWeek || len(saved.Pairs) != 2 {
		t.Fatalf("保存内容不正确: %+v", saved)
	}
	if *saved.Pairs[0].DayIndex != 0 || *saved.Pairs[1].DayIndex != 4 {
		t.Errorf("星期偏移不正确: %d %d", *saved.Pairs[0].DayIndex, *saved.Pairs[1].DayIndex)
	}
}

func TestTemplateService_SaveDay(t *testing.T) {
	env := setupTestService()
	st := adminState()

	// 空名称视为取消
	if err := env.svc.Template.SaveDayAsTemplate(context.Background(), st, ""); err != nil {
		t.Fatalf("空名称不应报错: %v", err)
	}
	// 当天无课
	if err := env.svc.Template.SaveDayAsTemplate(context.Background(), st, "Пусто"); alertMessage(err) != "Нечего сохранять" {
		t.Errorf("期望 Нечего сохранять，实际: %v", err)
	}
	if env.backend.callCount("SaveTemplate") != 0 {
		t.Error("不应发起保存")
	}

	st.Entries = []model.ScheduleEntry{{ID: "a", Subject: "A"}}
	if err := env.svc.Template.SaveDayAsTemplate(context.Background(), st, "Понедельник"); err != nil {
		t.Fatalf("SaveDayAsTemplate 失败: %v", err)
	}
	saved := env.backend.savedTpls[0]
	if saved.Type != model.TemplateTypeDay || saved.Pairs[0].DayIndex != nil {
		t.Errorf("日模板不应携带偏移: %+v", saved)
	}
}

func TestTemplateService_Delete(t *testing.T) {
	env := setupTestService()
	env.backend.templates = []model.Template{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	st := adminState()
	_ = env.svc.Template.OpenTemplateModal(context.Background(), st)

	if err := env.svc.Template.DeleteTemplate(context.Background(), st, "a", yes()); err != nil {
		t.Fatalf("DeleteTemplate 失败: %v", err)
	}
	if len(st.Templates) != 1 || st.Templates[0].ID != "b" {
		t.Errorf("列表应移除该模板，实际: %+v", st.Templates)
	}
	if err := env.svc.Template.DeleteTemplate(context.Background(), st, "zzz", yes()); !errors.Is(err, ErrTemplateAbsent) {
		t.Errorf("期望 ErrTemplateAbsent，实际: %v", err)
	}
}
