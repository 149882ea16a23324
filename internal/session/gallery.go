package session

import "github.com/group-shedule/schedule-site/internal/model"

// Gallery 当前打开的课堂照片浏览状态
type Gallery struct {
	EntryID string              `json:"entry_id,omitempty"`
	Files   []model.LectureFile `json:"files,omitempty"`
	Index   int                 `json:"index"`
}

// Reset 以新的照片列表重置，从第一张开始
func (g *Gallery) Reset(entryID string, files []model.LectureFile) {
	g.EntryID = entryID
	g.Files = append([]model.LectureFile(nil), files...)
	g.Index = 0
}

// Empty 没有照片
func (g *Gallery) Empty() bool { return len(g.Files) == 0 }

// Next 下一张，到末尾不回绕
func (g *Gallery) Next() {
	if g.Index < len(g.Files)-1 {
		g.Index++
	}
}

// Prev 上一张，到开头不回绕
func (g *Gallery) Prev() {
	if g.Index > 0 {
		g.Index--
	}
}

// Current 当前照片
func (g *Gallery) Current() (model.LectureFile, bool) {
	if g.Index < 0 || g.Index >= len(g.Files) {
		return model.LectureFile{}, false
	}
	return g.Files[g.Index], true
}

// Position 从 1 开始的位置与总数
func (g *Gallery) Position() (int, int) {
	if g.Empty() {
		return 0, 0
	}
	return g.Index + 1, len(g.Files)
}

// RemoveCurrent 删除当前照片，下标收敛到合法范围
func (g *Gallery) RemoveCurrent() {
	if g.Index < 0 || g.Index >= len(g.Files) {
		return
	}
	g.Files = append(g.Files[:g.Index], g.Files[g.Index+1:]...)
	if g.Index >= len(g.Files) {
		g.Index = len(g.Files) - 1
	}
	if g.Index < 0 {
		g.Index = 0
	}
}

// ReplaceCurrentURL 旋转后替换当前照片地址
func (g *Gallery) ReplaceCurrentURL(url string) {
	if g.Index >= 0 && g.Index < len(g.Files) {
		g.Files[g.Index].URL = url
	}
}
