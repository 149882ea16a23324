package errors

import "errors"

// ErrNotAdmin 当前会话不是管理员会话：管理操作既不展示也不发起请求
var ErrNotAdmin = errors.New("требуется режим администратора")
