package event

import "errors"

// ErrClosed 事件总线已关闭
var ErrClosed = errors.New("event bus closed")
