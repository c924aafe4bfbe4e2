package types

import "errors"

// ============================================================================
//                              参数相关错误
// ============================================================================

var (
	// ErrInvalidTypeID 无效的 TypeID
	ErrInvalidTypeID = errors.New("invalid type id")

	// ErrInvalidURI 无效的地址
	ErrInvalidURI = errors.New("invalid uri")

	// ErrInvalidSession 无效的会话名
	ErrInvalidSession = errors.New("invalid session")
)
