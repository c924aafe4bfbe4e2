package config

import "errors"

var (
	// ErrNilConfig 配置为空
	ErrNilConfig = errors.New("config: config is nil")

	// ErrInvalidJSON JSON 解析失败
	ErrInvalidJSON = errors.New("config: invalid json")

	// ErrInvalidValue 配置项取值非法
	ErrInvalidValue = errors.New("config: invalid value")
)
