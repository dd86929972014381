package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/weisyn/bcdb/pkg/types"
)

// LoadAppConfig 从JSON文件加载用户配置
//
// 未知字段视为错误，避免拼写错误的配置项被静默忽略。
func LoadAppConfig(path string) (*types.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return ParseAppConfig(data)
}

// ParseAppConfig 解析JSON配置内容
func ParseAppConfig(data []byte) (*types.AppConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var appConfig types.AppConfig
	if err := dec.Decode(&appConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &appConfig, nil
}
