// Package version 构建版本信息，通过 -ldflags 注入
package version

import (
	"fmt"
	"runtime"
)

// 构建时注入的变量
var (
	Version   = "v0.1.0"
	Commit    = "unknown"
	BuildTime = "unknown" // RFC3339
)

// BuildInfo 构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersion 获取版本号
func GetVersion() string {
	return Version
}

// GetBuildInfo 获取完整构建信息
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetFullVersion 多行版本信息，用于 --version 输出
func GetFullVersion(binary string) string {
	info := GetBuildInfo()
	return fmt.Sprintf("%s %s\ncommit: %s\n构建时间: %s\nGo版本: %s\n平台: %s",
		binary, info.Version, info.Commit, info.BuildTime, info.GoVersion, info.Platform)
}
