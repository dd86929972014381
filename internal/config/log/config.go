package log

import (
	"strings"

	"go.uber.org/zap/zapcore"

	configtypes "github.com/weisyn/bcdb/pkg/types"
)

// LogOptions 日志配置选项
type LogOptions struct {
	Level     string `json:"level"`      // debug | info | warn | error
	ToConsole bool   `json:"to_console"` // 写 stderr
	FilePath  string `json:"file_path"`  // 非空时写入该文件并按大小轮转

	// lumberjack 轮转参数
	MaxSize    int  `json:"max_size"` // MB
	MaxBackups int  `json:"max_backups"`
	MaxAge     int  `json:"max_age"` // 天
	Compress   bool `json:"compress"`

	EnableCaller     bool `json:"enable_caller"`
	EnableStacktrace bool `json:"enable_stacktrace"` // 仅 Error 及以上
}

// Config 日志配置
type Config struct {
	options *LogOptions
}

// New 在默认值上叠加用户配置
func New(user *configtypes.UserLogConfig) *Config {
	options := &LogOptions{
		Level:            defaultLogLevel,
		ToConsole:        defaultToConsole,
		FilePath:         defaultFilePath,
		MaxSize:          defaultMaxSize,
		MaxBackups:       defaultMaxBackups,
		MaxAge:           defaultMaxAge,
		Compress:         defaultCompress,
		EnableCaller:     defaultEnableCaller,
		EnableStacktrace: defaultEnableStacktrace,
	}
	if user != nil {
		if user.Level != nil {
			options.Level = strings.ToLower(strings.TrimSpace(*user.Level))
		}
		// 写文件时不再同时输出到控制台
		if user.FilePath != nil && *user.FilePath != "" {
			options.FilePath = *user.FilePath
			options.ToConsole = false
		}
	}
	return &Config{options: options}
}

// NewFromOptions 包装 Provider 已解析好的选项
func NewFromOptions(options *LogOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

// GetOptions 返回日志选项
func (c *Config) GetOptions() *LogOptions {
	return c.options
}

// GetZapLevel 未知级别按 info 处理
func (c *Config) GetZapLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.options.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// IsConsoleEnabled 是否输出到控制台
func (c *Config) IsConsoleEnabled() bool {
	return c.options.ToConsole
}

// GetFilePath 日志文件路径
func (c *Config) GetFilePath() string {
	return c.options.FilePath
}

// CreateFileEncoder 文件为 JSON 行，便于采集
func (c *Config) CreateFileEncoder() zapcore.Encoder {
	cfg := baseEncoderConfig
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// CreateConsoleEncoder 控制台为带颜色的文本
func (c *Config) CreateConsoleEncoder() zapcore.Encoder {
	cfg := baseEncoderConfig
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// baseEncoderConfig 两种编码器共用的字段名，按值复制后再修改
var baseEncoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "level",
	NameKey:        "logger",
	CallerKey:      "caller",
	FunctionKey:    zapcore.OmitKey,
	MessageKey:     "msg",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeDuration: zapcore.StringDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}
