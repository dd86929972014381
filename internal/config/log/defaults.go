package log

// 日志配置默认值
const (
	defaultLogLevel = "info"

	// 指定文件路径后关闭
	defaultToConsole = true
	defaultFilePath  = ""

	defaultMaxSize    = 100 // MB
	defaultMaxBackups = 10
	defaultMaxAge     = 30 // 天
	defaultCompress   = true

	defaultEnableCaller     = true
	defaultEnableStacktrace = true
)
