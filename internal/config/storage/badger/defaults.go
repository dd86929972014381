package badger

// BadgerDB存储默认配置值
const (
	// defaultPath 未配置 data_root 时使用 ./data/badger
	defaultPath = "./data/badger"

	// defaultSyncWrites 已提交的配置/身份必须落盘
	defaultSyncWrites = true

	// defaultMemTableSize 身份与配置记录体量小，16MB足够
	defaultMemTableSize = 16 << 20

	// defaultValueLogFileSize 值日志文件大小
	defaultValueLogFileSize = 64 << 20
)
