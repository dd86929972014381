package storage

const (
	// defaultBackend 默认使用嵌入式 badger
	defaultBackend = BackendBadger

	// defaultCompressValues 快照记录包含全部节点证书，默认 snappy 压缩
	defaultCompressValues = true
)
