package auth

import "time"

const (
	// defaultLookupTimeout 注册表查询超时，超时返回 Unavailable
	defaultLookupTimeout = 2 * time.Second

	// defaultExposeRejectionKind 对外合并 UnknownIdentity 与 InvalidSignature
	defaultExposeRejectionKind = false
)
