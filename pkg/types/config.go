// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	// Environment 运行环境：dev | test | prod
	Environment *string `json:"environment,omitempty"`

	// 本节点身份与网络地址
	Node *UserNodeConfig `json:"node,omitempty"`

	// API服务配置
	API *UserAPIConfig `json:"api,omitempty"`

	// 认证配置
	Auth *UserAuthConfig `json:"auth,omitempty"`

	// 存储配置
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// 首次启动时的集群引导配置
	Bootstrap *UserBootstrapConfig `json:"bootstrap,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`
}

// UserNodeConfig 用户节点配置
type UserNodeConfig struct {
	ID              *string `json:"id,omitempty"`               // 节点ID，如 bdb-node-1
	Address         *string `json:"address,omitempty"`          // 对外公布的主机地址
	Port            *uint32 `json:"port,omitempty"`             // 对外公布的端口
	CertificatePath *string `json:"certificate_path,omitempty"` // 节点证书（PEM）
	KeyPath         *string `json:"key_path,omitempty"`         // 节点私钥（PEM）
}

// UserAPIConfig 用户API配置
type UserAPIConfig struct {
	HTTPEnabled *bool   `json:"http_enabled,omitempty"` // 是否启用HTTP服务（默认true）
	HTTPHost    *string `json:"http_host,omitempty"`    // HTTP监听地址
	HTTPPort    *int    `json:"http_port,omitempty"`    // HTTP监听端口

	HTTPCorsEnabled *bool    `json:"http_cors_enabled,omitempty"` // 是否启用CORS
	HTTPCorsOrigins []string `json:"http_cors_origins,omitempty"` // 允许的CORS源

	RateLimitRequestsPerSecond *int `json:"rate_limit_requests_per_second,omitempty"` // 每IP每秒请求数，0 关闭
	RateLimitBurst             *int `json:"rate_limit_burst,omitempty"`               // 令牌桶容量

	ReadTimeout  *string `json:"read_timeout,omitempty"`  // 如 "15s"
	WriteTimeout *string `json:"write_timeout,omitempty"` // 如 "15s"
}

// UserAuthConfig 用户认证配置
type UserAuthConfig struct {
	LookupTimeout       *string `json:"lookup_timeout,omitempty"`        // 注册表查询超时，如 "2s"
	ExposeRejectionKind *bool   `json:"expose_rejection_kind,omitempty"` // 对外暴露 UnknownIdentity/InvalidSignature 的区别
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	Backend  *string `json:"backend,omitempty"`   // badger | memory | redis
	DataRoot *string `json:"data_root,omitempty"` // 数据根目录（data_root）

	SyncWrites *bool `json:"sync_writes,omitempty"` // badger 同步写

	RedisAddr     *string `json:"redis_addr,omitempty"`
	RedisPassword *string `json:"redis_password,omitempty"`
	RedisDB       *int    `json:"redis_db,omitempty"`
	RedisPrefix   *string `json:"redis_prefix,omitempty"`

	MemoryShards   *int  `json:"memory_shards,omitempty"`
	MemoryMaxMB    *int  `json:"memory_max_mb,omitempty"`
	CompressValues *bool `json:"compress_values,omitempty"` // snappy 压缩记录
}

// UserBootstrapConfig 用户引导配置
type UserBootstrapConfig struct {
	AdminID              *string  `json:"admin_id,omitempty"`
	AdminCertificatePath *string  `json:"admin_certificate_path,omitempty"`
	RootCACertPaths      []string `json:"root_ca_cert_paths,omitempty"`
	IntermediateCAPaths  []string `json:"intermediate_ca_cert_paths,omitempty"`
	ConsensusAlgorithm   *string  `json:"consensus_algorithm,omitempty"`
	RaftID               *uint64  `json:"raft_id,omitempty"`
	PeerHost             *string  `json:"peer_host,omitempty"`
	PeerPort             *uint32  `json:"peer_port,omitempty"`
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径
}
