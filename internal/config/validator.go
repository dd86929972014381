package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/weisyn/bcdb/internal/config/storage"
	"github.com/weisyn/bcdb/pkg/types"
)

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置验证失败 [%s]: %s", e.Field, e.Message)
}

// ValidationErrors 多个配置验证错误
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateAppConfig 校验显式写出的配置项
//
// Provider 对无效值静默回退默认值；启动路径上先调用本函数，
// 让拼错的环境名、后端名和时长在启动时失败。
func ValidateAppConfig(appConfig *types.AppConfig) error {
	if appConfig == nil {
		return nil
	}
	var errs []error
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	env := ""
	if appConfig.Environment != nil {
		env = strings.ToLower(strings.TrimSpace(*appConfig.Environment))
		switch env {
		case "dev", "test", "prod":
		default:
			add("environment", "无效的运行环境 %q，可选 dev | test | prod", *appConfig.Environment)
		}
	}

	if s := appConfig.Storage; s != nil {
		if s.Backend != nil {
			switch *s.Backend {
			case storage.BackendBadger, storage.BackendMemory, storage.BackendRedis:
			default:
				add("storage.backend", "无效的存储后端 %q，可选 badger | memory | redis", *s.Backend)
			}
			if *s.Backend == storage.BackendRedis && (s.RedisAddr == nil || strings.TrimSpace(*s.RedisAddr) == "") {
				add("storage.redis_addr", "redis 后端必须配置 redis_addr")
			}
		}
		if s.MemoryShards != nil && (*s.MemoryShards <= 0 || *s.MemoryShards&(*s.MemoryShards-1) != 0) {
			add("storage.memory_shards", "memory_shards 必须是 2 的幂，当前为 %d", *s.MemoryShards)
		}
	}

	if a := appConfig.API; a != nil {
		checkDuration(a.ReadTimeout, "api.read_timeout", add)
		checkDuration(a.WriteTimeout, "api.write_timeout", add)
		if a.HTTPPort != nil && (*a.HTTPPort < 0 || *a.HTTPPort > 65535) {
			add("api.http_port", "端口超出范围: %d", *a.HTTPPort)
		}
	}

	if a := appConfig.Auth; a != nil {
		checkDuration(a.LookupTimeout, "auth.lookup_timeout", add)
		// 生产环境不区分拒绝原因，避免枚举已注册身份
		if (env == "" || env == "prod") && a.ExposeRejectionKind != nil && *a.ExposeRejectionKind {
			add("auth.expose_rejection_kind", "生产环境（environment 缺省或为 prod）下不允许开启 expose_rejection_kind")
		}
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

func checkDuration(v *string, field string, add func(field, format string, args ...interface{})) {
	if v == nil {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(*v))
	if err != nil || d <= 0 {
		add(field, "时长格式无效: %q（期望类似 \"2s\"）", *v)
	}
}
