// Package configs 内嵌的节点配置
package configs

import _ "embed"

//go:embed development/node.json
var developmentConfig []byte

// GetDevelopmentConfig 单节点开发配置，证书材料由 bcdb-keygen init 生成到 ./crypto
func GetDevelopmentConfig() []byte {
	return developmentConfig
}
