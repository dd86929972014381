// Package state 定义已提交状态的键布局与记录编码
//
// 提交路径（writer）写入，身份注册表与配置分发器只读。
package state

// 键布局
const (
	UsersPrefix      = "_users/"
	ClusterConfigKey = "_config/cluster"
	LastVersionKey   = "_meta/last_version"
)

// UserKey 用户记录键
func UserKey(userID string) []byte {
	return []byte(UsersPrefix + userID)
}

// UserIDFromKey 从用户记录键取出用户 ID
func UserIDFromKey(key string) (string, bool) {
	if len(key) <= len(UsersPrefix) || key[:len(UsersPrefix)] != UsersPrefix {
		return "", false
	}
	return key[len(UsersPrefix):], true
}
