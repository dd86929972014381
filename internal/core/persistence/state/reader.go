package state

import (
	"context"
	"fmt"

	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/bcdb/pkg/types"
)

// Getter 只读键值访问，storage.Store 与事务内读取都满足
type Getter func(key []byte) ([]byte, error)

// StoreGetter 把 Store 适配为 Getter
func StoreGetter(ctx context.Context, store storage.Store) Getter {
	return func(key []byte) ([]byte, error) { return store.Get(ctx, key) }
}

// TxGetter 把事务适配为 Getter
func TxGetter(tx storage.Transaction) Getter {
	return tx.Get
}

// Reader 已提交状态读取器
type Reader struct {
	codec *Codec
}

// NewReader 创建读取器
func NewReader(codec *Codec) *Reader {
	return &Reader{codec: codec}
}

// Snapshot 读取当前配置快照，不存在时返回 nil, nil
func (r *Reader) Snapshot(get Getter) (*types.ConfigSnapshot, error) {
	data, err := get([]byte(ClusterConfigKey))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var snap types.ConfigSnapshot
	if err := r.codec.Decode(data, &snap); err != nil {
		return nil, fmt.Errorf("解码配置快照失败: %w", err)
	}
	if snap.Config == nil {
		return nil, fmt.Errorf("%w: 快照缺少配置", ErrCorruptRecord)
	}
	return &snap, nil
}

// User 读取用户记录，不存在时返回 nil, nil
func (r *Reader) User(get Getter, userID string) (*types.UserRecord, error) {
	data, err := get(UserKey(userID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var rec types.UserRecord
	if err := r.codec.Decode(data, &rec); err != nil {
		return nil, fmt.Errorf("解码用户记录失败(%s): %w", userID, err)
	}
	return &rec, nil
}

// LastVersion 读取最后提交的版本，从未提交时返回零值
func (r *Reader) LastVersion(get Getter) (types.Version, error) {
	data, err := get([]byte(LastVersionKey))
	if err != nil || data == nil {
		return types.Version{}, err
	}
	var v types.Version
	if err := r.codec.Decode(data, &v); err != nil {
		return types.Version{}, fmt.Errorf("解码版本失败: %w", err)
	}
	return v, nil
}
