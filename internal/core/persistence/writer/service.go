// Package writer 实现已提交状态的唯一写入路径
//
// 所有写入在同一把锁下通过 Store.RunInTransaction 原子完成，每次提交产生
// 下一个版本（区块号加一）。读者只会看到提交前或提交后的完整状态。
package writer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weisyn/bcdb/internal/core/persistence/state"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/writegate"
	"github.com/weisyn/bcdb/pkg/types"
)

// Service 提交服务
type Service struct {
	mu sync.Mutex

	store  storage.Store
	codec  *state.Codec
	reader *state.Reader
	bus    event.EventBus
	gate   writegate.WriteGate
	logger log.Logger
}

// NewService 创建提交服务，bus 可以为 nil
func NewService(store storage.Store, codec *state.Codec, bus event.EventBus, logger log.Logger) *Service {
	return &Service{
		store:  store,
		codec:  codec,
		reader: state.NewReader(codec),
		bus:    bus,
		logger: logger,
	}
}

// SetWriteGate 设置写门闸，只读模式下拒绝所有提交
func (s *Service) SetWriteGate(g writegate.WriteGate) {
	s.gate = g
}

// WriteGate 返回写门闸，未设置时为 nil
func (s *Service) WriteGate() writegate.WriteGate {
	return s.gate
}

func (s *Service) assertWritable(ctx context.Context, op string) error {
	if s.gate == nil {
		return nil
	}
	return s.gate.AssertWriteAllowed(ctx, op)
}

// CommitConfig 提交新的集群配置快照
//
// 同时为每个管理员写入 admin 用户记录，并删除不再是管理员的旧管理员记录。
func (s *Service) CommitConfig(ctx context.Context, cfg *types.ClusterConfig) (*types.ConfigSnapshot, error) {
	if err := s.assertWritable(ctx, "commit_config"); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var snap *types.ConfigSnapshot
	err := s.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		get := state.TxGetter(tx)
		version, err := s.nextVersion(get)
		if err != nil {
			return err
		}
		prev, err := s.reader.Snapshot(get)
		if err != nil {
			return err
		}

		snap = &types.ConfigSnapshot{Config: cfg, Version: version, TxID: uuid.NewString()}
		if err := s.put(tx, []byte(state.ClusterConfigKey), snap); err != nil {
			return err
		}

		current := make(map[string]struct{}, len(cfg.Admins))
		for _, a := range cfg.Admins {
			current[a.ID] = struct{}{}
			rec := &types.UserRecord{
				ID:           a.ID,
				Certificate:  a.Certificate,
				Capabilities: []types.Capability{types.CapabilityAdmin},
				Version:      version,
			}
			if err := s.put(tx, state.UserKey(a.ID), rec); err != nil {
				return err
			}
		}
		if prev != nil {
			for _, a := range prev.Config.Admins {
				if _, still := current[a.ID]; still {
					continue
				}
				if err := tx.Delete(state.UserKey(a.ID)); err != nil {
					return err
				}
			}
		}
		return s.put(tx, []byte(state.LastVersionKey), version)
	})
	if err != nil {
		return nil, fmt.Errorf("提交集群配置失败: %w", err)
	}

	s.logger.With(
		zap.String("tx_id", snap.TxID),
		zap.Uint64("block_num", snap.Version.BlockNum),
		zap.Int("nodes", len(cfg.Nodes)),
	).Info("集群配置已提交")

	if s.bus != nil {
		e := event.ConfigCommitted{TxID: snap.TxID, Version: snap.Version}
		for _, n := range cfg.Nodes {
			e.NodeIDs = append(e.NodeIDs, n.ID)
		}
		for _, a := range cfg.Admins {
			e.Admins = append(e.Admins, a.ID)
		}
		s.bus.Publish(event.EventTypeConfigCommitted, e)
	}
	return snap, nil
}

// CommitUsers 写入或删除非管理员用户
func (s *Service) CommitUsers(ctx context.Context, writes []*types.UserRecord, deletes []string) (types.Version, error) {
	if len(writes) == 0 && len(deletes) == 0 {
		return types.Version{}, userErrorf("没有任何变更")
	}
	if err := s.assertWritable(ctx, "commit_users"); err != nil {
		return types.Version{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var version types.Version
	txID := uuid.NewString()
	err := s.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		get := state.TxGetter(tx)
		snap, err := s.reader.Snapshot(get)
		if err != nil {
			return err
		}
		if snap == nil {
			return ErrNoConfig
		}
		admins := make(map[string]struct{}, len(snap.Config.Admins))
		for _, a := range snap.Config.Admins {
			admins[a.ID] = struct{}{}
		}

		version, err = s.nextVersion(get)
		if err != nil {
			return err
		}

		touched := make(map[string]struct{}, len(writes)+len(deletes))
		for _, rec := range writes {
			if err := ValidateUser(rec, snap.Config.CertAuthConfig); err != nil {
				return err
			}
			if err := touch(rec.ID, admins, touched); err != nil {
				return err
			}
			stored := *rec
			stored.Version = version
			if err := s.put(tx, state.UserKey(rec.ID), &stored); err != nil {
				return err
			}
		}
		for _, id := range deletes {
			if err := touch(id, admins, touched); err != nil {
				return err
			}
			exists, err := tx.Exists(state.UserKey(id))
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: %s", ErrUserNotFound, id)
			}
			if err := tx.Delete(state.UserKey(id)); err != nil {
				return err
			}
		}
		return s.put(tx, []byte(state.LastVersionKey), version)
	})
	if err != nil {
		return types.Version{}, fmt.Errorf("提交用户变更失败: %w", err)
	}

	written := make([]string, 0, len(writes))
	for _, rec := range writes {
		written = append(written, rec.ID)
	}
	sort.Strings(written)
	deleted := append([]string(nil), deletes...)
	sort.Strings(deleted)

	s.logger.With(
		zap.String("tx_id", txID),
		zap.Uint64("block_num", version.BlockNum),
		zap.Strings("written", written),
		zap.Strings("deleted", deleted),
	).Info("用户变更已提交")

	if s.bus != nil {
		s.bus.Publish(event.EventTypeUserCommitted, event.UserCommitted{
			TxID:    txID,
			Version: version,
			Written: written,
			Deleted: deleted,
		})
	}
	return version, nil
}

// CurrentSnapshot 读取当前配置快照，尚未提交时返回 nil, nil
func (s *Service) CurrentSnapshot(ctx context.Context) (*types.ConfigSnapshot, error) {
	return s.reader.Snapshot(state.StoreGetter(ctx, s.store))
}

func touch(id string, admins, touched map[string]struct{}) error {
	if _, ok := admins[id]; ok {
		return fmt.Errorf("%w: %s", ErrAdminRecord, id)
	}
	if _, dup := touched[id]; dup {
		return userErrorf("用户 %s 在同一提交中出现多次", id)
	}
	touched[id] = struct{}{}
	return nil
}

func (s *Service) nextVersion(get state.Getter) (types.Version, error) {
	last, err := s.reader.LastVersion(get)
	if err != nil {
		return types.Version{}, err
	}
	return types.Version{BlockNum: last.BlockNum + 1, TxNum: 0}, nil
}

func (s *Service) put(tx storage.Transaction, k []byte, v interface{}) error {
	data, err := s.codec.Encode(v)
	if err != nil {
		return err
	}
	return tx.Set(k, data)
}
