// Package identity 实现基于已提交状态的身份注册表
package identity

import (
	"context"
	"crypto"
	"crypto/x509"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/pki"
	"github.com/weisyn/bcdb/internal/core/persistence/state"
	identityInterface "github.com/weisyn/bcdb/pkg/interfaces/identity"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/bcdb/pkg/types"
)

// Registry 读穿透的身份注册表
//
// 每次查询直接读取存储中的已提交记录，不持有可变状态。
type Registry struct {
	store  storage.Store
	reader *state.Reader
	logger log.Logger
}

var _ identityInterface.Registry = (*Registry)(nil)

// New 创建身份注册表
func New(store storage.Store, codec *state.Codec, logger log.Logger) *Registry {
	return &Registry{
		store:  store,
		reader: state.NewReader(codec),
		logger: logger,
	}
}

// Resolve 解析用户身份
//
// 证书用户每次都按当前快照的根证书重新校验证书链与有效期，
// 根证书轮换或证书过期后不再认可该身份。
func (r *Registry) Resolve(ctx context.Context, userID string) (*types.Identity, error) {
	type lookup struct {
		rec  *types.UserRecord
		snap *types.ConfigSnapshot
	}
	res, err := state.Await(ctx, func() (lookup, error) {
		get := state.StoreGetter(ctx, r.store)
		rec, err := r.reader.User(get, userID)
		if err != nil || rec == nil || len(rec.Certificate) == 0 {
			return lookup{rec: rec}, err
		}
		snap, err := r.reader.Snapshot(get)
		return lookup{rec: rec, snap: snap}, err
	})
	if err != nil {
		return nil, r.lookupError(ctx, "user", userID, err)
	}
	if res.rec == nil {
		return nil, types.NotFoundf("用户 %s 不存在", userID)
	}

	id, err := identityFromRecord(res.rec)
	if err != nil {
		r.logger.With(zap.String("user_id", userID), zap.Error(err)).Error("用户记录无法解析")
		return nil, types.Unavailable("用户记录无法解析", err)
	}
	if id.Certificate != nil {
		if err := verifyAgainstSnapshot(id.Certificate, res.snap); err != nil {
			r.logger.With(zap.String("user_id", userID), zap.Error(err)).Warn("用户证书未通过校验")
			return nil, types.NewError(types.KindUnknownIdentity, "用户证书已失效", err)
		}
	}
	return id, nil
}

// verifyAgainstSnapshot 证书必须链接到当前快照的根证书且仍在有效期内
func verifyAgainstSnapshot(cert *x509.Certificate, snap *types.ConfigSnapshot) error {
	if snap == nil || snap.Config == nil || snap.Config.CertAuthConfig == nil {
		return errors.New("集群未配置根证书")
	}
	ca := snap.Config.CertAuthConfig
	return pki.VerifyChain(cert, ca.Roots, ca.Intermediates)
}

// ResolveNode 解析节点身份
func (r *Registry) ResolveNode(ctx context.Context, nodeID string) (*types.Node, error) {
	snap, err := state.Await(ctx, func() (*types.ConfigSnapshot, error) {
		return r.reader.Snapshot(state.StoreGetter(ctx, r.store))
	})
	if err != nil {
		return nil, r.lookupError(ctx, "node", nodeID, err)
	}
	if snap == nil {
		return nil, types.NotFoundf("集群配置尚未提交")
	}

	nc := snap.Config.Node(nodeID)
	if nc == nil {
		return nil, types.NotFoundf("节点 %s 不存在", nodeID)
	}
	cert, err := x509.ParseCertificate(nc.Certificate)
	if err != nil {
		return nil, types.Unavailable(fmt.Sprintf("节点 %s 证书无法解析", nodeID), err)
	}
	return &types.Node{
		Config:    nc,
		Member:    snap.Config.Member(nodeID),
		PublicKey: cert.PublicKey,
	}, nil
}

// lookupError 把查询失败统一为 Unavailable；调用方取消时原样返回上下文错误
func (r *Registry) lookupError(ctx context.Context, kind, id string, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled {
		return err
	}
	r.logger.With(zap.String("lookup", kind), zap.String("id", id), zap.Error(err)).Warn("注册表查询失败")
	if errors.Is(err, context.DeadlineExceeded) {
		return types.Unavailable("注册表查询超时", err)
	}
	return types.Unavailable("注册表查询失败", err)
}

// identityFromRecord 证书优先；没有证书时使用原始 secp256k1 公钥
func identityFromRecord(rec *types.UserRecord) (*types.Identity, error) {
	id := &types.Identity{
		UserID:       rec.ID,
		Capabilities: rec.Capabilities,
		Version:      rec.Version,
	}

	var pub crypto.PublicKey
	switch {
	case len(rec.Certificate) > 0:
		cert, err := x509.ParseCertificate(rec.Certificate)
		if err != nil {
			return nil, fmt.Errorf("解析证书失败: %w", err)
		}
		id.Certificate = cert
		pub = cert.PublicKey
	case len(rec.PublicKey) > 0:
		k, err := key.ParseSecp256k1PublicKey(rec.PublicKey)
		if err != nil {
			return nil, err
		}
		pub = k
	default:
		return nil, errors.New("记录既无证书也无公钥")
	}

	if _, err := key.AlgorithmOf(pub); err != nil {
		return nil, err
	}
	id.PublicKey = pub
	return id, nil
}
