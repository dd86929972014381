// Package usersvc 用户记录查询
package usersvc

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/weisyn/bcdb/internal/core/auth"
	"github.com/weisyn/bcdb/internal/core/persistence/state"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/bcdb/pkg/types"
)

// Service 用户查询服务
type Service struct {
	store   storage.Store
	reader  *state.Reader
	timeout time.Duration
	logger  log.Logger
}

// New 创建用户查询服务
func New(store storage.Store, codec *state.Codec, timeout time.Duration, logger log.Logger) *Service {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Service{
		store:   store,
		reader:  state.NewReader(codec),
		timeout: timeout,
		logger:  logger,
	}
}

// GetUser 读取用户记录
//
// 用户可以读取自己的记录；读取他人的记录需要 admin。
func (s *Service) GetUser(ctx context.Context, grant *auth.Grant, targetID string) (*types.UserView, types.Version, error) {
	if grant.UserID() == "" {
		return nil, types.Version{}, &types.Error{Kind: types.KindUnauthorized, Message: "未认证"}
	}
	if grant.UserID() != targetID {
		if err := auth.Require(grant, types.CapabilityAdmin); err != nil {
			return nil, types.Version{}, err
		}
	}

	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rec, err := state.Await(readCtx, func() (*types.UserRecord, error) {
		return s.reader.User(state.StoreGetter(readCtx, s.store), targetID)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, types.Version{}, err
		}
		s.logger.With(zap.String("target_user_id", targetID), zap.Error(err)).Warn("读取用户记录失败")
		return nil, types.Version{}, types.Unavailable("读取用户记录失败", err)
	}
	if rec == nil {
		return nil, types.Version{}, types.NotFoundf("用户 %s 不存在", targetID)
	}

	view := &types.UserView{
		ID:           rec.ID,
		Certificate:  rec.Certificate,
		PublicKey:    rec.PublicKey,
		Capabilities: append([]types.Capability{}, rec.Capabilities...),
	}
	return view, rec.Version, nil
}
