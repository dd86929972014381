package event

import (
	"go.uber.org/zap"

	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
)

// SubscribeAudit 把已提交状态变更写入审计日志
func SubscribeAudit(bus event.EventBus, logger log.Logger) error {
	onConfig := func(e event.ConfigCommitted) {
		logger.With(
			zap.String("audit", "config"),
			zap.String("tx_id", e.TxID),
			zap.Uint64("block_num", e.Version.BlockNum),
			zap.Strings("nodes", e.NodeIDs),
			zap.Strings("admins", e.Admins),
		).Info("集群配置已提交")
	}
	onUser := func(e event.UserCommitted) {
		logger.With(
			zap.String("audit", "user"),
			zap.String("tx_id", e.TxID),
			zap.Uint64("block_num", e.Version.BlockNum),
			zap.Strings("written", e.Written),
			zap.Strings("deleted", e.Deleted),
		).Info("用户记录已提交")
	}
	if err := bus.SubscribeAsync(event.EventTypeConfigCommitted, onConfig, true); err != nil {
		return err
	}
	return bus.SubscribeAsync(event.EventTypeUserCommitted, onUser, true)
}
