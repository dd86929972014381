// bcdb-node 运行一个节点：配置分发、用户查询与请求认证
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/bcdb/configs"
	"github.com/weisyn/bcdb/internal/app"
	"github.com/weisyn/bcdb/internal/app/version"
	"github.com/weisyn/bcdb/pkg/types"
)

type nodeFlags struct {
	configPath string
	nodeID     string
	port       uint32
	dev        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags nodeFlags

	cmd := &cobra.Command{
		Use:          "bcdb-node",
		Short:        "bcdb 节点",
		Version:      version.GetVersion(),
		SilenceUsage: true,
		Long: `启动 bcdb 节点。

配置来源（优先级从高到低）:
  --config <path>        指定 JSON 配置文件
  --dev                  使用内嵌的单节点开发配置
  $BCDB_CONFIG_PATH      环境变量指定的配置文件

首次启动且存储中没有集群配置时，按 bootstrap 段提交创世配置。`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags)
		},
	}
	cmd.SetVersionTemplate(version.GetFullVersion("bcdb-node") + "\n")

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "配置文件路径")
	cmd.Flags().BoolVar(&flags.dev, "dev", false, "使用内嵌开发配置")
	cmd.Flags().StringVar(&flags.nodeID, "node-id", "", "覆盖 node.id")
	cmd.Flags().Uint32Var(&flags.port, "node-port", 0, "覆盖 node.port（公布端口）")
	cmd.MarkFlagsMutuallyExclusive("config", "dev")
	return cmd
}

func run(cmd *cobra.Command, flags nodeFlags) error {
	var opts []app.Option
	switch {
	case flags.configPath != "":
		opts = append(opts, app.WithConfigFile(flags.configPath))
	case flags.dev:
		opts = append(opts, app.WithEmbeddedConfig(configs.GetDevelopmentConfig()))
	}

	override := &types.UserNodeConfig{}
	if cmd.Flags().Changed("node-id") {
		override.ID = &flags.nodeID
	}
	if cmd.Flags().Changed("node-port") {
		override.Port = &flags.port
	}
	if override.ID != nil || override.Port != nil {
		opts = append(opts, app.WithNode(override))
	}

	node, err := app.Start(opts...)
	if err != nil {
		return err
	}
	if addr := node.Addr(); addr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "bcdb-node 已启动，HTTP 监听 %s\n", addr)
	}
	return node.Wait()
}
