package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weisyn/bcdb/pkg/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "查询集群配置",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "读取完整集群配置 (GET /config/tx)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := commandContext()
		defer cancel()
		cfg, v, err := c.ClusterConfig(ctx)
		if err != nil {
			return err
		}
		formatter.PrintInfo(fmt.Sprintf("应答节点 %s，配置版本 %d:%d", c.NodeID(), v.BlockNum, v.TxNum))
		return formatter.Print(clusterView{Config: cfg, Version: v})
	},
}

var configNodeCmd = &cobra.Command{
	Use:   "node <node_id>",
	Short: "读取单个节点配置 (GET /config/node/{node_id})",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := commandContext()
		defer cancel()
		node, err := c.NodeConfig(ctx, args[0])
		if err != nil {
			return err
		}
		return formatter.Print(nodeView{node})
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configNodeCmd)
}

// clusterView 表格展示节点与管理员，JSON 展示完整配置
type clusterView struct {
	Config  *types.ClusterConfig `json:"config"`
	Version types.Version        `json:"version"`
}

func (v clusterView) Rows() [][]string {
	rows := [][]string{{"Kind", "ID", "Address", "Cert bytes"}}
	for _, n := range v.Config.Nodes {
		rows = append(rows, []string{"node", n.ID, fmt.Sprintf("%s:%d", n.Address, n.Port), fmt.Sprint(len(n.Certificate))})
	}
	for _, a := range v.Config.Admins {
		rows = append(rows, []string{"admin", a.ID, "-", fmt.Sprint(len(a.Certificate))})
	}
	if cc := v.Config.ConsensusConfig; cc != nil {
		members := make([]string, 0, len(cc.Members))
		for _, m := range cc.Members {
			members = append(members, m.NodeID)
		}
		rows = append(rows, []string{"consensus", cc.Algorithm, strings.Join(members, ","), "-"})
	}
	return rows
}

type nodeView struct {
	*types.NodeConfig
}

func (v nodeView) Rows() [][]string {
	return [][]string{
		{"ID", "Address", "Port", "Cert bytes"},
		{v.ID, v.Address, fmt.Sprint(v.Port), fmt.Sprint(len(v.Certificate))},
	}
}
