package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/weisyn/bcdb/client/core/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "管理连接 Profile",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出所有 Profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := profileRows{{"", "Name", "User", "Endpoints"}}
		for _, name := range profileMgr.ListProfiles() {
			p, err := profileMgr.GetProfile(name)
			if err != nil {
				return err
			}
			mark := ""
			if name == profileMgr.CurrentName() {
				mark = "*"
			}
			rows = append(rows, []string{mark, name, p.UserID, fmt.Sprint(len(p.Endpoints))})
		}
		return formatter.Print(rows)
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "显示当前 Profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := currentProfile()
		if err != nil {
			return err
		}
		return formatter.Print(p)
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "切换当前 Profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := profileMgr.SwitchProfile(args[0]); err != nil {
			return err
		}
		formatter.PrintSuccess("当前 Profile: " + args[0])
		return nil
	},
}

var profileAddFlags struct {
	userID   string
	keyPath  string
	nodeID   string
	url      string
	certPath string
	timeout  time.Duration
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "新增或覆盖 Profile（单个端点，用 endpoint-add 追加更多）",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := profileAddFlags
		p := &config.Profile{
			Name:    args[0],
			UserID:  f.userID,
			KeyPath: f.keyPath,
			Endpoints: []config.EndpointConfig{{
				NodeID:          f.nodeID,
				URL:             f.url,
				CertificatePath: f.certPath,
				Priority:        1,
			}},
			Timeout: config.Duration(f.timeout),
		}
		if err := profileMgr.SaveProfile(p); err != nil {
			return err
		}
		formatter.PrintSuccess("已保存 Profile " + p.Name)
		return nil
	},
}

var endpointFlags struct {
	nodeID   string
	url      string
	certPath string
	priority int
}

var profileEndpointCmd = &cobra.Command{
	Use:   "endpoint-add",
	Short: "向当前 Profile 追加端点",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := currentProfile()
		if err != nil {
			return err
		}
		f := endpointFlags
		p.Endpoints = append(p.Endpoints, config.EndpointConfig{
			NodeID:          f.nodeID,
			URL:             f.url,
			CertificatePath: f.certPath,
			Priority:        f.priority,
		})
		if err := profileMgr.SaveProfile(p); err != nil {
			return err
		}
		formatter.PrintSuccess(fmt.Sprintf("Profile %s 现有 %d 个端点", p.Name, len(p.Endpoints)))
		return nil
	},
}

type profileRows [][]string

func (r profileRows) Rows() [][]string { return r }

func init() {
	af := profileAddCmd.Flags()
	af.StringVar(&profileAddFlags.userID, "user", "", "用户 ID")
	af.StringVar(&profileAddFlags.keyPath, "key", "", "私钥文件")
	af.StringVar(&profileAddFlags.nodeID, "node-id", "", "节点 ID")
	af.StringVar(&profileAddFlags.url, "url", "", "节点地址，如 http://127.0.0.1:6001")
	af.StringVar(&profileAddFlags.certPath, "node-cert", "", "节点证书文件")
	af.DurationVar(&profileAddFlags.timeout, "request-timeout", 30*time.Second, "请求超时")
	for _, name := range []string{"user", "key", "node-id", "url", "node-cert"} {
		_ = profileAddCmd.MarkFlagRequired(name)
	}

	ef := profileEndpointCmd.Flags()
	ef.StringVar(&endpointFlags.nodeID, "node-id", "", "节点 ID")
	ef.StringVar(&endpointFlags.url, "url", "", "节点地址")
	ef.StringVar(&endpointFlags.certPath, "node-cert", "", "节点证书文件")
	ef.IntVar(&endpointFlags.priority, "priority", 2, "优先级，数字越小越优先")
	for _, name := range []string{"node-id", "url", "node-cert"} {
		_ = profileEndpointCmd.MarkFlagRequired(name)
	}

	profileCmd.AddCommand(profileListCmd, profileShowCmd, profileUseCmd, profileAddCmd, profileEndpointCmd)
}
