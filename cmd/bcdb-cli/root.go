package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weisyn/bcdb/client"
	"github.com/weisyn/bcdb/client/core/config"
	"github.com/weisyn/bcdb/client/core/output"
	"github.com/weisyn/bcdb/client/core/transport"
	"github.com/weisyn/bcdb/internal/app/version"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	Profile      string
	ConfigDir    string
	OutputFormat string
	Silent       bool
	Timeout      time.Duration
}

var (
	globalFlags GlobalFlags
	profileMgr  *config.ProfileManager
	formatter   *output.Formatter
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:           "bcdb-cli",
	Short:         "bcdb 命令行客户端",
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `bcdb-cli 用 Profile 中的私钥签名每个查询，并用节点证书验证每个响应。

Profile 保存在 ~/.bcdb/profiles，首次运行会创建指向本地单节点的 local Profile。`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(globalFlags.OutputFormat)
		if err != nil {
			return err
		}
		formatter = output.NewFormatter(format, cmd.OutOrStdout())
		formatter.SetLogWriter(cmd.ErrOrStderr())
		formatter.SetSilent(globalFlags.Silent)

		profileMgr, err = config.NewProfileManager(globalFlags.ConfigDir)
		if err != nil {
			return fmt.Errorf("初始化配置: %w", err)
		}
		return nil
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if formatter != nil {
			formatter.PrintError(describe(err))
		} else {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.Profile, "profile", "", "使用指定的Profile (默认使用当前Profile)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigDir, "config-dir", "", "配置目录 (默认: ~/.bcdb)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.OutputFormat, "output", "o", "table", "输出格式: json|pretty|table")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Silent, "silent", false, "静默模式 (仅输出结果)")
	rootCmd.PersistentFlags().DurationVar(&globalFlags.Timeout, "timeout", 30*time.Second, "单次命令超时")

	rootCmd.SetVersionTemplate(version.GetFullVersion("bcdb-cli") + "\n")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(profileCmd)
}

// currentProfile --profile 指定的或当前的 Profile
func currentProfile() (*config.Profile, error) {
	if globalFlags.Profile != "" {
		return profileMgr.GetProfile(globalFlags.Profile)
	}
	return profileMgr.GetCurrentProfile()
}

// getClient 按 Profile 创建故障转移客户端；私钥加密时从终端读取口令
func getClient() (*client.Client, error) {
	profile, err := currentProfile()
	if err != nil {
		return nil, fmt.Errorf("获取Profile: %w", err)
	}

	c, err := client.NewFromProfile(profile, nil)
	if errors.Is(err, key.ErrPassphraseRequired) {
		passphrase, perr := readPassphrase(fmt.Sprintf("%s 的私钥口令: ", profile.UserID))
		if perr != nil {
			return nil, perr
		}
		c, err = client.NewFromProfile(profile, passphrase)
	}
	return c, err
}

func readPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("私钥已加密，但标准输入不是终端，无法读取口令")
	}
	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("读取口令失败: %w", err)
	}
	return passphrase, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), globalFlags.Timeout)
}

// describe 给认证类错误补充提示
func describe(err error) error {
	var apiErr *transport.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.AuthenticationFailed():
		return fmt.Errorf("%w\n提示: 检查 Profile 的 user_id 是否已登记，以及 key_path 是否为对应私钥", err)
	case apiErr.Code == "UNAUTHORIZED":
		return fmt.Errorf("%w\n提示: 该用户缺少所需能力", err)
	}
	return err
}
