// bcdb-keygen 生成 CA、节点和用户的证书与私钥
package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/bcdb/internal/app/version"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/pki"
)

var (
	outDir    string
	algorithm string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bcdb-keygen",
		Short:         "生成 bcdb 证书材料",
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&outDir, "out", "./crypto", "输出目录")
	root.PersistentFlags().StringVar(&algorithm, "alg", string(key.AlgorithmECDSAP256),
		"密钥算法: ecdsa-p256|ecdsa-p384|ed25519|secp256k1")

	root.AddCommand(newInitCmd(), newUserCmd(), newNodeCmd())
	return root
}

func parseAlgorithm(s string) (key.Algorithm, error) {
	switch alg := key.Algorithm(s); alg {
	case key.AlgorithmECDSAP256, key.AlgorithmECDSAP384, key.AlgorithmEd25519, key.AlgorithmSecp256k1:
		return alg, nil
	}
	return "", fmt.Errorf("%w: %s", key.ErrUnsupportedAlgorithm, s)
}

func newInitCmd() *cobra.Command {
	var (
		nodes []string
		admin string
		hosts []string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "生成根 CA、节点证书和管理员证书",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := parseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			if alg == key.AlgorithmSecp256k1 {
				return fmt.Errorf("CA、节点和管理员需要 X.509 证书，不能使用 secp256k1")
			}

			l := pki.Layout{Root: outDir}
			if _, err := os.Stat(l.CACert()); err == nil {
				return fmt.Errorf("%s 已存在，拒绝覆盖", l.CACert())
			}

			ca, err := l.WriteCA(alg)
			if err != nil {
				return err
			}
			rows := pterm.TableData{{"Kind", "ID", "Certificate", "Key"}, {"ca", "bcdb-root-ca", l.CACert(), l.CAKey()}}
			for _, id := range nodes {
				if _, err := l.WriteNode(ca, id, alg, hosts...); err != nil {
					return err
				}
				rows = append(rows, []string{"node", id, l.NodeCert(id), l.NodeKey(id)})
			}
			if _, err := l.WriteUser(ca, admin, alg); err != nil {
				return err
			}
			rows = append(rows, []string{"admin", admin, l.UserCert(admin), l.UserKey(admin)})

			if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
				return err
			}
			pterm.Success.Printf("证书材料已写入 %s\n", outDir)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&nodes, "nodes", []string{"bdb-node-1"}, "节点 ID 列表")
	cmd.Flags().StringVar(&admin, "admin", "admin", "管理员 ID")
	cmd.Flags().StringSliceVar(&hosts, "hosts", []string{"localhost", "127.0.0.1"}, "节点证书的 DNS 名称")
	return cmd
}

func newUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <user_id>",
		Short: "用已有 CA 为用户生成私钥（secp256k1 只生成公钥，不签发证书）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := parseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			l := pki.Layout{Root: outDir}
			ca, err := l.LoadCA()
			if err != nil {
				return err
			}
			id := args[0]
			if _, err := l.WriteUser(ca, id, alg); err != nil {
				return err
			}
			cred := l.UserCert(id)
			if alg == key.AlgorithmSecp256k1 {
				cred = l.UserPublicKey(id)
			}
			pterm.Success.Printf("用户 %s (%s): %s, %s\n", id, alg, cred, l.UserKey(id))
			return nil
		},
	}
}

func newNodeCmd() *cobra.Command {
	var hosts []string
	cmd := &cobra.Command{
		Use:   "node <node_id>",
		Short: "用已有 CA 为新节点签发证书",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := parseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			l := pki.Layout{Root: outDir}
			ca, err := l.LoadCA()
			if err != nil {
				return err
			}
			if _, err := l.WriteNode(ca, args[0], alg, hosts...); err != nil {
				return err
			}
			pterm.Success.Printf("节点 %s: %s, %s\n", args[0], l.NodeCert(args[0]), l.NodeKey(args[0]))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&hosts, "hosts", []string{"localhost"}, "节点证书的 DNS 名称")
	return cmd
}
