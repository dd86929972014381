package main

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weisyn/bcdb/client/core/transport"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/canonical"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/signature"
)

var signFlags struct {
	keyPath string
	payload string
}

// signCmd 离线签名，便于用 curl 直接调用接口
var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "对查询负载离线签名，输出 Signature 头的值",
	Example: `  bcdb-cli sign --data '{"user_id":"admin","node_id":"bdb-node-1"}'
  curl -H "UserID: admin" -H "Signature: $(bcdb-cli sign --silent --data ...)" http://127.0.0.1:6001/config/node/bdb-node-1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if signFlags.payload == "" {
			return errors.New("必须提供 --data")
		}
		payload, schema, err := canonical.ParseJSON([]byte(signFlags.payload))
		if err != nil {
			return err
		}

		keyPath := signFlags.keyPath
		if keyPath == "" {
			profile, err := currentProfile()
			if err != nil {
				return err
			}
			keyPath = profile.KeyPath
		}
		identity, err := transport.LoadIdentity("", keyPath, nil)
		if errors.Is(err, key.ErrPassphraseRequired) {
			passphrase, perr := readPassphrase("私钥口令: ")
			if perr != nil {
				return perr
			}
			identity, err = transport.LoadIdentity("", keyPath, passphrase)
		}
		if err != nil {
			return err
		}

		sig, err := signature.Sign(identity.Signer, payload)
		if err != nil {
			return err
		}
		encoded := base64.StdEncoding.EncodeToString(sig)
		if globalFlags.Silent {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return err
		}
		return formatter.Print(map[string]string{
			"schema":    schema.Name,
			"canonical": string(payload),
			"signature": encoded,
		})
	},
}

func init() {
	signCmd.Flags().StringVar(&signFlags.keyPath, "key", "", "私钥文件 (默认使用Profile中的key_path)")
	signCmd.Flags().StringVar(&signFlags.payload, "data", "", "JSON 查询负载")
}
