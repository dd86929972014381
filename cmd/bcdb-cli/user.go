package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weisyn/bcdb/pkg/types"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "查询用户",
}

var userGetCmd = &cobra.Command{
	Use:   "get [user_id]",
	Short: "读取用户记录 (GET /user/{user_id})，默认读取自己",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := currentProfile()
		if err != nil {
			return err
		}
		target := profile.UserID
		if len(args) == 1 {
			target = args[0]
		}

		c, err := getClient()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := commandContext()
		defer cancel()
		user, v, err := c.User(ctx, target)
		if err != nil {
			return err
		}
		return formatter.Print(userView{User: user, Version: v})
	},
}

func init() {
	userCmd.AddCommand(userGetCmd)
}

type userView struct {
	User    *types.UserView `json:"user"`
	Version types.Version   `json:"version"`
}

func (v userView) Rows() [][]string {
	caps := make([]string, 0, len(v.User.Capabilities))
	for _, c := range v.User.Capabilities {
		caps = append(caps, string(c))
	}
	cred := fmt.Sprintf("certificate (%d bytes)", len(v.User.Certificate))
	if len(v.User.PublicKey) > 0 {
		cred = fmt.Sprintf("secp256k1 %x", v.User.PublicKey)
	}
	return [][]string{
		{"ID", "Capabilities", "Credential", "Version"},
		{v.User.ID, strings.Join(caps, ","), cred, fmt.Sprintf("%d:%d", v.Version.BlockNum, v.Version.TxNum)},
	}
}
