package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "检查 Profile 中的节点是否可达",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := commandContext()
		defer cancel()
		if err := c.Ping(ctx); err != nil {
			return err
		}
		formatter.PrintSuccess(fmt.Sprintf("节点 %s 可达", c.NodeID()))
		return nil
	},
}
