package cmd

import (
	"context"

	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/image-mcp/library/log"
)

var stdioCMD = &cobra.Command{
	Use:   "stdio",
	Short: "stdio",
	Long:  `serve the image MCP tools over stdin/stdout for local clients`,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		server := buildMCPServer(ctx)
		if err := server.ServeStdio(); err != nil {
			log.Logger.Panic("stdio server exit", zap.Error(err))
		}
	},
}

func init() {
	rootCMD.AddCommand(stdioCMD)
}
