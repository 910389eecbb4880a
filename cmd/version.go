package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// 构建时经 -ldflags 注入
var (
	Version   = "dev"
	GitTag    = "none"
	BuildTime = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print out version info and exit. // 打印版本信息并退出。",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("v%s ( Git:%s ) BuidTime:%s\n", Version, GitTag, BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
