package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papyrus-notes/table-engine/global"
	"github.com/papyrus-notes/table-engine/internal/dao"
	"github.com/papyrus-notes/table-engine/internal/service"
)

type migrateFlags struct {
	config string
}

func init() {
	migrateEnv := new(migrateFlags)

	var migrateCommand = &cobra.Command{
		Use:   "migrate [-c config_file]",
		Short: "Create or upgrade the engine schema // 创建或升级引擎表结构",
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := global.ConfigLoad(migrateEnv.config); err != nil {
				bootstrapLogger.Error("config load err", zap.Error(err))
				return
			}
			applyBootstrapLevel(global.Config.Log.Level)
			if err := global.SetupLogger(); err != nil {
				bootstrapLogger.Error("logger setup err", zap.Error(err))
				return
			}

			db, err := dao.NewDBEngine(global.Config.Database)
			if err != nil {
				bootstrapLogger.Error("database open err", zap.Error(err))
				return
			}

			svc := service.New(db, context.Background())
			if err := svc.AutoMigrate(); err != nil {
				bootstrapLogger.Error("migrate err", zap.Error(err))
				return
			}
			bootstrapLogger.Info("migrate done", zap.String("path", global.Config.Database.Path))
		},
	}

	migrateCommand.Flags().StringVarP(&migrateEnv.config, "config", "c", "config.yaml", "config file path")
	rootCmd.AddCommand(migrateCommand)
}
