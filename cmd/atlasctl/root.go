package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"atlas/config"
	"atlas/pkg/database"
	applogger "atlas/pkg/logger"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "atlasctl",
		Short:         "ATLAS 运维工具：数据库迁移与定时任务",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("ATLAS_CONFIG"), "配置文件路径（默认 ./config/config.yaml）")

	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newRemindCmd(opts))
	return cmd
}

// runtime 子命令共用的配置、日志与数据库连接
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	sqlDB  *sql.DB
}

func (o *rootOptions) open() (*runtime, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger, db: db, sqlDB: sqlDB}, nil
}

func (r *runtime) close() {
	_ = r.sqlDB.Close()
	_ = r.logger.Sync()
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
