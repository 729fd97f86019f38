package main

import (
	"github.com/spf13/cobra"

	"atlas/pkg/database"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "数据库迁移",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "应用全部未执行的迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()
			return database.RunMigrations(rt.sqlDB, rt.logger)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "回滚指定步数的迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()
			return database.RollbackMigrations(rt.sqlDB, steps, rt.logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "回滚步数")
	cmd.AddCommand(down)

	return cmd
}
