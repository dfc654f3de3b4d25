package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/VitaminP8/discuss/internal/auth"
	"github.com/VitaminP8/discuss/internal/storage/postgres"
)

// newTokenCmd выпускает JWT для пользователя (вход по паролю в сервис не входит)
func newTokenCmd() *cobra.Command {
	var (
		name string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token [user-id]",
		Short: "Выпустить JWT для пользователя",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			token, err := auth.IssueToken(cfg.JWTSecret, args[0], name, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Отображаемое имя")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Срок действия токена")
	return cmd
}

// newUserCmd - управление пользователями в PostgreSQL
func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Пользователи (только postgres)",
	}

	var name, role string
	addCmd := &cobra.Command{
		Use:   "add [username]",
		Short: "Создать пользователя и вывести его ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Storage != "postgres" {
				return fmt.Errorf("user add requires storage=postgres, got %s", cfg.Storage)
			}
			if err := postgres.InitDB(*cfg.Database); err != nil {
				return err
			}
			defer postgres.CloseDB()
			if err := postgres.Migrate(); err != nil {
				return err
			}

			id, err := postgres.NewUserPostgresStorage().CreateUser(context.Background(), args[0], name, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "Отображаемое имя")
	addCmd.Flags().StringVar(&role, "role", "student", "Роль: admin, moderator или student")

	userCmd.AddCommand(addCmd)
	return userCmd
}
