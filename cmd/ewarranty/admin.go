package main

import (
	"fmt"
	"log"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"ewarranty/internal/repos"
	"ewarranty/internal/services"
)

const (
	emailFlag    = "email"
	passwordFlag = "password"
)

var adminFlags = map[string]cobraflags.Flag{
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Admin email (required)",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Admin password, 8 to 72 characters (required)",
	},
}

func newAdminCommand() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage back office accounts",
	}
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin, or reset the password of an existing one",
		RunE:  adminCreateCommand,
	}
	cobraflags.RegisterMap(create, adminFlags)
	admin.AddCommand(create)
	return admin
}

func adminCreateCommand(cmd *cobra.Command, _ []string) error {
	email := adminFlags[emailFlag].GetString()
	password := adminFlags[passwordFlag].GetString()
	if email == "" || password == "" {
		return fmt.Errorf("--%s and --%s are required", emailFlag, passwordFlag)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := repos.OpenDB(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	auth := services.NewAuthService(repos.NewAdminRepo(db), cfg.JWTSecret, cfg.TokenTTL)
	id, err := auth.CreateAdmin(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	log.Printf("[admin] saved %s (id=%d)", email, id)
	return nil
}
