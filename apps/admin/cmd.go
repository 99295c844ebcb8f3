package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/oosplatform/oos/core/auth"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db        *sql.DB
	grantRepo auth.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args]                 - run a database migration command (up, down, status, ...)")
	fmt.Println("  grantadmin -user USER_ID               - grant the admin badge to a user")
	fmt.Println("  revokeadmin -user USER_ID              - revoke a user's admin badge")
	fmt.Println("  listadmins                             - list all admin badge grants")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	grantAdminCmd := flag.NewFlagSet("grantadmin", flag.ExitOnError)
	grantAdminUser := grantAdminCmd.String("user", "", "The user's ID.")

	revokeAdminCmd := flag.NewFlagSet("revokeadmin", flag.ExitOnError)
	revokeAdminUser := revokeAdminCmd.String("user", "", "The user's ID.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "grantadmin":
		if err := grantAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *grantAdminUser == "" {
			grantAdminCmd.Usage()
			return errHelp
		}
		return cli.grantAdmin(*grantAdminUser)
	case "revokeadmin":
		if err := revokeAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *revokeAdminUser == "" {
			revokeAdminCmd.Usage()
			return errHelp
		}
		return cli.revokeAdmin(*revokeAdminUser)
	case "listadmins":
		return cli.listAdmins()
	default:
		cli.printUsage()
		return errHelp
	}
}
