package main

import (
	"github.com/urfave/cli/v2"
)

var accounts = cli.Command{
	Name:   "accounts",
	Usage:  "print the last account list computed by the daemon and the selected account",
	Action: accountsAction,
}

func accountsAction(ctx *cli.Context) error {
	a, cleanup, err := getApp(ctx.Context, "")
	if err != nil {
		return err
	}
	defer cleanup()

	list, err := a.RepoManager.AccountRepository().GetAccounts(ctx.Context)
	if err != nil {
		return err
	}
	connection, err := a.RepoManager.ConnectionRepository().GetConnection(ctx.Context)
	if err != nil {
		return err
	}

	printRespJSON(map[string]interface{}{
		"accounts":   list,
		"connection": connection,
	})
	return nil
}
