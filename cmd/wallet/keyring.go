package main

import (
	"errors"
	"fmt"

	"github.com/maskwallet/walletd/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/zalando/go-keyring"
)

const keyringService = "walletd"

var keyringCmd = cli.Command{
	Name:  "keyring",
	Usage: "store the unlocking password in the OS keyring",
	Subcommands: []*cli.Command{
		{
			Name:   "save",
			Usage:  "save the password used when --password is omitted",
			Flags:  []cli.Flag{passwordFlag},
			Action: keyringSaveAction,
		},
		{
			Name:   "forget",
			Usage:  "remove the saved password",
			Action: keyringForgetAction,
		},
	},
}

// getPassword returns the --password flag, falling back to the password
// saved in the keyring for the current datadir.
func getPassword(ctx *cli.Context) string {
	if pwd := ctx.String(passwordFlagName); pwd != "" {
		return pwd
	}
	pwd, err := keyring.Get(keyringService, keyringUser())
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			log.WithError(err).Debug("failed to read password from keyring")
		}
		return ""
	}
	return pwd
}

func keyringSaveAction(ctx *cli.Context) error {
	pwd := ctx.String(passwordFlagName)
	if pwd == "" {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	a, cleanup, err := getApp(ctx.Context, pwd)
	if err != nil {
		return err
	}
	defer cleanup()

	hasPassword, err := a.Password.HasPassword(ctx.Context)
	if err != nil {
		return err
	}
	if !hasPassword {
		return fmt.Errorf("wallet password not set yet")
	}

	if err := keyring.Set(keyringService, keyringUser(), pwd); err != nil {
		return err
	}

	fmt.Println("Done")
	return nil
}

func keyringForgetAction(ctx *cli.Context) error {
	if err := keyring.Delete(keyringService, keyringUser()); err != nil &&
		!errors.Is(err, keyring.ErrNotFound) {
		return err
	}

	fmt.Println("Done")
	return nil
}

// keyringUser scopes the saved password to the datadir so that different
// wallets on the same machine don't share it.
func keyringUser() string {
	if err := config.InitConfig(); err != nil {
		return ""
	}
	return config.GetDatadir()
}
