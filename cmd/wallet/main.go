package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maskwallet/walletd/internal/app"
	"github.com/maskwallet/walletd/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const passwordFlagName = "password"

var passwordFlag = &cli.StringFlag{
	Name:  passwordFlagName,
	Usage: "the password to unlock the wallet",
	Value: "",
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	a := cli.NewApp()

	a.Version = "0.1.0"
	a.Name = "wallet"
	a.Usage = "Command line interface for walletd operators. " +
		"Operates directly on the daemon's datadir, so the daemon must not be running"
	a.Commands = append(
		a.Commands,
		&genseed,
		&initwallet,
		&importwallet,
		&derive,
		&derivable,
		&list,
		&rename,
		&remove,
		&reset,
		&export,
		&sign,
		&changepassword,
		&accounts,
		&funder,
		&keyringCmd,
	)
	return a
}

// getApp builds the services out of the WALLET_* environment, the same way
// the daemon does. If not empty, the given password unlocks the wallet.
func getApp(ctx context.Context, password string) (*app.App, func(), error) {
	log.SetLevel(log.WarnLevel)
	if err := config.InitConfig(); err != nil {
		return nil, nil, err
	}

	a, err := app.New(app.Config{
		DBType:            config.GetString(config.DBTypeKey),
		DBDir:             filepath.Join(config.GetDatadir(), config.DbLocation),
		LightScrypt:       config.GetBool(config.LightScryptKey),
		MaxDeriveCount:    config.GetInt(config.MaxDeriveCountKey),
		FunderURL:         config.GetString(config.FunderURLKey),
		ChainRPCURLs:      config.GetChainRPCURLs(),
		SupportedChainIDs: config.GetSupportedChainIDs(),
		HTTPTimeout:       config.GetDuration(config.HTTPTimeoutKey),
		HTTPRateLimit:     config.GetInt(config.HTTPRateLimitKey),
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { a.Close() }

	if password != "" {
		hasPassword, err := a.Password.HasPassword(ctx)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if hasPassword {
			if err := a.Password.Unlock(ctx, password); err != nil {
				cleanup()
				return nil, nil, err
			}
		}
	}
	return a, cleanup, nil
}

func printRespJSON(resp interface{}) {
	buf, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}
	fmt.Println(string(buf))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[wallet] %v\n", err)
	}
	os.Exit(1)
}
