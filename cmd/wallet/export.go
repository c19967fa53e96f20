package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/maskwallet/walletd/internal/core/ports"
	"github.com/urfave/cli/v2"
)

const (
	newPasswordFlagName = "new_password"
	signTypeFlagName    = "type"
	messageFlagName     = "message"
	addressFlagName     = "address"
)

var export = cli.Command{
	Name:  "export",
	Usage: "export the secret of a wallet",
	Subcommands: []*cli.Command{
		{
			Name:      "mnemonic",
			Usage:     "export the mnemonic of a wallet imported from one",
			ArgsUsage: "<address>",
			Flags:     []cli.Flag{passwordFlag},
			Action:    exportMnemonicAction,
		},
		{
			Name:      "privatekey",
			Usage:     "export the hex encoded private key of a wallet",
			ArgsUsage: "<address>",
			Flags:     []cli.Flag{passwordFlag},
			Action:    exportPrivateKeyAction,
		},
		{
			Name:      "keystore",
			Usage:     "export the key of a wallet as keystore v3 file",
			ArgsUsage: "<address>",
			Flags: []cli.Flag{
				passwordFlag,
				&cli.StringFlag{
					Name:  newPasswordFlagName,
					Usage: "the password to encrypt the keystore file with, defaults to the wallet password",
				},
			},
			Action: exportKeyStoreAction,
		},
	},
}

var sign = cli.Command{
	Name:  "sign",
	Usage: "sign a message, typed data or transaction with a wallet",
	Flags: []cli.Flag{
		passwordFlag,
		&cli.StringFlag{
			Name:  addressFlagName,
			Usage: "the address of the signing wallet",
		},
		&cli.StringFlag{
			Name:  signTypeFlagName,
			Usage: "one of message, typedData, transaction",
			Value: string(ports.SignTypeMessage),
		},
		&cli.StringFlag{
			Name:  messageFlagName,
			Usage: "the message, the typed data json or the hex encoded unsigned transaction",
		},
	},
	Action: signAction,
}

func exportMnemonicAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	pwd := getPassword(ctx)

	a, cleanup, err := getApp(ctx.Context, pwd)
	if err != nil {
		return err
	}
	defer cleanup()

	mnemonic, err := a.Wallet.ExportMnemonic(ctx.Context, ctx.Args().Get(0), pwd)
	if err != nil {
		return err
	}

	fmt.Println(mnemonic)
	return nil
}

func exportPrivateKeyAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	pwd := getPassword(ctx)

	a, cleanup, err := getApp(ctx.Context, pwd)
	if err != nil {
		return err
	}
	defer cleanup()

	key, err := a.Wallet.ExportPrivateKey(ctx.Context, ctx.Args().Get(0), pwd)
	if err != nil {
		return err
	}

	fmt.Println(key)
	return nil
}

func exportKeyStoreAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	pwd := getPassword(ctx)

	a, cleanup, err := getApp(ctx.Context, pwd)
	if err != nil {
		return err
	}
	defer cleanup()

	keystoreJSON, err := a.Wallet.ExportKeyStoreJSON(
		ctx.Context, ctx.Args().Get(0), pwd, ctx.String(newPasswordFlagName),
	)
	if err != nil {
		return err
	}

	fmt.Println(keystoreJSON)
	return nil
}

func signAction(ctx *cli.Context) error {
	address := ctx.String(addressFlagName)
	message := ctx.String(messageFlagName)
	if address == "" || message == "" {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	a, cleanup, err := getApp(ctx.Context, getPassword(ctx))
	if err != nil {
		return err
	}
	defer cleanup()

	signType := ports.SignType(ctx.String(signTypeFlagName))
	payload := []byte(message)
	if signType == ports.SignTypeTransaction {
		if payload, err = hexutil.Decode(message); err != nil {
			return fmt.Errorf("invalid transaction: %s", err)
		}
	}

	signature, err := a.Wallet.SignWithWallet(
		ctx.Context, signType, payload, address,
	)
	if err != nil {
		return err
	}

	fmt.Println(signature)
	return nil
}
