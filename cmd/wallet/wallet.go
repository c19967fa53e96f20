package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

const (
	nameFlagName             = "name"
	mnemonicFlagName         = "mnemonic"
	pathFlagName             = "path"
	privateKeyFlagName       = "private_key"
	keystoreFileFlagName     = "keystore_file"
	keystorePasswordFlagName = "keystore_password"
	pageFlagName             = "page"
	pageSizeFlagName         = "page_size"
)

var nameFlag = &cli.StringFlag{
	Name:  nameFlagName,
	Usage: "the name of the wallet",
	Value: "",
}

var genseed = cli.Command{
	Name:   "genseed",
	Usage:  "generate a mnemonic seed",
	Action: genSeedAction,
}

var initwallet = cli.Command{
	Name:  "init",
	Usage: "store a mnemonic and create the wallet at the given path, setting the password on first run",
	Flags: []cli.Flag{
		nameFlag,
		passwordFlag,
		&cli.StringFlag{
			Name:  mnemonicFlagName,
			Usage: "the mnemonic to import",
		},
		&cli.StringFlag{
			Name:  pathFlagName,
			Usage: "the derivation path of the wallet",
			Value: "m/44'/60'/0'/0/0",
		},
	},
	Action: initWalletAction,
}

var importwallet = cli.Command{
	Name:  "import",
	Usage: "import a wallet from a private key or a keystore file",
	Flags: []cli.Flag{
		nameFlag,
		passwordFlag,
		&cli.StringFlag{
			Name:  privateKeyFlagName,
			Usage: "the hex encoded private key to import",
		},
		&cli.StringFlag{
			Name:  keystoreFileFlagName,
			Usage: "the path of the keystore file to import",
		},
		&cli.StringFlag{
			Name:  keystorePasswordFlagName,
			Usage: "the password of the keystore file",
		},
	},
	Action: importWalletAction,
}

var derive = cli.Command{
	Name:   "derive",
	Usage:  "derive a new wallet from the primary mnemonic",
	Flags:  []cli.Flag{nameFlag, passwordFlag},
	Action: deriveAction,
}

var derivable = cli.Command{
	Name:  "derivable",
	Usage: "preview a page of the accounts derivable from a mnemonic",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  mnemonicFlagName,
			Usage: "the mnemonic to derive accounts from",
		},
		&cli.IntFlag{
			Name:  pageFlagName,
			Usage: "the page number, starting from 0",
		},
		&cli.IntFlag{
			Name:  pageSizeFlagName,
			Usage: "the number of accounts per page",
			Value: 10,
		},
	},
	Action: derivableAction,
}

var list = cli.Command{
	Name:   "list",
	Usage:  "list all wallets",
	Action: listAction,
}

var rename = cli.Command{
	Name:      "rename",
	Usage:     "rename a wallet",
	ArgsUsage: "<address> <name>",
	Action:    renameAction,
}

var remove = cli.Command{
	Name:      "remove",
	Usage:     "remove an imported wallet",
	ArgsUsage: "<address>",
	Flags:     []cli.Flag{passwordFlag},
	Action:    removeAction,
}

var reset = cli.Command{
	Name:   "reset",
	Usage:  "remove all wallets and the password",
	Flags:  []cli.Flag{passwordFlag},
	Action: resetAction,
}

func genSeedAction(ctx *cli.Context) error {
	a, cleanup, err := getApp(ctx.Context, "")
	if err != nil {
		return err
	}
	defer cleanup()

	words, err := a.Wallet.CreateMnemonicWords()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(strings.Join(words, " "))

	return nil
}

func initWalletAction(ctx *cli.Context) error {
	mnemonic := ctx.String(mnemonicFlagName)
	if mnemonic == "" {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	pwd := getPassword(ctx)

	a, cleanup, err := getApp(ctx.Context, pwd)
	if err != nil {
		return err
	}
	defer cleanup()

	w, err := a.Wallet.RecoverWalletFromMnemonic(
		ctx.Context, ctx.String(nameFlagName), mnemonic,
		ctx.String(pathFlagName), pwd,
	)
	if err != nil {
		return err
	}

	printRespJSON(w)
	return nil
}

func importWalletAction(ctx *cli.Context) error {
	privateKey := ctx.String(privateKeyFlagName)
	keystoreFile := ctx.String(keystoreFileFlagName)
	if (privateKey == "") == (keystoreFile == "") {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	pwd := getPassword(ctx)

	a, cleanup, err := getApp(ctx.Context, pwd)
	if err != nil {
		return err
	}
	defer cleanup()

	name := ctx.String(nameFlagName)
	if privateKey != "" {
		w, err := a.Wallet.RecoverWalletFromPrivateKey(
			ctx.Context, name, privateKey, pwd,
		)
		if err != nil {
			return err
		}
		printRespJSON(w)
		return nil
	}

	buf, err := os.ReadFile(keystoreFile)
	if err != nil {
		return err
	}
	w, err := a.Wallet.RecoverWalletFromKeyStoreJSON(
		ctx.Context, name, string(buf), ctx.String(keystorePasswordFlagName),
	)
	if err != nil {
		return err
	}

	printRespJSON(w)
	return nil
}

func deriveAction(ctx *cli.Context) error {
	a, cleanup, err := getApp(ctx.Context, getPassword(ctx))
	if err != nil {
		return err
	}
	defer cleanup()

	w, err := a.Wallet.DeriveWallet(ctx.Context, ctx.String(nameFlagName))
	if err != nil {
		return err
	}

	printRespJSON(w)
	return nil
}

func derivableAction(ctx *cli.Context) error {
	mnemonic := ctx.String(mnemonicFlagName)
	if mnemonic == "" {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	a, cleanup, err := getApp(ctx.Context, "")
	if err != nil {
		return err
	}
	defer cleanup()

	accounts, err := a.Wallet.GetDerivableAccounts(
		ctx.Context, mnemonic, ctx.Int(pageFlagName), ctx.Int(pageSizeFlagName),
	)
	if err != nil {
		return err
	}

	printRespJSON(accounts)
	return nil
}

func listAction(ctx *cli.Context) error {
	a, cleanup, err := getApp(ctx.Context, "")
	if err != nil {
		return err
	}
	defer cleanup()

	wallets, err := a.Wallet.GetWallets(ctx.Context)
	if err != nil {
		return err
	}

	printRespJSON(wallets)
	return nil
}

func renameAction(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	a, cleanup, err := getApp(ctx.Context, "")
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.Wallet.RenameWallet(
		ctx.Context, ctx.Args().Get(0), ctx.Args().Get(1),
	); err != nil {
		return err
	}

	fmt.Println("Done")
	return nil
}

func removeAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	pwd := getPassword(ctx)

	a, cleanup, err := getApp(ctx.Context, pwd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.Wallet.RemoveWallet(ctx.Context, ctx.Args().Get(0), pwd); err != nil {
		return err
	}

	fmt.Println("Done")
	return nil
}

func resetAction(ctx *cli.Context) error {
	pwd := getPassword(ctx)

	a, cleanup, err := getApp(ctx.Context, pwd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.Wallet.Reset(ctx.Context, pwd); err != nil {
		return err
	}

	fmt.Println("Done")
	return nil
}
