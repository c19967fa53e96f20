package main

import (
	"errors"
	"fmt"

	"github.com/maskwallet/walletd/internal/app"
	"github.com/urfave/cli/v2"
)

const (
	chainIDFlagName = "chain_id"
	ownerFlagName   = "owner"
	proofFlagName   = "proof"
)

var chainIDFlag = &cli.Uint64Flag{
	Name:  chainIDFlagName,
	Usage: "the chain to query",
	Value: 137,
}

var funder = cli.Command{
	Name:  "funder",
	Usage: "query the smart pay funder",
	Subcommands: []*cli.Command{
		{
			Name:      "whitelist",
			Usage:     "print the funding quota of a twitter handle",
			ArgsUsage: "<handle>",
			Action:    funderWhiteListAction,
		},
		{
			Name:  "operations",
			Usage: "list the confirmed funding operations of an owner",
			Flags: []cli.Flag{
				chainIDFlag,
				&cli.StringFlag{
					Name:  ownerFlagName,
					Usage: "the owner address",
				},
			},
			Action: funderOperationsAction,
		},
		{
			Name:  "fund",
			Usage: "submit a persona proof to get funded",
			Flags: []cli.Flag{
				chainIDFlag,
				&cli.StringFlag{
					Name:  proofFlagName,
					Usage: "the json encoded proof",
				},
			},
			Action: funderFundAction,
		},
	},
}

func getFunderApp(ctx *cli.Context) (*app.App, func(), error) {
	a, cleanup, err := getApp(ctx.Context, "")
	if err != nil {
		return nil, nil, err
	}
	if a.Funder == nil {
		cleanup()
		return nil, nil, errors.New("set funder url with WALLET_FUNDER_URL")
	}
	return a, cleanup, nil
}

func funderWhiteListAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	handle := ctx.Args().Get(0)

	a, cleanup, err := getFunderApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	printRespJSON(map[string]interface{}{
		"remain_frequency": a.Funder.GetRemainFrequency(ctx.Context, handle),
		"verified":         a.Funder.Verify(ctx.Context, handle),
	})
	return nil
}

func funderOperationsAction(ctx *cli.Context) error {
	owner := ctx.String(ownerFlagName)
	if owner == "" {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	a, cleanup, err := getFunderApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	operations, err := a.Funder.GetOperationsByOwner(
		ctx.Context, ctx.Uint64(chainIDFlagName), owner,
	)
	if err != nil {
		return err
	}

	printRespJSON(operations)
	return nil
}

func funderFundAction(ctx *cli.Context) error {
	proof := ctx.String(proofFlagName)
	if proof == "" {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	a, cleanup, err := getFunderApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := a.Funder.Fund(ctx.Context, ctx.Uint64(chainIDFlagName), proof)
	if err != nil {
		return err
	}

	fmt.Printf("funded %s with tx %s\n", res.WalletAddress, res.TxHash)
	return nil
}
