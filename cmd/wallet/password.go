package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const curPwdFlagName = "current_password"

var changepassword = cli.Command{
	Name:  "changepassword",
	Usage: "change the password to unlock the wallet",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  curPwdFlagName,
			Usage: "the old unlocking password to be changed",
			Value: "",
		},
		&cli.StringFlag{
			Name:  newPasswordFlagName,
			Usage: "the new password that replaces the old one",
			Value: "",
		},
	},
	Action: changePasswordAction,
}

func changePasswordAction(ctx *cli.Context) error {
	curPwd := ctx.String(curPwdFlagName)
	newPwd := ctx.String(newPasswordFlagName)
	if curPwd == "" || newPwd == "" {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	a, cleanup, err := getApp(ctx.Context, "")
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.Password.ChangePassword(ctx.Context, curPwd, newPwd); err != nil {
		return err
	}

	fmt.Println("Done")
	return nil
}
