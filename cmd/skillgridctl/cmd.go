package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"skillgrid/internal/db"
	"skillgrid/internal/models"
	"skillgrid/internal/services"

	"golang.org/x/term"
	"gorm.io/gorm"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db          *gorm.DB
	accounts    *services.AccountService
	leaderboard *services.LeaderboardService
	out         io.Writer
}

func (cli *commandLine) writer() io.Writer {
	if cli.out == nil {
		return os.Stdout
	}
	return cli.out
}

func (cli *commandLine) printUsage() {
	w := cli.writer()
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  migrate                               - create or update tables")
	fmt.Fprintln(w, "  seed                                  - insert the starter events and rewards")
	fmt.Fprintln(w, "  setrole -email EMAIL -role ROLE       - change an account role (STUDENT, FACULTY, ADMIN)")
	fmt.Fprintln(w, "  resetpassword -email EMAIL            - reset an account password")
	fmt.Fprintln(w, "  verifyemail -email EMAIL              - confirm an address without a mailed code")
	fmt.Fprintln(w, "  ranks                                 - recompute leaderboard ranks")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	setRoleCmd := flag.NewFlagSet("setrole", flag.ContinueOnError)
	setRoleEmail := setRoleCmd.String("email", "", "The account email.")
	setRoleRole := setRoleCmd.String("role", "", "STUDENT, FACULTY or ADMIN.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The account email. The password will be prompted next.")

	verifyEmailCmd := flag.NewFlagSet("verifyemail", flag.ContinueOnError)
	verifyEmailEmail := verifyEmailCmd.String("email", "", "The account email.")

	switch args[1] {
	case "migrate":
		if err := db.Migrate(cli.db); err != nil {
			return err
		}
		fmt.Fprintln(cli.writer(), "migration completed")
		return nil

	case "seed":
		return db.SeedCatalog(cli.db)

	case "setrole":
		if err := setRoleCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *setRoleEmail == "" || *setRoleRole == "" {
			setRoleCmd.Usage()
			return errHelp
		}
		usr, err := cli.accounts.SetRole(ctx, *setRoleEmail, models.Role(strings.ToUpper(*setRoleRole)))
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.writer(), "%s is now %s\n", usr.Email, usr.Role)
		return nil

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.writer(), "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.writer())
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.accounts.ResetPassword(ctx, *resetPasswordEmail, string(pwd))

	case "verifyemail":
		if err := verifyEmailCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *verifyEmailEmail == "" {
			verifyEmailCmd.Usage()
			return errHelp
		}
		usr, err := cli.accounts.MarkEmailVerified(ctx, *verifyEmailEmail)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.writer(), "%s is verified\n", usr.Email)
		return nil

	case "ranks":
		changed, err := cli.leaderboard.RefreshRanks(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.writer(), "%d ranks updated\n", changed)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}
