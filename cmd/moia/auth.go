package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"moia/internal/account"
	"moia/internal/i18n"
)

// promptLine reads one visible line from stdin.
func promptLine(label string) (string, error) {
	fmt.Print(label + " ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a line without echo when stdin is a terminal.
func promptSecret(label string) (string, error) {
	fmt.Print(label + " ")
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLineRaw()
	}
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func promptLineRaw() (string, error) {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func newLoginCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer res.Close()

			email, err := promptLine(i18n.T("auth.email"))
			if err != nil {
				return err
			}
			password, err := promptSecret(i18n.T("auth.password"))
			if err != nil {
				return err
			}

			if err := res.Accounts.Login(context.Background(), email, password); err != nil {
				return err
			}
			fmt.Println(i18n.T("auth.logged_in", email))
			return nil
		},
	}
}

func newRegisterCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer res.Close()

			form := account.RegisterForm{}
			if form.Username, err = promptLine(i18n.T("auth.username")); err != nil {
				return err
			}
			if form.Email, err = promptLine(i18n.T("auth.email")); err != nil {
				return err
			}
			if form.Password, err = promptSecret(i18n.T("auth.password")); err != nil {
				return err
			}
			if form.ConfirmPassword, err = promptSecret(i18n.T("auth.confirm_password")); err != nil {
				return err
			}
			if form.SecurityPhrase, err = promptLine(i18n.T("auth.phrase")); err != nil {
				return err
			}

			if err := res.Accounts.Register(context.Background(), form); err != nil {
				return err
			}
			fmt.Println(i18n.T("auth.registered", form.Email))
			return nil
		},
	}
}

func newPasswordCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "password",
		Short: "Change a password via the security-phrase wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer res.Close()

			identifier, err := promptLine(i18n.T("auth.email"))
			if err != nil {
				return err
			}
			phrase, err := promptLine(i18n.T("auth.phrase"))
			if err != nil {
				return err
			}
			newPassword, err := promptSecret(i18n.T("auth.password"))
			if err != nil {
				return err
			}

			if err := res.Accounts.ChangePassword(context.Background(), identifier, phrase, newPassword); err != nil {
				return err
			}
			fmt.Println("password updated")
			return nil
		},
	}
}

func newLogoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer res.Close()

			if err := res.Accounts.Logout(); err != nil {
				return err
			}
			fmt.Println(i18n.T("auth.logged_out"))
			return nil
		},
	}
}
