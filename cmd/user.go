package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dimaray2024/xiaona/internal/auth"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage local accounts",
}

// prompt returns the flag value, or asks for it on the command's input.
func prompt(cmd *cobra.Command, in *bufio.Reader, flag, label string) (string, error) {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v, nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", flag, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var userRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		in := bufio.NewReader(cmd.InOrStdin())
		username, err := prompt(cmd, in, "username", "Username")
		if err != nil {
			return err
		}
		password, err := prompt(cmd, in, "password", "Password")
		if err != nil {
			return err
		}
		email, err := prompt(cmd, in, "email", "Email")
		if err != nil {
			return err
		}

		if err := e.auth.Register(cmd.Context(), strings.TrimSpace(username), password, strings.TrimSpace(email)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "注册成功！请登录。")
		return nil
	},
}

var userLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		in := bufio.NewReader(cmd.InOrStdin())
		username, err := prompt(cmd, in, "username", "Username")
		if err != nil {
			return err
		}
		password, err := prompt(cmd, in, "password", "Password")
		if err != nil {
			return err
		}

		u, err := e.auth.Login(cmd.Context(), strings.TrimSpace(username), password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", u.Username)
		return nil
	},
}

var userLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.auth.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var userWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		u, err := e.auth.Current(cmd.Context())
		if err != nil {
			return err
		}
		if u == nil {
			return auth.ErrNotLoggedIn
		}

		t := newTable("Field", "Value")
		t.AppendRow([]any{"ID", u.ID})
		t.AppendRow([]any{"Username", u.Username})
		t.AppendRow([]any{"Email", u.Email})
		t.AppendRow([]any{"Avatar", u.Avatar})
		return renderTable(cmd, cmd.OutOrStdout(), t)
	},
}

var userUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change the signed-in user's profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		cur, err := e.auth.Current(cmd.Context())
		if err != nil {
			return err
		}
		if cur == nil {
			return auth.ErrNotLoggedIn
		}

		upd := auth.Update{Avatar: cur.Avatar, Email: cur.Email}
		if cmd.Flags().Changed("avatar") {
			upd.Avatar, _ = cmd.Flags().GetString("avatar")
		}
		if cmd.Flags().Changed("email") {
			upd.Email, _ = cmd.Flags().GetString("email")
		}
		upd.Password, _ = cmd.Flags().GetString("password")

		u, err := e.auth.UpdateCurrent(cmd.Context(), upd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s.\n", u.Username)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{userRegisterCmd, userLoginCmd} {
		c.Flags().StringP("username", "u", "", "Username (prompted when empty)")
		c.Flags().StringP("password", "p", "", "Password (prompted when empty)")
	}
	userRegisterCmd.Flags().String("email", "", "Email address (prompted when empty)")

	userUpdateCmd.Flags().String("avatar", "", "Avatar image URL")
	userUpdateCmd.Flags().String("email", "", "Email address")
	userUpdateCmd.Flags().String("password", "", "New password")
	addFormatFlag(userWhoamiCmd)

	userCmd.AddCommand(userRegisterCmd)
	userCmd.AddCommand(userLoginCmd)
	userCmd.AddCommand(userLogoutCmd)
	userCmd.AddCommand(userWhoamiCmd)
	userCmd.AddCommand(userUpdateCmd)
}
