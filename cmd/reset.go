package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every recorded mistake",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n := e.mistakes.Len()
		if !force {
			fmt.Fprintf(cmd.OutOrStdout(), "This deletes %d mistake(s) from %s. Type \"yes\" to continue: ", n, e.dbPath)
			var answer string
			fmt.Fscanln(cmd.InOrStdin(), &answer)
			if strings.TrimSpace(strings.ToLower(answer)) != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		if err := e.mistakes.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d mistake(s).\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("force", "f", false, "Do not ask for confirmation")
}
