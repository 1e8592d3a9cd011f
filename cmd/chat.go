package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/Dimaray2024/xiaona/internal/chat"
	"github.com/Dimaray2024/xiaona/internal/imaging"
	"github.com/Dimaray2024/xiaona/internal/ui/theme"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk with the tutor in the terminal",
	Long: `Starts a chat session on standard input. Type a question and press
Enter. A line starting with /img attaches photos to the next question;
/quit ends the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		tut, err := e.requireTutor()
		if err != nil {
			return err
		}

		var pending []imaging.Image
		if paths, _ := cmd.Flags().GetStringSlice("image"); len(paths) > 0 {
			if pending, err = imaging.LoadAll(paths); err != nil {
				return err
			}
		}

		conv := chat.New(tut, e.compressor, chat.WithLogger(e.logger))
		out := cmd.OutOrStdout()
		lipgloss.Fprintln(out, theme.Markup.Render(conv.Messages()[0].Text))

		in := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "\n> ")
			if !in.Scan() {
				return in.Err()
			}
			line := strings.TrimSpace(in.Text())

			switch {
			case line == "/quit" || line == "/exit":
				return nil
			case strings.HasPrefix(line, "/img "):
				imgs, err := imaging.LoadAll(imaging.SplitPaths(strings.TrimPrefix(line, "/img ")))
				if err != nil {
					fmt.Fprintln(out, "读取图片失败：", err)
					continue
				}
				pending = append(pending, imgs...)
				fmt.Fprintf(out, "已添加 %d 张图片\n", len(pending))
				continue
			}

			reply, err := conv.Send(cmd.Context(), line, pending)
			if errors.Is(err, chat.ErrEmptyMessage) {
				fmt.Fprintln(out, err)
				continue
			}
			if err != nil {
				return err
			}
			pending = nil
			lipgloss.Fprintln(out, "\n"+theme.Markup.Render(reply.Text))
		}
	},
}

func init() {
	chatCmd.Flags().StringSlice("image", nil, "Photo to attach to the first question (repeatable)")
}
