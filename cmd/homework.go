package cmd

import (
	"errors"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/Dimaray2024/xiaona/internal/homework"
	"github.com/Dimaray2024/xiaona/internal/imaging"
	"github.com/Dimaray2024/xiaona/internal/tutor"
	"github.com/Dimaray2024/xiaona/internal/ui/components"
	"github.com/Dimaray2024/xiaona/internal/ui/theme"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze IMAGE...",
	Short: "Explain how to solve the problem in the photos",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if _, err := e.requireTutor(); err != nil {
			return err
		}

		images, err := imaging.LoadAll(args)
		if err != nil {
			return err
		}

		a, err := e.homework().Analyze(cmd.Context(), images)
		if err != nil {
			e.logger.Debug("analyze failed", "err", err)
			return errors.New(homework.UserMessage(err, homework.MsgAnalyzeFailed))
		}
		lipgloss.Println(theme.Markup.Render(tutor.Flatten(a)))
		return nil
	},
}

var gradeCmd = &cobra.Command{
	Use:   "grade IMAGE...",
	Short: "Grade finished homework and record the mistakes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if _, err := e.requireTutor(); err != nil {
			return err
		}

		images, err := imaging.LoadAll(args)
		if err != nil {
			return err
		}

		out, err := e.homework().Grade(cmd.Context(), images)
		if err != nil {
			e.logger.Debug("grade failed", "err", err)
			return errors.New(homework.UserMessage(err, homework.MsgGradeFailed))
		}

		lipgloss.Println(theme.Notice.Render(out.Message))
		if out.Warning != "" {
			lipgloss.Println(theme.Warning.Render(out.Warning))
		}
		for _, m := range out.Mistakes {
			lipgloss.Println(components.Mistake(m.Subject, m.ProblemDescription, m.ReasonForError, m.CorrectSteps, 72))
		}
		return nil
	},
}
