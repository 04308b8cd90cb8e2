package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/shelf/internal/booktracker"
)

var sessionPages int

func init() {
	sessionStartCmd.Flags().IntVar(&sessionPages, "pages", 0, "Pages read when starting (default: the book's current count)")
	sessionStopCmd.Flags().IntVar(&sessionPages, "pages", 0, "Pages read when stopping (default: the book's current count)")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionStopCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start or stop reading sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start <bookID>",
	Short: "Start a reading session for a book being read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseBookID(args[0])
		if err != nil {
			return err
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		book, err := env.FindBook(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !book.CanStartSession() {
			return fmt.Errorf("%q is %s: %w", book.Title, book.Status, booktracker.ErrNotReading)
		}
		if cmd.Flags().Changed("pages") {
			book.PagesRead = sessionPages
		}

		s, err := env.Tracker.Start(cmd.Context(), book)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Started reading %q at page %d\n", book.Title, s.StartPagesRead)
		return nil
	},
}

var sessionStopCmd = &cobra.Command{
	Use:   "stop <bookID>",
	Short: "Stop the open reading session for a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseBookID(args[0])
		if err != nil {
			return err
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		book, err := env.FindBook(cmd.Context(), id)
		if err != nil {
			return err
		}
		end := book.PagesRead
		if cmd.Flags().Changed("pages") {
			end = sessionPages
		}
		if end < 0 || (book.TotalPages > 0 && end > book.TotalPages) {
			return fmt.Errorf("pages %d out of range 0-%d: %w", end, book.TotalPages, booktracker.ErrInvalidInput)
		}

		s, err := env.Tracker.Stop(cmd.Context(), book, end)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stopped reading %q (+%d pages)\n", book.Title, max(end-s.StartPagesRead, 0))
		return nil
	},
}
