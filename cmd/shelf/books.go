package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/booktracker"
)

// bookFlags are the editable fields shared by add and update.
type bookFlags struct {
	title      string
	author     string
	genre      string
	status     string
	pagesRead  int
	totalPages int
	rating     int
	tags       string
	notes      string
	goal       string
}

func (f *bookFlags) register(fs *pflag.FlagSet, withIdentity bool) {
	if withIdentity {
		fs.StringVar(&f.title, "title", "", "Title (required)")
		fs.StringVar(&f.author, "author", "", "Author")
		fs.StringVar(&f.genre, "genre", "", "Genre")
	}
	fs.StringVar(&f.status, "status", "", "Not Started, Reading or Completed")
	fs.IntVar(&f.pagesRead, "pages", 0, "Pages read (kept only while reading)")
	fs.IntVar(&f.totalPages, "total", 0, "Total pages")
	fs.IntVar(&f.rating, "rating", 0, "Rating 1-5")
	fs.StringVar(&f.tags, "tags", "", "Comma-separated tags")
	fs.StringVar(&f.notes, "notes", "", "Notes")
	fs.StringVar(&f.goal, "goal", "", "Goal end date (YYYY-MM-DD)")
}

var (
	addFlags    bookFlags
	updateFlags bookFlags
	searchAdd   int
)

func init() {
	addFlags.register(addCmd.Flags(), true)
	updateFlags.register(updateCmd.Flags(), false)
	searchCmd.Flags().IntVar(&searchAdd, "add", 0, "Add the Nth result (1-based) to the collection")
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a book",
	RunE: func(cmd *cobra.Command, args []string) error {
		nb := booktracker.NewBook{
			Title:       addFlags.title,
			Author:      addFlags.author,
			Genre:       addFlags.genre,
			PagesRead:   addFlags.pagesRead,
			TotalPages:  addFlags.totalPages,
			Rating:      addFlags.rating,
			Tags:        addFlags.tags,
			Notes:       addFlags.notes,
			GoalEndDate: addFlags.goal,
		}
		if addFlags.status != "" {
			status, err := booktracker.ParseStatus(addFlags.status)
			if err != nil {
				return err
			}
			nb.Status = status
		}
		nb, err := nb.Normalize()
		if err != nil {
			return err
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Client.CreateBook(cmd.Context(), nb); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%s)\n", nb.Title, nb.Status)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a book's status, pages, rating, tags, notes or goal",
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
		if err := applyBookFlags(cmd.Flags(), &book, updateFlags); err != nil {
			return err
		}
		if err := env.Client.UpdateBook(cmd.Context(), id, booktracker.UpdateFromBook(book)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %q\n", book.Title)
		return nil
	},
}

// applyBookFlags copies only the flags the user set onto book.
func applyBookFlags(fs *pflag.FlagSet, book *booktracker.Book, f bookFlags) error {
	if fs.Changed("status") {
		status, err := booktracker.ParseStatus(f.status)
		if err != nil {
			return err
		}
		book.Status = status
	}
	if fs.Changed("pages") {
		book.PagesRead = f.pagesRead
	}
	if fs.Changed("total") {
		book.TotalPages = f.totalPages
	}
	if fs.Changed("rating") {
		if f.rating < 1 || f.rating > 5 {
			return fmt.Errorf("rating %d out of range 1-5: %w", f.rating, booktracker.ErrInvalidInput)
		}
		book.Rating = f.rating
	}
	if fs.Changed("tags") {
		book.Tags = f.tags
	}
	if fs.Changed("notes") {
		book.Notes = f.notes
	}
	if fs.Changed("goal") {
		book.GoalEndDate = f.goal
	}
	return nil
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a book",
	Args:    cobra.ExactArgs(1),
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

		if err := env.Client.DeleteBook(cmd.Context(), id); err != nil {
			return err
		}
		if err := env.Tracker.Forget(id); err != nil {
			env.Logger.Warn("forget session failed", zap.Int64("book_id", id), zap.Error(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted book %d\n", id)
		return nil
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate <id> <1-5>",
	Short: "Rate a completed book",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseBookID(args[0])
		if err != nil {
			return err
		}
		rating, err := parseRating(args[1])
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
		if !book.CanRate() {
			return fmt.Errorf("%q is %s; only completed books can be rated", book.Title, book.Status)
		}
		book.Rating = rating
		if err := env.Client.UpdateBook(cmd.Context(), id, booktracker.UpdateFromBook(book)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rated %q %d/5\n", book.Title, rating)
		return nil
	},
}

func parseRating(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > 5 {
		return 0, fmt.Errorf("rating %q out of range 1-5: %w", arg, booktracker.ErrInvalidInput)
	}
	return n, nil
}

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search Google Books through the backend",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.Client.Search(cmd.Context(), query)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintf(out, "No results for %q.\n", query)
			return nil
		}

		if searchAdd != 0 {
			if searchAdd < 1 || searchAdd > len(results) {
				return fmt.Errorf("--add %d out of range 1-%d", searchAdd, len(results))
			}
			nb, err := results[searchAdd-1].AsNewBook().Normalize()
			if err != nil {
				return err
			}
			if err := env.Client.CreateBook(cmd.Context(), nb); err != nil {
				return err
			}
			fmt.Fprintf(out, "Added %q by %s\n", nb.Title, orUnknown(nb.Author))
			return nil
		}

		for i, r := range results {
			fmt.Fprintf(out, "%2d. %s - %s", i+1, r.Title, orUnknown(r.Author))
			if r.Genre != "" {
				fmt.Fprintf(out, " [%s]", r.Genre)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
