package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/five82/shelf/internal/app"
	"github.com/five82/shelf/internal/booktracker"
	"github.com/five82/shelf/internal/cache"
	"github.com/five82/shelf/internal/report"
	"github.com/five82/shelf/internal/shelf"
)

var (
	filterFlag   string
	sortFlag     string
	offlineFlag  bool
	todayFlag    string
	formatFlag   string
	outFlag      string
	titleFlag    string
	reportFilter string
	reportSort   string
)

func init() {
	booksCmd.Flags().StringVar(&filterFlag, "filter", "", "all, reading, completed or not-started (default from prefs)")
	booksCmd.Flags().StringVar(&sortFlag, "sort", "", "title-asc, title-desc, rating-desc, rating-asc, progress-desc or progress-asc")
	for _, c := range []*cobra.Command{booksCmd, statsCmd, paceCmd, reportCmd} {
		c.Flags().BoolVar(&offlineFlag, "offline", false, "Use the cached snapshot instead of the backend")
	}
	paceCmd.Flags().StringVar(&todayFlag, "today", "", "Anchor the streak on this day (YYYY-MM-DD)")

	reportCmd.Flags().StringVarP(&formatFlag, "format", "f", "md", "md, html, yaml or json")
	reportCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Write to this file instead of stdout")
	reportCmd.Flags().StringVar(&titleFlag, "title", "", "Report title")
	reportCmd.Flags().StringVar(&reportFilter, "filter", "", "Book filter for the listing")
	reportCmd.Flags().StringVar(&reportSort, "sort", "", "Sort order for the listing")
}

// viewResult is a derived view plus where its snapshot came from.
type viewResult struct {
	view      shelf.View
	snapshot  cache.Snapshot
	fromCache bool
}

// loadView fetches (or loads) a snapshot and derives the view. Empty filter
// and sort fall back to the saved TUI preferences.
func loadView(ctx context.Context, env *app.Env, filter, sort string, offline bool, today shelf.Day) (viewResult, error) {
	snap, fromCache, err := env.Snapshot(ctx, offline)
	if err != nil {
		return viewResult{}, err
	}
	p := env.Prefs()
	if filter == "" {
		filter = p.Filter
	}
	if sort == "" {
		sort = p.Sort
	}
	if !today.Valid() {
		today = env.Today()
	}
	view := shelf.Derive(snap.Books, snap.Sessions, shelf.Options{
		Filter: shelf.ParseFilter(filter),
		Sort:   shelf.ParseSortKey(sort),
		Today:  today,
	})
	return viewResult{view: view, snapshot: snap, fromCache: fromCache}, nil
}

func cacheNote(w io.Writer, r viewResult) {
	if r.fromCache {
		fmt.Fprintf(w, "(offline: data cached %s)\n", r.snapshot.FetchedAt.Local().Format("2006-01-02 15:04"))
	}
}

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List books with the current filter and sort",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		r, err := loadView(cmd.Context(), env, filterFlag, sortFlag, offlineFlag, "")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		cacheNote(out, r)
		if len(r.view.Books) == 0 {
			fmt.Fprintf(out, "No books match (%s).\n", r.view.Filter.Label())
			return nil
		}
		fmt.Fprintln(out, bookTable(r.view.Books))
		fmt.Fprintf(out, "%d of %d books · %s · %s\n",
			len(r.view.Books), r.view.Stats.Total, r.view.Filter.Label(), r.view.Sort.Label())
		return nil
	},
}

func bookTable(books []booktracker.Book) string {
	rows := make([][]string, 0, len(books))
	for _, b := range books {
		rows = append(rows, []string{
			strconv.FormatInt(b.ID, 10),
			b.Title,
			b.Author,
			string(b.Status),
			progressText(b),
			ratingText(b.Rating),
		})
	}
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderRow(false).
		Headers("ID", "Title", "Author", "Status", "Progress", "Rating").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String()
}

func progressText(b booktracker.Book) string {
	if b.TotalPages <= 0 {
		return "-"
	}
	return fmt.Sprintf("%3d%% %d/%d", shelf.BookProgress(b), min(max(b.PagesRead, 0), b.TotalPages), b.TotalPages)
}

func ratingText(rating int) string {
	if rating <= 0 {
		return shelf.NoData
	}
	return fmt.Sprintf("%d/5", rating)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		r, err := loadView(cmd.Context(), env, "", "", offlineFlag, "")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		cacheNote(out, r)
		s := r.view.Stats
		fmt.Fprintf(out, "Total books:   %d\n", s.Total)
		fmt.Fprintf(out, "Completed:     %d\n", s.Completed)
		fmt.Fprintf(out, "Reading:       %d\n", s.Reading)
		fmt.Fprintf(out, "Not started:   %d\n", s.NotStarted)
		fmt.Fprintf(out, "Avg. rating:   %s\n", s.AvgRating)
		fmt.Fprintf(out, "Top genre:     %s\n", s.TopGenre)
		return nil
	},
}

var paceCmd = &cobra.Command{
	Use:   "pace",
	Short: "Show reading pace, streak and daily pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		var today shelf.Day
		if todayFlag != "" {
			d, err := shelf.ParseDay(todayFlag)
			if err != nil {
				return err
			}
			today = d
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		r, err := loadView(cmd.Context(), env, "", "", offlineFlag, today)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		cacheNote(out, r)
		fmt.Fprintln(out, r.view.Pace.PaceLabel())
		fmt.Fprintln(out, r.view.Pace.StreakLabel())
		if len(r.view.Daily) == 0 {
			fmt.Fprintln(out, "No reading sessions yet.")
			return nil
		}
		fmt.Fprintln(out)
		maxPages := 0
		for _, d := range r.view.Daily {
			maxPages = max(maxPages, d.Pages)
		}
		for _, d := range r.view.Daily {
			fmt.Fprintf(out, "%s %5d %s\n", d.Day, d.Pages, dailyBar(d.Pages, maxPages, 40))
		}
		return nil
	},
}

func dailyBar(pages, maxPages, width int) string {
	if pages <= 0 || maxPages <= 0 {
		return ""
	}
	n := max(pages*width/maxPages, 1)
	return strings.Repeat("█", n)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export stats, pace and the book list as md, html, yaml or json",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		r, err := loadView(cmd.Context(), env, reportFilter, reportSort, offlineFlag, "")
		if err != nil {
			return err
		}
		rep := report.Report{
			Title:       titleFlag,
			GeneratedAt: time.Now().In(env.Config.Location()),
			FromCache:   r.fromCache,
			FetchedAt:   r.snapshot.FetchedAt.In(env.Config.Location()),
			View:        r.view,
		}

		if outFlag == "" {
			return report.Render(cmd.OutOrStdout(), format, rep)
		}
		f, err := os.Create(outFlag)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		if err := report.Render(f, format, rep); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s report to %s\n", format.Extension(), outFlag)
		return nil
	},
}
