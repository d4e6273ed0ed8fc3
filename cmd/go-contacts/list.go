package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/index"
	"github.com/tartampluch/go-contacts/internal/library"
)

// cardsDir returns the --dir override or the configured cards directory.
func (c *cli) cardsDir(override string) string {
	if override != "" {
		return override
	}
	return c.settings.CardsDir
}

// openIndex opens the leveldb index in the configured or default directory.
func (c *cli) openIndex() (*index.Store, error) {
	dir, err := c.settings.ResolveIndexDir()
	if err != nil {
		return nil, err
	}
	return index.Open(dir)
}

// refreshIndex scans dir and makes the index mirror the valid cards found.
func (c *cli) refreshIndex(ctx context.Context, store *index.Store, dir string) (library.Result, error) {
	res, err := library.Scan(ctx, dir)
	if err != nil {
		return res, err
	}
	if _, err := store.Replace(res.Entries); err != nil {
		return res, err
	}
	return res, nil
}

func newIndexCommand(app *cli) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   config.CmdUseIndex,
		Short: config.CmdShortIndex,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.openIndex()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			res, err := app.refreshIndex(cmd.Context(), store, app.cardsDir(dir))
			if err != nil {
				return err
			}
			// Skipped files are listed with their reason, like validate does.
			fmt.Fprintln(app.stdout, okStyle.Render(app.tr.MsgData(config.TKeyReportIndexed, map[string]any{"Count": len(res.Entries)})))
			if len(res.Skipped) > 0 {
				fmt.Fprintln(app.stdout, dimStyle.Render(app.tr.MsgData(config.TKeyReportSkipped, map[string]any{"Count": len(res.Skipped)})))
				for _, s := range res.Skipped {
					app.reportFail(s.File, s.Err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, config.FlagDir, "", config.FlagDescDir)
	return cmd
}

// newListCommand prints the valid cards as a table. The index is refreshed
// first so the listing never lags behind the directory.
func newListCommand(app *cli) *cobra.Command {
	var (
		dir   string
		month int
	)
	cmd := &cobra.Command{
		Use:   config.CmdUseList,
		Short: config.CmdShortList,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := library.ValidateMonth(month); err != nil {
				return err
			}
			store, err := app.openIndex()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if _, err := app.refreshIndex(cmd.Context(), store, app.cardsDir(dir)); err != nil {
				return err
			}
			var entries []library.Entry
			if month == config.NoMonthFilter {
				entries, err = store.List()
			} else {
				entries, err = store.ByMonth(month)
			}
			if err != nil {
				return err
			}
			// A month listing reads as "who was born this month", newest first.
			if month == config.NoMonthFilter {
				library.SortByName(entries, app.settings.Language)
			} else {
				library.SortByBirthday(entries, app.settings.Language)
			}
			app.printEntries(app.stdout, entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, config.FlagDir, "", config.FlagDescDir)
	cmd.Flags().IntVarP(&month, config.FlagMonth, "m", config.NoMonthFilter, config.FlagDescMonth)
	return cmd
}

// printEntries renders entries as an aligned table.
func (c *cli) printEntries(w io.Writer, entries []library.Entry) {
	rows := [][]string{{
		c.tr.Msg(config.TKeyColName),
		c.tr.Msg(config.TKeyColBirthday),
		c.tr.Msg(config.TKeyColAnniversary),
		c.tr.Msg(config.TKeyColProps),
		c.tr.Msg(config.TKeyColFile),
		c.tr.Msg(config.TKeyColModified),
	}}
	for _, e := range entries {
		rows = append(rows, []string{
			e.Name,
			c.dateCell(e.Birthday),
			c.dateCell(e.Anniversary),
			fmt.Sprintf("%d", e.NumProps),
			fmt.Sprintf("%s (%s)", e.File, humanize.Bytes(uint64(max(e.Size, 0)))),
			humanize.Time(e.Modified),
		})
	}

	// lipgloss.Width ignores ANSI sequences and counts wide runes correctly.
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	for r, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			style := lipgloss.NewStyle().Width(widths[i] + 2)
			if r == 0 {
				style = style.Inherit(headerStyle)
			}
			sb.WriteString(style.Render(cell))
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}
}

// dateCell quotes text dates so they stand apart from structured ones.
func (c *cli) dateCell(d library.Date) string {
	switch {
	case d.IsZero():
		return c.tr.Msg(config.TKeyNone)
	case d.Text:
		return fmt.Sprintf("%q", d.Value)
	default:
		return d.Value
	}
}
