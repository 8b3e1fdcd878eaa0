package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tabsync/tabsync/internal/model1"
	"github.com/tabsync/tabsync/internal/render"
)

func newWatchCmd() *cobra.Command {
	var qf queryFlags

	cmd := &cobra.Command{
		Use:   "watch TABLE",
		Short: "Refresh a page of records and print what changed",
		Long: "Refresh the columns and a page of records of TABLE at the refresh rate. " +
			"The first page is printed in full, then every change is printed as JSON patch " +
			"operations. A schema change prints the page in full again.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			s, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			ref, err := s.aliases.Resolve(args[0])
			if err != nil {
				return err
			}
			o, err := qf.options()
			if err != nil {
				return err
			}

			states := make(chan model1.RecordState, 16)
			e := s.cache.GetTable(ref.Source, ref.Table, o)
			unsub := e.Records.Subscribe(func(rs model1.RecordState) {
				if !rs.Settled() {
					return
				}
				select {
				case states <- rs:
				default:
					s.log.Warn("Dropped record update", "table", ref)
				}
			})
			defer unsub()

			rate := s.cfg.Tabsync.GetRefreshRate()
			s.log.Info("Watching", "table", ref, "every", rate)
			ticker := time.NewTicker(rate)
			defer ticker.Stop()

			w := watcher{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					s.cache.FetchTableColumns(ref.Source, ref.Table)
					s.cache.FetchTableRecords(ref.Source, ref.Table)
				case rs := <-states:
					if err := w.show(rs, e.Columns.Get().Columns, e.Options.Get()); err != nil {
						return err
					}
				}
			}
		},
	}
	qf.register(cmd)

	return cmd
}

// watcher prints successive record states.
type watcher struct {
	out, errOut io.Writer
	prev        model1.Rows
	cols        model1.Columns
	at          time.Time
	seen        bool
}

func (w *watcher) show(rs model1.RecordState, cols model1.Columns, o model1.Options) error {
	if rs.Status == model1.Error {
		fmt.Fprintln(w.errOut, render.Summary(rs, o))
		return nil
	}

	if !w.seen || w.cols.Diff(cols) {
		if w.seen {
			fmt.Fprintf(w.out, "%s columns changed\n", time.Now().Format(time.TimeOnly))
		}
		w.seen, w.prev, w.cols, w.at = true, rs.Rows, cols.Clone(), time.Now()
		if err := render.Records(w.out, cols, rs.Rows, render.DefaultMaxWidth); err != nil {
			return err
		}
		fmt.Fprintln(w.out, render.Summary(rs, o))
		return nil
	}

	patch, err := model1.RowsPatch(w.prev, rs.Rows)
	if err != nil {
		return fmt.Errorf("failed to diff records: %w", err)
	}
	w.prev = rs.Rows
	if len(patch) == 0 {
		return nil
	}

	fmt.Fprintf(w.out, "%s %d change(s) in %s, %s\n",
		time.Now().Format(time.TimeOnly), len(patch), render.ToAge(w.at), render.Summary(rs, o))
	w.at = time.Now()
	for _, op := range patch {
		raw, err := json.Marshal(op)
		if err != nil {
			return err
		}
		fmt.Fprintf(w.out, "  %s\n", raw)
	}

	return nil
}
