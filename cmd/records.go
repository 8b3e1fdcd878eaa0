package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tabsync/tabsync/internal/model1"
	"github.com/tabsync/tabsync/internal/render"
)

// errFetchFailed is returned once the failure was already reported.
var errFetchFailed = errors.New("fetch failed")

// queryFlags selects the records page of a table command.
type queryFlags struct {
	page       int
	order      string
	filter     string
	group      string
	duplicates string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVarP(&f.page, "page", "p", 1, "Page number, starting at 1")
	fl.StringVarP(&f.order, "sort", "s", "", "Sort order, e.g. title:desc,id")
	fl.StringVar(&f.filter, "filter", "", `Filter expression as JSON, e.g. {"equal":[{"column_name":["id"]},{"literal":[1]}]}`)
	fl.StringVar(&f.group, "group", "", "Group by columns, e.g. center or center:percentile:5")
	fl.StringVar(&f.duplicates, "duplicates", "", "Only records duplicated on these columns, comma separated")
}

func (f *queryFlags) options() (*model1.Options, error) {
	order, err := model1.ParseSort(f.order)
	if err != nil {
		return nil, err
	}
	filter, err := model1.CompactFilter(f.filter)
	if err != nil {
		return nil, err
	}
	grouping, err := model1.ParseGrouping(f.group)
	if err != nil {
		return nil, err
	}

	return &model1.Options{
		Page:          f.page,
		Sort:          order,
		Filter:        filter,
		Grouping:      grouping,
		DuplicateOnly: model1.SplitColumns(f.duplicates),
	}, nil
}

func newRecordsCmd() *cobra.Command {
	var (
		qf    queryFlags
		pages int
		width int
	)

	cmd := &cobra.Command{
		Use:   "records TABLE",
		Short: "Print a page of records",
		Long:  "Print a page of records of TABLE, given as source/id or as an alias.",
		Args:  cobra.ExactArgs(1),
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

			e := s.cache.GetTable(ref.Source, ref.Table, o)
			cols, recs, err := e.Settled(ctx)
			if err != nil {
				return err
			}
			if cols.Status == model1.Error {
				s.log.Warn("Columns unavailable", "table", ref, "err", cols.Error)
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			for i := 1; ; i++ {
				if err := printPage(out, errOut, cols.Columns, recs, e.Options.Get(), width); err != nil {
					return err
				}
				cur := e.Options.Get()
				if i >= pages || cur.Page >= cur.PageCount(recs.TotalCount) {
					return nil
				}

				e.SetPage(cur.Page + 1)
				s.cache.FetchTableRecords(ref.Source, ref.Table)
				if recs, err = e.RecordsSettled(ctx); err != nil {
					return err
				}
			}
		},
	}
	qf.register(cmd)
	cmd.Flags().IntVar(&pages, "pages", 1, "Number of consecutive pages to print")
	cmd.Flags().IntVar(&width, "width", render.DefaultMaxWidth, "Truncate cells wider than this, negative to disable")

	return cmd
}

// printPage prints one settled records page, or its failure.
func printPage(out, errOut io.Writer, cols model1.Columns, rs model1.RecordState, o model1.Options, width int) error {
	if rs.Status == model1.Error {
		fmt.Fprintln(errOut, render.Summary(rs, o))
		return errFetchFailed
	}
	if err := render.Records(out, cols, rs.Rows, width); err != nil {
		return err
	}
	if rs.Grouping != nil {
		if err := render.Groups(out, rs.Grouping, width); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, render.Summary(rs, o))

	return nil
}

func newColumnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns TABLE",
		Short: "Print the columns of a table",
		Args:  cobra.ExactArgs(1),
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

			e := s.cache.GetTable(ref.Source, ref.Table, nil)
			cols, _, err := e.Settled(ctx)
			if err != nil {
				return err
			}
			if cols.Status == model1.Error {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", render.Missing(cols.Error))
				return errFetchFailed
			}

			return render.Columns(cmd.OutOrStdout(), cols.Columns)
		},
	}
}
