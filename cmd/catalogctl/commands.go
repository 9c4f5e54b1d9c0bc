package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/medwayhorizons/healthbridge/internal/domain"
	dombatch "github.com/medwayhorizons/healthbridge/internal/domain/batch"
	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
	"github.com/medwayhorizons/healthbridge/internal/domain/csvimport"
	"github.com/medwayhorizons/healthbridge/internal/domain/query"
)

func importCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <kind> <file.csv>",
		Short: "Import records from a CSV file",
		Long: "Import records from a CSV file. Required columns per kind:\n" +
			templateHelp(),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalog.ParseKind(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[1], err)
			}
			defer f.Close()

			return a.withServices(cmd.Context(), func(s *services) error {
				results, err := s.admin.Import(cmd.Context(), kind, f)
				if err != nil {
					return err
				}
				for _, res := range results {
					if res.Status() == dombatch.StatusError {
						fmt.Fprintf(a.out, "line %d: %v\n", res.Line(), res.Err())
					}
				}
				sum := dombatch.Summarize(results)
				fmt.Fprintf(a.out, "imported %d, failed %d\n", sum.Imported, sum.Failed)
				return nil
			})
		},
	}
}

func listCmd(a *app) *cobra.Command {
	var q string
	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List records with the admin quick filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalog.ParseKind(args[0])
			if err != nil {
				return err
			}
			return a.withServices(cmd.Context(), func(s *services) error {
				recs, err := s.admin.List(cmd.Context(), kind, q)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tCITY")
				for _, rec := range recs {
					it := rec.Item(catalog.ProfileAdmin)
					fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID(), it.Name(), it.City())
				}
				fmt.Fprintf(tw, "\n%d records\n", len(recs))
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&q, "query", "q", "", "quick filter text")
	return cmd
}

func queryCmd(a *app) *cobra.Command {
	var (
		text    string
		facets  []string
		sortKey string
		visible int
	)
	cmd := &cobra.Command{
		Use:   "query <kind>",
		Short: "Preview a public listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalog.ParseKind(args[0])
			if err != nil {
				return err
			}
			key, err := query.ParseSortKey(sortKey)
			if err != nil {
				return err
			}
			sel := query.Selection{}
			for _, f := range facets {
				name, value, ok := strings.Cut(f, "=")
				if !ok {
					return fmt.Errorf("facet %q: expected name=value", f)
				}
				sel[strings.TrimSpace(name)] = strings.TrimSpace(value)
			}

			return a.withServices(cmd.Context(), func(s *services) error {
				ctx, notices := domain.NewContextWithNotices(cmd.Context())
				if visible <= 0 {
					visible, _ = s.catalog.PageSizes()
				}
				page := s.catalog.Query(ctx, kind, query.Params{
					FreeText: text,
					Facets:   sel,
					Sort:     key,
					Visible:  visible,
				})
				for _, msg := range notices.List() {
					fmt.Fprintf(a.out, "notice: %s\n", msg)
				}
				for i, it := range page.Items {
					fmt.Fprintf(a.out, "%2d. %s", i+1, it.Name())
					if it.City() != "" {
						fmt.Fprintf(a.out, " (%s)", it.City())
					}
					fmt.Fprintln(a.out)
				}
				fmt.Fprintf(a.out, "showing %d of %d", len(page.Items), page.Total)
				if page.CanShowMore {
					fmt.Fprint(a.out, ", more available")
				}
				fmt.Fprintln(a.out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&text, "q", "", "free-text search")
	cmd.Flags().StringArrayVar(&facets, "facet", nil, "facet selection name=value (repeatable)")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort key: name_asc, name_desc, city_asc, newest")
	cmd.Flags().IntVar(&visible, "visible", 0, "number of items to show (default: initial page size)")
	return cmd
}

func seedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Store the featured hospitals shown on the home page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			featured := catalog.FeaturedHospitals()
			recs := make([]catalog.Record, len(featured))
			for i, h := range featured {
				recs[i] = h
			}
			return a.withServices(cmd.Context(), func(s *services) error {
				n, err := s.admin.Seed(cmd.Context(), recs)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "seeded %d of %d featured hospitals\n", n, len(recs))
				return nil
			})
		},
	}
}

func templateHelp() string {
	var b strings.Builder
	for _, k := range catalog.Kinds() {
		fmt.Fprintf(&b, "  %-11s %s\n", k.Collection(), strings.Join(csvimport.Template(k), ","))
	}
	return b.String()
}
