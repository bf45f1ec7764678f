package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/listing-loader/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts and tag usage",
	Long:  "Reports row counts for every table, links that reference a missing row, and the number of businesses linked to each tag. Tables are not created; run migrate first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stats, err := st.Stats(ctx)
		if err != nil {
			return eris.Wrap(err, "stats")
		}
		tags, err := st.Tags(ctx)
		if err != nil {
			return eris.Wrap(err, "stats")
		}
		links, err := st.Links(ctx)
		if err != nil {
			return eris.Wrap(err, "stats")
		}

		usage := tagUsage(tags, links)

		out := cmd.OutOrStdout()
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				*store.Stats
				Usage []TagCount `json:"usage"`
			}{stats, usage})
		}

		formatStats(out, stats, usage)
		return nil
	},
}

// TagCount is the number of businesses linked to one tag row.
type TagCount struct {
	ID         int64  `json:"id_tag"`
	Name       string `json:"name_tag"`
	Businesses int    `json:"businesses"`
}

// tagUsage counts links per tag, preserving tag order.
func tagUsage(tags []store.TagRow, links []store.Link) []TagCount {
	counts := make(map[int64]int, len(tags))
	for _, l := range links {
		counts[l.TagID]++
	}

	usage := make([]TagCount, 0, len(tags))
	for _, t := range tags {
		usage = append(usage, TagCount{ID: t.ID, Name: t.Name, Businesses: counts[t.ID]})
	}
	return usage
}

func formatStats(out io.Writer, stats *store.Stats, usage []TagCount) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Tags:\t%d\n", stats.Tags)
	_, _ = fmt.Fprintf(w, "Businesses:\t%d\n", stats.Businesses)
	_, _ = fmt.Fprintf(w, "Links:\t%d\n", stats.Links)
	_, _ = fmt.Fprintf(w, "Orphan links:\t%d\n", stats.OrphanLinks)
	_ = w.Flush()

	if len(usage) == 0 {
		return
	}

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTAG\tBUSINESSES")
	_, _ = fmt.Fprintln(w, "--\t---\t----------")
	for _, u := range usage {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\n", u.ID, u.Name, u.Businesses)
	}
	_ = w.Flush()
}

func init() {
	statsCmd.Flags().Bool("json", false, "print stats as JSON")
	rootCmd.AddCommand(statsCmd)
}
