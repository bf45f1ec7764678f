package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/listing-loader/internal/config"
	"github.com/sells-group/listing-loader/internal/enrich"
	"github.com/sells-group/listing-loader/internal/pipeline"
	"github.com/sells-group/listing-loader/internal/store"
	"github.com/sells-group/listing-loader/pkg/google"
	"github.com/sells-group/listing-loader/pkg/yelp"
)

var (
	runTerm     string
	runLocation string
	runLimit    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search, enrich and load one batch of listings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoad(cmd, cmd.OutOrStdout())
	},
}

// addSearchFlags registers the search override flags on cmd.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runTerm, "term", "", "search term (overrides search.term)")
	cmd.Flags().StringVar(&runLocation, "location", "", "search location (overrides search.location)")
	cmd.Flags().IntVar(&runLimit, "limit", 0, "maximum results (overrides search.limit)")
}

// searchQuery merges flags that were set on cmd over the configured query.
func searchQuery(cmd *cobra.Command, base config.SearchConfig) config.SearchConfig {
	q := base
	if cmd.Flags().Changed("term") {
		q.Term = runTerm
	}
	if cmd.Flags().Changed("location") {
		q.Location = runLocation
	}
	if cmd.Flags().Changed("limit") {
		q.Limit = runLimit
	}
	return q
}

func buildPipeline(query config.SearchConfig, st store.Store) *pipeline.Pipeline {
	search := yelp.NewClient(cfg.Yelp.APIKey, yelp.WithBaseURL(cfg.Yelp.BaseURL))
	places := google.NewClient(cfg.Google.APIKey, google.WithBaseURL(cfg.Google.BaseURL))
	return pipeline.New(query, search, enrich.New(places), st)
}

func runLoad(cmd *cobra.Command, out io.Writer) error {
	ctx := cmd.Context()

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	p := buildPipeline(searchQuery(cmd, cfg.Search), st)

	result, err := p.Run(ctx)
	if err != nil {
		return eris.Wrap(err, "pipeline run")
	}

	zap.L().Info("load complete",
		zap.String("run_id", result.RunID),
		zap.Int("businesses", result.Write.Businesses),
		zap.Int("tags", result.Write.Tags),
		zap.Int("links", result.Write.Links),
	)

	// Print result JSON to stdout
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func init() {
	addSearchFlags(rootCmd)
	addSearchFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
