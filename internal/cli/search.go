package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// searchCommand creates the search command: full-text AUR search with an
// optional interactive picker that feeds straight into resolution.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		noCache     bool
		refresh     bool
		interactive bool
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "search <term>...",
		Short: "Search the AUR",
		Long: `Search AUR package names and descriptions.

With --interactive, the results open in a selector; confirmed packages are
resolved immediately, as if passed to 'aura resolve'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fetcher := c.newFetcher(ctx, cfg, noCache)

			results, err := fetcher.Search(ctx, args, refresh)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				printInfo("No packages match %s", strings.Join(args, " "))
				return nil
			}

			// Most-voted first, stable for equal votes.
			sort.SliceStable(results, func(i, j int) bool {
				return results[i].Votes > results[j].Votes
			})
			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}

			if !interactive {
				for _, p := range results {
					fmt.Printf("%s %s %s\n",
						StyleValue.Render(p.Name),
						styleInstall.Render(p.Version),
						StyleDim.Render(fmt.Sprintf("(%d votes)", p.Votes)))
					if p.Description != "" {
						printDetail("%s", p.Description)
					}
				}
				return nil
			}

			chosen, err := pickPackages(ctx, results)
			if err != nil {
				return err
			}
			if len(chosen) == 0 {
				printInfo("Nothing selected")
				return nil
			}

			resolver, cleanup, err := c.newResolver(ctx, cfg, resolverOptions{
				noCache: noCache,
				refresh: refresh,
			})
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := resolver.Resolve(ctx, chosen)
			if err != nil {
				return err
			}
			printResolution(res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable metadata caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached AUR metadata")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "select packages to resolve")
	cmd.Flags().IntVar(&limit, "limit", 25, "maximum results to show (0 for all)")

	return cmd
}
