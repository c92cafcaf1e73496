package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/th3gh0s8/aura/pkg/resolve"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		noCache       bool
		refresh       bool
		refreshClones bool
		showProgress  bool
		noPlan        bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <package>...",
		Short: "Resolve the full dependency graph for AUR packages",
		Long: `Resolve the full dependency graph for the given packages.

Every transitively required package is classified as already satisfied on
this system, installable from the official repositories, or buildable from
an AUR source tree. Buildable packages are additionally arranged into a
tiered build plan: each tier depends only on earlier tiers, so packages
within a tier can be built in parallel.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			opts := resolverOptions{
				noCache:       noCache,
				refresh:       refresh,
				refreshClones: refreshClones,
			}
			var events chan progressEvent
			if showProgress {
				events = make(chan progressEvent, 64)
				opts.events = func(format string, args ...any) {
					select {
					case events <- progressEvent{line: fmt.Sprintf(format, args...)}:
					default:
					}
				}
			}

			resolver, cleanup, err := c.newResolver(ctx, cfg, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			track := newProgress(logger)
			res, err := c.resolveWithProgress(ctx, resolver, args, events)
			if err != nil {
				return err
			}
			total := len(res.ToInstall()) + len(res.ToBuild()) + len(res.Satisfied())
			track.done(fmt.Sprintf("Resolved %d packages", total))

			printResolution(res)
			if noPlan {
				return nil
			}

			plan, err := resolve.BuildOrder(res.ToBuild())
			if err != nil {
				return err
			}
			printPlan(plan)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable metadata caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached AUR metadata")
	cmd.Flags().BoolVar(&refreshClones, "refresh-clones", false, "pull existing source trees before reading them")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "show a live progress display")
	cmd.Flags().BoolVar(&noPlan, "no-plan", false, "skip the tiered build plan")

	return cmd
}

// printResolution prints the three classified package sets.
func printResolution(res *resolve.Resolution) {
	if satisfied := res.Satisfied(); len(satisfied) > 0 {
		printSection("Already satisfied")
		fmt.Println("  " + styleSatisfied.Render(strings.Join(satisfied, "  ")))
	}

	if install := res.ToInstall(); len(install) > 0 {
		printSection("To install from the repositories")
		names := make([]string, len(install))
		for i, o := range install {
			names[i] = o.Name
		}
		fmt.Println("  " + styleInstall.Render(strings.Join(names, "  ")))
	}

	build := res.ToBuild()
	if len(build) == 0 {
		printInfo("Nothing to build")
		return
	}
	printSection("To build from the AUR")
	for _, b := range build {
		line := "  " + styleBuild.Render(b.Name)
		if len(b.Deps) > 0 {
			line += " " + StyleDim.Render(fmt.Sprintf("(%d deps)", len(b.Deps)))
		}
		fmt.Println(line)
	}
}

// printPlan prints the tiered build plan.
func printPlan(plan [][]string) {
	if len(plan) == 0 {
		return
	}
	printSection("Build plan")
	for i, tier := range plan {
		fmt.Printf("  %s %s\n",
			StyleDim.Render(fmt.Sprintf("tier %d:", i+1)),
			StyleValue.Render(strings.Join(tier, "  ")))
	}
	printDetail("packages within a tier can be built in parallel")
}
