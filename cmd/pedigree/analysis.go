package main

import (
	"time"

	"github.com/spf13/cobra"

	"pedigreecore/internal/pedigree"
)

func (a *app) treeCommand() *cobra.Command {
	var generations int
	cmd := &cobra.Command{
		Use:   "tree <id>",
		Short: "Print the nested ancestor tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.svc.AncestorTree(cmd.Context(), args[0], generations)
			if err != nil {
				return err
			}
			return a.printJSON(tree)
		},
	}
	cmd.Flags().IntVarP(&generations, "generations", "g", 0, "generations to walk (0 uses the configured default)")
	return cmd
}

func (a *app) pedigreeCommand() *cobra.Command {
	var generations int
	cmd := &cobra.Command{
		Use:   "pedigree <id>",
		Short: "Print the pedigree chart with matrix and completeness",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, err := a.svc.Pedigree(cmd.Context(), args[0], generations)
			if err != nil {
				return err
			}
			return a.printJSON(chart)
		},
	}
	cmd.Flags().IntVarP(&generations, "generations", "g", 0, "generations to chart (0 uses the configured default)")
	return cmd
}

func (a *app) coiCommand() *cobra.Command {
	var generations int
	cmd := &cobra.Command{
		Use:   "coi <id>",
		Short: "Compute the coefficient of inbreeding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.svc.Inbreeding(cmd.Context(), args[0], generations)
			if err != nil {
				return err
			}
			return a.printJSON(result)
		},
	}
	cmd.Flags().IntVarP(&generations, "generations", "g", 0, "generations searched for common ancestors (0 uses the configured default)")
	return cmd
}

func (a *app) reportCommand() *cobra.Command {
	var (
		generations, coiGenerations int
		store                       bool
	)
	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Build a full pedigree report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.svc.Report(cmd.Context(), args[0], generations, coiGenerations)
			if err != nil {
				return err
			}
			if store {
				entry, err := a.svc.ArchiveReport(cmd.Context(), report)
				if err != nil {
					return err
				}
				a.logger.Info("report archived", "key", entry.Key, "size", entry.Size)
			}
			return a.printJSON(report)
		},
	}
	cmd.Flags().IntVarP(&generations, "generations", "g", 0, "chart generations (0 uses the configured default)")
	cmd.Flags().IntVar(&coiGenerations, "coi-generations", 0, "COI generations (0 uses the configured default)")
	cmd.Flags().BoolVar(&store, "archive", false, "also write the report to the archive")
	return cmd
}

func (a *app) batchCommand() *cobra.Command {
	var generations, coiGenerations, concurrency int
	cmd := &cobra.Command{
		Use:   "batch <id>...",
		Short: "Build reports for several individuals and summarise them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.svc.BatchReports(cmd.Context(), args, generations, coiGenerations, concurrency)
			if err != nil {
				return err
			}
			return a.printJSON(result)
		},
	}
	cmd.Flags().IntVarP(&generations, "generations", "g", 0, "chart generations (0 uses the configured default)")
	cmd.Flags().IntVar(&coiGenerations, "coi-generations", 0, "COI generations (0 uses the configured default)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "reports built in parallel (0 uses the configured limit)")
	return cmd
}

func (a *app) relativesCommand() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "relatives <id>",
		Short: "List siblings, half-siblings and offspring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := pedigree.ParseRelationKind(kind)
			if err != nil {
				return err
			}
			list, err := a.svc.Relatives(cmd.Context(), args[0], k)
			if err != nil {
				return err
			}
			return a.printJSON(list)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(pedigree.RelationAll), "all, siblings, half-siblings or offspring")
	return cmd
}

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise the registered population",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.svc.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(stats)
		},
	}
}

func (a *app) archiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect archived reports",
	}

	list := &cobra.Command{
		Use:   "list <id>",
		Short: "List archived reports for an individual, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.svc.ArchivedReports(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(entries)
		},
	}

	show := &cobra.Command{
		Use:   "show <key>",
		Short: "Print an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.svc.LoadArchivedReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(report)
		},
	}

	var expiry time.Duration
	url := &cobra.Command{
		Use:   "url <key>",
		Short: "Print a link to an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := a.svc.ArchivedReportURL(cmd.Context(), args[0], expiry)
			if err != nil {
				return err
			}
			return a.printJSON(map[string]string{"key": args[0], "url": link})
		},
	}
	url.Flags().DurationVar(&expiry, "expiry", 0, "lifetime of presigned links (0 uses the store default)")

	cmd.AddCommand(list, show, url)
	return cmd
}
