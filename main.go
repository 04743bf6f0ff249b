package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"mixesdbsync/internal/config"
	"mixesdbsync/internal/database"
	"mixesdbsync/internal/logging"
	"mixesdbsync/internal/matcher"
	"mixesdbsync/internal/mixesdb"
	"mixesdbsync/internal/models"
	"mixesdbsync/internal/spotify"
	"mixesdbsync/internal/syncer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "mixesdbsync",
		Short:         "Sync DJ set tracklists from MixesDB to Spotify playlists",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs and match alternatives")

	root.AddCommand(newSyncCommand(&verbose))
	root.AddCommand(newFetchCommand())
	root.AddCommand(newSearchCommand(&verbose))
	root.AddCommand(newAuthCommand())
	return root
}

func newSyncCommand(verbose *bool) *cobra.Command {
	var (
		name     string
		private  bool
		dryRun   bool
		minScore float64
	)

	cmd := &cobra.Command{
		Use:   "sync <mixesdb-url>",
		Short: "Sync a MixesDB tracklist to a Spotify playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("min-score") {
				cfg.MinScore = minScore
			}

			logger := logging.New(*verbose)
			ctx := cmd.Context()

			api, err := spotify.NewClient(ctx, cfg.Spotify, cfg.TokenPath())
			if err != nil {
				return err
			}
			catalog := spotify.New(api, logger)

			registry := openRegistry(cfg, logger)
			if registry != nil {
				defer registry.Close()
			}

			matcherCfg := cfg.Matcher()
			matcherCfg.CollectAlternatives = *verbose
			if err := matcherCfg.Validate(); err != nil {
				return err
			}

			engine := syncer.NewEngine(
				mixesdb.NewClient(),
				catalog,
				syncer.NewFinder(catalog, matcherCfg, logger),
				registry,
				logger,
			)

			result, err := engine.Sync(ctx, args[0], syncer.Options{
				PlaylistName:   name,
				Public:         cfg.PlaylistPublic && !private,
				DryRun:         dryRun,
				UpdateExisting: cfg.UpdateExisting,
				PlaylistPrefix: cfg.PlaylistPrefix,
			})
			if err != nil {
				return err
			}

			printSyncResult(result, *verbose, dryRun)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Custom playlist name")
	cmd.Flags().BoolVar(&private, "private", false, "Create a private playlist")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Preview matches without creating a playlist")
	cmd.Flags().Float64VarP(&minScore, "min-score", "s", 90, "Minimum match score (0-100)")
	return cmd
}

func newFetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <mixesdb-url>",
		Short: "Fetch and display a MixesDB tracklist (no Spotify required)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mix, err := mixesdb.NewClient().FetchMix(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Println(mix.Title)
			fmt.Printf("Tracks: %d\n", len(mix.Tracks))
			if len(mix.Categories) > 0 {
				fmt.Println("Categories:", strings.Join(mix.Categories, ", "))
			}
			fmt.Println()

			rows := make([][]string, 0, len(mix.Tracks))
			for _, t := range mix.Tracks {
				version := ""
				if desc, err := matcher.Parse(t.Raw()); err == nil {
					if desc.Remix != nil {
						version = desc.Remix.String()
					}
					if desc.IsRemaster {
						version = trimJoin(version, "Remaster")
					}
				}
				rows = append(rows, []string{
					fmt.Sprint(t.Position), t.Artist, t.Title, version, t.Label,
				})
			}
			fmt.Println(renderTable(
				[]string{"#", "Artist", "Title", "Version", "Label"},
				rows,
				[]text.Align{text.AlignRight},
			))

			if mix.SpotifyURL != "" {
				fmt.Println("Spotify:", mix.SpotifyURL)
			}
			if mix.SoundCloudURL != "" {
				fmt.Println("SoundCloud:", mix.SoundCloudURL)
			}
			return nil
		},
	}
}

func newSearchCommand(verbose *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <artist> <title>",
		Short: "Test track search and scoring against Spotify",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New(*verbose)
			ctx := cmd.Context()

			api, err := spotify.NewClient(ctx, cfg.Spotify, cfg.TokenPath())
			if err != nil {
				return err
			}
			catalog := spotify.New(api, logger)

			matcherCfg := cfg.Matcher()
			matcherCfg.CollectAlternatives = true
			finder := syncer.NewFinder(catalog, matcherCfg, logger)

			entry := models.MixTrack{Position: 1, Artist: args[0], Title: args[1]}
			match, err := finder.FindMatch(ctx, entry)
			if err != nil {
				return err
			}

			fmt.Printf("Query: %s\n\n", entry.Raw())
			if match.Matched() {
				fmt.Printf("Match (%s, %.0f%%, via %s): %s\n",
					match.Confidence(), match.Result.TotalScore, match.Strategy, match.Candidate)
				c := match.Result.Components
				fmt.Printf("Components: artist %.0f, title %.0f, remix %.0f\n", c.Artist, c.Title, c.Remix)
			} else {
				fmt.Printf("No match (best %.0f%%)\n", match.Result.TotalScore)
			}
			printAlternatives(match.Alternatives)
			return nil
		},
	}
	return cmd
}

func newAuthCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Spotify",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if force {
				if err := os.Remove(cfg.TokenPath()); err == nil {
					fmt.Println("Cleared existing token cache")
				}
			}

			ctx := cmd.Context()
			logger := logging.New(false)

			api, err := spotify.NewClient(ctx, cfg.Spotify, cfg.TokenPath())
			if err != nil {
				api, err = spotify.Login(ctx, cfg.Spotify, cfg.TokenPath())
				if err != nil {
					return err
				}
			}

			id, displayName, err := spotify.New(api, logger).CurrentUser(ctx)
			if err != nil {
				return err
			}
			fmt.Println("Authenticated as:", displayName)
			fmt.Println("User ID:", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Force re-authentication")
	return cmd
}

func openRegistry(cfg config.Config, logger *slog.Logger) *sql.DB {
	registry, err := database.Open(cfg.RegistryPath())
	if err != nil {
		// The registry is an optimization; sync works without it.
		logger.Warn("match registry unavailable", "err", err)
		return nil
	}
	return registry
}

func printSyncResult(result syncer.Result, verbose, dryRun bool) {
	fmt.Println()

	if len(result.Matched) > 0 {
		rows := make([][]string, 0, len(result.Matched))
		for _, m := range result.Matched {
			spotifyCol := "(cached)"
			if !m.FromCache {
				spotifyCol = m.Candidate.String()
			}
			rows = append(rows, []string{
				fmt.Sprint(m.Entry.Position),
				m.Entry.Raw(),
				spotifyCol,
				fmt.Sprintf("%.0f%% %s", m.Result.TotalScore, m.Confidence()),
			})
		}
		fmt.Println(renderTable(
			[]string{"#", "MixesDB", "Spotify", "Score"},
			rows,
			[]text.Align{text.AlignRight, text.AlignLeft, text.AlignLeft, text.AlignRight},
		))
	}

	if len(result.Unmatched) > 0 {
		fmt.Println("\nUnmatched tracks:")
		for _, m := range result.Unmatched {
			fmt.Printf("  %d. %s\n", m.Entry.Position, m.Entry.Raw())
			if verbose {
				printAlternatives(m.Alternatives)
			}
		}
	}

	fmt.Printf("\nSummary: %d/%d tracks matched (%.0f%%)\n",
		len(result.Matched), result.TotalTracks(), result.MatchRate()*100)

	switch {
	case dryRun:
		fmt.Println("Dry run - no playlist created")
	case result.Playlist != nil:
		fmt.Println("Playlist:", result.Playlist.URL)
	}
}

func printAlternatives(alts []syncer.Alternative) {
	if len(alts) == 0 {
		return
	}
	fmt.Println("    Alternatives:")
	for i, alt := range alts {
		if i == 3 {
			break
		}
		fmt.Printf("      - %s (%.0f%%)\n", alt.Track.String(), alt.Score)
	}
}

func renderTable(headers []string, rows [][]string, aligns []text.Align) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(aligns))
	for i, a := range aligns {
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: a})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func trimJoin(a, b string) string {
	if a == "" {
		return b
	}
	return a + ", " + b
}

