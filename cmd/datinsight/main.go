// Package main provides the datinsight CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/gauthierbraillon/datinsight/internal/analysis"
	"github.com/gauthierbraillon/datinsight/internal/config"
	"github.com/gauthierbraillon/datinsight/internal/display"
	"github.com/gauthierbraillon/datinsight/internal/feed"
	"github.com/gauthierbraillon/datinsight/internal/logging"
	"github.com/gauthierbraillon/datinsight/internal/profile"
	"github.com/gauthierbraillon/datinsight/internal/remote"
	"github.com/gauthierbraillon/datinsight/internal/server"
	"github.com/gauthierbraillon/datinsight/internal/service"
	"github.com/gauthierbraillon/datinsight/pkg/browser"
)

// commandTimeout bounds one CLI operation end to end.
const commandTimeout = 90 * time.Second

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	cfgFile   string
	mock      bool
	remoteURL string
	noColor   bool
	jsonOut   bool
	open      int
}

// app is what a subcommand needs, built from configuration on demand.
type app struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	flags   *globalFlags
}

func loadApp(cmd *cobra.Command, flags *globalFlags) (*app, error) {
	cfg, path, err := config.Load(flags.cfgFile)
	if err != nil {
		return nil, err
	}
	if flags.mock {
		cfg.UseMock = true
	}
	if flags.remoteURL != "" {
		cfg.Remote.BaseURL = flags.remoteURL
	}
	return &app{
		cfg:     cfg,
		cfgPath: path,
		logger:  logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format),
		flags:   flags,
	}, nil
}

// api returns the remote client when a server is configured, otherwise an
// in-process service.
func (a *app) api() (service.API, error) {
	if a.cfg.Remote.BaseURL != "" {
		return remote.NewClient(a.cfg.Remote.BaseURL)
	}
	return service.New(a.cfg, service.WithLogger(a.logger))
}

func (a *app) formatter() *display.TerminalFormatter {
	return display.NewTerminalFormatter(display.WithColor(!a.flags.noColor && !color.NoColor))
}

// print writes v as JSON when --json is set, otherwise the text rendering.
func (a *app) print(w io.Writer, v any, text func() string) error {
	if a.flags.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprint(w, text())
	return err
}

// newRootCmd creates the root command for datinsight CLI.
func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:          "datinsight",
		Short:        "News, social and podcast feed with AI deep-insight analysis",
		Long:         "Datinsight merges headlines, social posts and podcast episodes into one feed and explains any item with a structured AI analysis.",
		Version:      currentVersion(),
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("datinsight version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.cfgFile, "config", "", "Config file (default: ./datinsight.yaml or the user config dir)")
	pf.BoolVar(&flags.mock, "mock", false, "Serve built-in demo data instead of calling providers")
	pf.StringVar(&flags.remoteURL, "remote", "", "Base URL of a running datinsight server")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&flags.jsonOut, "json", false, "Print JSON instead of text")

	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newFeedCmd(flags))
	rootCmd.AddCommand(newNewsCmd(flags))
	rootCmd.AddCommand(newSocialCmd(flags))
	rootCmd.AddCommand(newPodcastsCmd(flags))
	rootCmd.AddCommand(newAnalyzeCmd(flags))
	rootCmd.AddCommand(newContextCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newServeCmd creates the serve subcommand.
func newServeCmd(flags *globalFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve the feed, provider and analysis endpoints over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, flags)
			if err != nil {
				return err
			}
			if a.cfg.Remote.BaseURL != "" {
				return errors.New("serve runs providers in-process: unset remote.base_url")
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			svc, err := service.New(a.cfg, service.WithLogger(a.logger))
			if err != nil {
				return err
			}
			srv := server.New(svc,
				server.WithLogger(a.logger),
				server.WithCORSOrigins(a.cfg.Server.CORSOrigins),
				server.WithAnalyzeLimit(rate.Limit(a.cfg.Server.AnalyzeRate), a.cfg.Server.AnalyzeBurst),
			)

			a.logger.Info("configuration loaded",
				"file", a.cfgPath,
				"port", a.cfg.Server.Port,
				"mock", a.cfg.UseMock)
			return srv.Run(cmd.Context(), fmt.Sprintf(":%d", a.cfg.Server.Port))
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "Port to listen on")

	return cmd
}

// newFeedCmd creates the feed subcommand.
func newFeedCmd(flags *globalFlags) *cobra.Command {
	var interests []string
	var limit int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Display the merged feed",
		Long:  "Fetch news, social posts and podcasts for your first interest and show them newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") {
				a.cfg.Feed.Limit = limit
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}
			api, err := a.api()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			result, err := api.GetFeed(ctx, interests)
			if err != nil {
				return err
			}
			f := a.formatter()
			err = a.print(cmd.OutOrStdout(), feedJSON{Items: result.Items, Count: result.TotalBeforeTruncation}, func() string {
				return f.FormatResult(result)
			})
			if err != nil {
				return err
			}
			return openItem(result.Items, flags.open)
		},
	}

	cmd.Flags().StringSliceVarP(&interests, "interests", "i", []string{"technology"}, "Interests; only the first one is queried")
	cmd.Flags().IntVarP(&limit, "limit", "l", 30, "Maximum number of items to display")
	addOpenFlag(cmd, flags)

	return cmd
}

type feedJSON struct {
	Items []feed.Item `json:"items"`
	Count int         `json:"count"`
}

// newNewsCmd creates the news subcommand.
func newNewsCmd(flags *globalFlags) *cobra.Command {
	var category, country string

	cmd := &cobra.Command{
		Use:   "news",
		Short: "Display top headlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, api, ctx, cancel, err := prepare(cmd, flags)
			if err != nil {
				return err
			}
			defer cancel()
			if a.cfg.Remote.BaseURL == "" {
				if err := a.cfg.RequireNewsKey(); err != nil {
					return fmt.Errorf("%w (set NEWS_API_KEY or use --mock)", err)
				}
			}

			var articles []feed.NewsArticle
			if regional, ok := api.(service.RegionalNews); ok {
				articles, err = regional.GetNewsIn(ctx, category, country)
			} else {
				articles, err = api.GetNews(ctx, category)
			}
			if err != nil {
				return err
			}
			return printItems(cmd, a, articles)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "general", "News category")
	cmd.Flags().StringVar(&country, "country", "", "Two-letter country code (default from config)")
	addOpenFlag(cmd, flags)

	return cmd
}

// newSocialCmd creates the social subcommand.
func newSocialCmd(flags *globalFlags) *cobra.Command {
	var topic string

	cmd := &cobra.Command{
		Use:   "social",
		Short: "Display hot social posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, api, ctx, cancel, err := prepare(cmd, flags)
			if err != nil {
				return err
			}
			defer cancel()

			posts, err := api.GetSocialPosts(ctx, topic)
			if err != nil {
				return err
			}
			return printItems(cmd, a, posts)
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "technology", "Community to read")
	addOpenFlag(cmd, flags)

	return cmd
}

// newPodcastsCmd creates the podcasts subcommand.
func newPodcastsCmd(flags *globalFlags) *cobra.Command {
	var genre string

	cmd := &cobra.Command{
		Use:   "podcasts",
		Short: "Display podcast episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, api, ctx, cancel, err := prepare(cmd, flags)
			if err != nil {
				return err
			}
			defer cancel()

			episodes, err := api.GetPodcasts(ctx, genre)
			if err != nil {
				return err
			}
			return printItems(cmd, a, episodes)
		},
	}

	cmd.Flags().StringVarP(&genre, "genre", "g", "technology", "Search term for episodes")
	addOpenFlag(cmd, flags)

	return cmd
}

func prepare(cmd *cobra.Command, flags *globalFlags) (*app, service.API, context.Context, context.CancelFunc, error) {
	a, err := loadApp(cmd, flags)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	api, err := a.api()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	return a, api, ctx, cancel, nil
}

func printItems[P feed.Payload](cmd *cobra.Command, a *app, payloads []P) error {
	items := feed.Items(payloads)
	f := a.formatter()
	err := a.print(cmd.OutOrStdout(), payloads, func() string {
		return f.FormatFeed(items)
	})
	if err != nil {
		return err
	}
	return openItem(items, a.flags.open)
}

func addOpenFlag(cmd *cobra.Command, flags *globalFlags) {
	cmd.Flags().IntVar(&flags.open, "open", 0, "Open the Nth displayed item in the browser")
}

// openItem opens the link of the 1-based nth item; 0 does nothing.
func openItem(items []feed.Item, n int) error {
	if n == 0 {
		return nil
	}
	if n < 0 || n > len(items) {
		return fmt.Errorf("--open %d: only %d items displayed", n, len(items))
	}
	link := feed.Match(items[n-1],
		func(a feed.NewsArticle) string { return a.URL },
		func(p feed.SocialPost) string { return p.URL },
		func(e feed.PodcastEpisode) string { return e.URL },
	)
	if link == "" {
		return fmt.Errorf("item %d has no link", n)
	}
	return browser.New().Open(link)
}

// newAnalyzeCmd creates the analyze subcommand.
func newAnalyzeCmd(flags *globalFlags) *cobra.Command {
	var req analysis.Request
	var noContext bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a deep-insight analysis of one item",
		Long:  "Ask the language model for predictions, motives, bias and actionable insights about a headline or post.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(req.Title) == "" {
				return errors.New("missing --title: the item to analyze needs a title")
			}
			a, err := loadApp(cmd, flags)
			if err != nil {
				return err
			}
			if a.cfg.Remote.BaseURL == "" {
				if err := a.cfg.RequireAnalysisKey(); err != nil {
					return fmt.Errorf("%w (set OPENAI_API_KEY or use --mock)", err)
				}
			}
			api, err := a.api()
			if err != nil {
				return err
			}
			if noContext {
				req.UserContext = &analysis.UserContext{}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			result, err := api.Analyze(ctx, req)
			if errors.Is(err, analysis.ErrContentAnalysis) {
				return fmt.Errorf("%w; try again", err)
			}
			if err != nil {
				return err
			}
			f := a.formatter()
			return a.print(cmd.OutOrStdout(), result, func() string {
				return f.FormatAnalysis(result)
			})
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Title of the item (required)")
	cmd.Flags().StringVar(&req.Content, "content", "", "Body or description of the item")
	cmd.Flags().StringVar(&req.SourceLabel, "source", "", "Where the item comes from")
	cmd.Flags().BoolVar(&noContext, "no-context", false, "Do not personalize with the stored user context")

	return cmd
}

// newContextCmd creates the context subcommand.
func newContextCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage the user context used to personalize analyses",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current user context",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, api, ctx, cancel, err := prepare(cmd, flags)
			if err != nil {
				return err
			}
			defer cancel()

			uc, err := api.GetUserContext(ctx)
			if err != nil {
				return err
			}
			f := a.formatter()
			return a.print(cmd.OutOrStdout(), uc, func() string {
				return f.FormatUserContext(uc)
			})
		},
	})

	var uc analysis.UserContext
	set := &cobra.Command{
		Use:   "set",
		Short: "Save the user context locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, flags)
			if err != nil {
				return err
			}
			if uc.IsZero() {
				return errors.New("nothing to save: pass at least one of --goal, --background, --interest, --info")
			}
			store := profile.NewFileStore(a.cfg.Profile.Dir)
			if err := store.Save(uc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User context saved to: %s\n", store.Path())
			return nil
		},
	}
	set.Flags().StringArrayVar(&uc.Goals, "goal", nil, "A goal (repeatable)")
	set.Flags().StringVar(&uc.Background, "background", "", "Professional background")
	set.Flags().StringArrayVar(&uc.Interests, "interest", nil, "An interest (repeatable)")
	set.Flags().StringVar(&uc.AdditionalInfo, "info", "", "Anything else the analyst should know")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the saved user context",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, flags)
			if err != nil {
				return err
			}
			store := profile.NewFileStore(a.cfg.Profile.Dir)
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "User context cleared")
			return nil
		},
	})

	return cmd
}

// newConfigCmd creates the config subcommand.
func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long:  "View the effective datinsight configuration with secrets masked.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, flags)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(a.cfg.Redacted())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print where configuration and profile live",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, flags)
			if err != nil {
				return err
			}
			file := a.cfgPath
			if file == "" {
				file = "(none, using defaults)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config directory: %s\n", config.DefaultDir())
			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", file)
			fmt.Fprintf(cmd.OutOrStdout(), "User context: %s\n", profile.NewFileStore(a.cfg.Profile.Dir).Path())
			return nil
		},
	})

	return cmd
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "datinsight version %s\n", currentVersion())
		},
	}
}
