package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/famcal/internal/calendar"
	"github.com/tartampluch/famcal/internal/config"
	"github.com/tartampluch/famcal/internal/engine"
	"github.com/tartampluch/famcal/internal/i18n"
	"github.com/tartampluch/famcal/internal/render"
	"github.com/tartampluch/famcal/internal/server"
	"github.com/tartampluch/famcal/internal/worker"
	"golang.org/x/term"
)

// cliApp holds the persistent flags and resources shared by every command.
type cliApp struct {
	configPath string
	debug      bool
	logCloser  io.Closer

	// month flags
	year     int
	month    int
	selected string
	lang     string

	// serve flags
	listen string
}

func (a *cliApp) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           config.AppName,
		Short:         config.ShortRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// Keep stdout clean for commands that print their result.
			console := cmd.ErrOrStderr()
			if cmd.Name() == config.CmdServe {
				console = cmd.OutOrStdout()
			}
			a.logCloser = setupLogging(a.debug, console)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, config.FlagConfig, "", config.FlagDescConfig)
	root.PersistentFlags().BoolVar(&a.debug, config.FlagDebug, false, config.FlagDescDebug)

	root.AddCommand(a.monthCmd(), a.serveCmd(), a.versionCmd(), a.passwordCmd())
	return root
}

func (a *cliApp) closeLog() {
	if a.logCloser != nil {
		_ = a.logCloser.Close() // Best effort close
	}
}

func (a *cliApp) monthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdMonth,
		Short: config.ShortMonth,
		Args:  cobra.NoArgs,
		RunE:  a.runMonth,
	}
	cmd.Flags().IntVar(&a.year, config.FlagYear, 0, config.FlagDescYear)
	cmd.Flags().IntVar(&a.month, config.FlagMonth, 0, config.FlagDescMonth)
	cmd.Flags().StringVar(&a.selected, config.FlagSelect, "", config.FlagDescSelect)
	cmd.Flags().StringVar(&a.lang, config.FlagLang, "", config.FlagDescLang)
	return cmd
}

func (a *cliApp) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdServe,
		Short: config.ShortServe,
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}
	cmd.Flags().StringVar(&a.listen, config.FlagListen, "", config.FlagDescListen)
	return cmd
}

func (a *cliApp) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdVersion,
		Short: config.ShortVersion,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func (a *cliApp) passwordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.UsePassword,
		Short: config.ShortPass,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user := args[0]
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), config.PromptPassword, user)
			pass := readPassword(cmd.InOrStdin())
			_, _ = fmt.Fprintln(cmd.ErrOrStderr())
			if pass == "" {
				return errors.New(config.ErrPasswordEmpty)
			}
			if err := engine.StorePassword(user, pass); err != nil {
				return fmt.Errorf("%s: %w", config.ErrPasswordStore, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), config.MsgPassStored, user)
			return nil
		},
	}
}

// readPassword reads without echo on a terminal and falls back to a plain line.
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if password, err := term.ReadPassword(int(f.Fd())); err == nil {
			return string(password)
		}
	}
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(input)
}

func (a *cliApp) runMonth(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	snap, err := newLoader(cfg).Load(ctx, cfg.Sources)
	if err != nil {
		return err
	}

	nav := calendar.NewNavigator(calendar.RealClock{})
	ym := nav.ViewedMonth()
	if cmd.Flags().Changed(config.FlagYear) {
		ym.Year = a.year
	}
	if cmd.Flags().Changed(config.FlagMonth) {
		ym.Month = time.Month(a.month)
	}
	if err := nav.ViewMonth(ym); err != nil {
		return err
	}
	if a.selected != "" {
		d, err := calendar.ParseExactKey(a.selected)
		if err != nil {
			return err
		}
		if err := nav.SelectDate(d); err != nil {
			return err
		}
	}

	view, err := calendar.ComposeView(nav, resolverFor(cfg), snap.Sources)
	if err != nil {
		return err
	}

	lang := a.lang
	if lang == "" {
		lang = cfg.Language
	}
	weekdays := i18n.NewCatalog().Weekdays(lang)

	_, err = fmt.Fprintln(cmd.OutOrStdout(), render.Month(view, weekdays, render.DefaultOptions()))
	return err
}

func (a *cliApp) runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logStartupInfo()

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	listen := cfg.Listen
	if a.listen != "" {
		listen = a.listen
	}

	srv := server.NewCalendarServer(listen, resolverFor(cfg), i18n.NewCatalog())
	srv.Language = cfg.Language

	w := &worker.Worker{
		Loader:   newLoader(cfg),
		Sources:  cfg.Sources,
		Schedule: cfg.Refresh,
		Publish:  srv.Update,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workerErr := make(chan error, config.ChannelBufferSize)
	go func() {
		workerErr <- w.Run(ctx)
	}()

	// A failing worker (bad schedule) stops the server too.
	serverErr := make(chan error, config.ChannelBufferSize)
	go func() {
		serverErr <- srv.Start(ctx)
	}()

	select {
	case err = <-workerErr:
		cancel()
		if srvErr := <-serverErr; err == nil {
			err = srvErr
		}
	case err = <-serverErr:
		cancel()
		<-workerErr
	}
	if err != nil {
		return err
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return nil
}

func (a *cliApp) loadConfig() (*config.File, error) {
	path := a.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrConfigLoad, err)
	}
	slog.Debug(config.MsgConfigLoaded,
		config.LogKeyComponent, config.CompConfig,
		config.LogKeyFile, path,
	)
	return cfg, nil
}

// newLoader wires the fetcher, its disk cache and the keyring.
// The cache is skipped when no cache directory is available.
func newLoader(cfg *config.File) *engine.Loader {
	var cache *engine.Cache
	dir := cfg.CacheDir
	if dir == "" {
		if appDir, err := appCacheDir(); err == nil {
			dir = filepath.Join(appDir, config.CacheDirName)
		}
	}
	if dir != "" {
		cache = engine.NewCache(dir)
	}

	return &engine.Loader{
		Clock:       calendar.RealClock{},
		Fetcher:     engine.NewHTTPFetcher(cache),
		Credentials: engine.KeyringCredentials{},
	}
}

func resolverFor(cfg *config.File) calendar.Resolver {
	return calendar.NewResolver(calendar.Caps{
		Entries:   cfg.Caps.Entries,
		Songs:     cfg.Caps.Songs,
		Birthdays: cfg.Caps.Birthdays,
	})
}
