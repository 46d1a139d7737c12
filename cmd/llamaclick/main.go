package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	zLog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go-llamaclick/internal/agents"
	"go-llamaclick/internal/api"
	"go-llamaclick/internal/config"
	"go-llamaclick/internal/secrets"
	"go-llamaclick/pkg/logger"
	"go-llamaclick/pkg/models"
	"go-llamaclick/pkg/tracer"
)

var (
	configPath  string
	showHistory bool
	addr        string
)

var rootCmd = &cobra.Command{
	Use:           "llamaclick",
	Short:         "Drive an objective through planner, navigator, interactor, verifier and recovery agents",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run [objective]",
	Short: "Run the agent pipeline once and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runObjective,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt-key [value]",
	Short: "Encrypt an API key for the settings file using " + config.KeyEnv,
	Args:  cobra.MaximumNArgs(1),
	RunE:  encryptKey,
}

var initCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the default settings to the config path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists", configPath)
		}
		if err := config.Save(config.Defaults(), configPath); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), messageStyle.Render("wrote "+configPath))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "llamaclick.yaml", "settings file")
	runCmd.Flags().BoolVar(&showHistory, "history", false, "print every agent's prompt/answer history")
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	rootCmd.AddCommand(runCmd, serveCmd, encryptCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

// setup loads settings and installs the global logger and tracer.
func setup() (*config.Settings, func(context.Context) error, error) {
	s, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.NewGlobal(s.Log.Level, s.Log.Pretty); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	shutdown, err := tracer.Setup(s.Tracing.Enabled, s.Tracing.Exporter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	return s, shutdown, nil
}

func runObjective(cmd *cobra.Command, args []string) error {
	s, shutdown, err := setup()
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	out := cmd.OutOrStdout()
	m, err := config.BuildManager(s, agents.WithStageObserver(func(st models.State) {
		if !st.Terminal() {
			fmt.Fprintln(out, stepStyle.Render("→ "+string(st)))
		}
	}))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(out, titleStyle.Render(args[0]))
	res, err := m.Execute(ctx, args[0])
	if showHistory {
		fmt.Fprint(out, renderHistories(m.Histories()))
	}
	if err != nil {
		return err
	}
	fmt.Fprint(out, renderResult(res))
	return nil
}

func serve(cmd *cobra.Command, _ []string) error {
	s, shutdown, err := setup()
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	listen := s.Server.Addr
	if addr != "" {
		listen = addr
	}

	system := actor.NewActorSystem().Root
	app := api.New(system, func(opts ...agents.Option) (*agents.Manager, error) {
		return config.BuildManager(s, opts...)
	}, listen)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	stop()
	zLog.Info().Msg("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	zLog.Info().Msg("server exiting")
	return nil
}

func encryptKey(cmd *cobra.Command, args []string) error {
	passphrase := os.Getenv(config.KeyEnv)
	if passphrase == "" {
		return errors.New(config.KeyEnv + " must be set")
	}

	var value string
	if len(args) == 1 {
		value = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read value: %w", err)
		}
		value = strings.TrimSpace(line)
	}
	if value == "" {
		return errors.New("nothing to encrypt")
	}

	enc, err := secrets.Encrypt(value, passphrase)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), secrets.Prefix+enc)
	return nil
}
