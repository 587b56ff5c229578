package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"topstore/internal/config"
	"topstore/internal/logger"
	"topstore/internal/storefront"
)

// app состояние команды: открывается перед запуском и закрывается после
type app struct {
	envFile string
	timeout time.Duration

	cfg   *config.Config
	state *storefront.State
}

// NewRootCommand команда storectl с подкомандами администрирования магазина
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "storectl",
		Short: "TopStore administration tool",
		Long: `storectl works directly with the store collections (file or postgres backend):
manage the catalog, inspect and move orders, print stats and seed test data.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: a.close,
	}
	root.PersistentFlags().StringVar(&a.envFile, "env", ".env", "Environment file")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "Timeout for store operations")

	root.AddCommand(
		newProductsCommand(a),
		newOrdersCommand(a),
		newStatsCommand(a),
		newSeedCommand(a),
	)
	return root
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if err := config.NewValidator().Validate(a.cfg); err != nil {
		return err
	}
	// уведомления из CLI не отправляются
	a.cfg.Kafka.Enabled = false

	log := logger.NewWithOutput(a.cfg.Logger, cmd.ErrOrStderr())

	ctx, cancel := a.context(cmd)
	defer cancel()

	st, err := storefront.Open(ctx, storefront.Deps{Config: a.cfg, Logger: log})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	a.state = st
	return nil
}

func (a *app) close(cmd *cobra.Command, _ []string) error {
	if a.state == nil {
		return nil
	}
	ctx, cancel := a.context(cmd)
	defer cancel()

	err := a.state.Close(ctx)
	a.state = nil
	return err
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, a.timeout)
}
