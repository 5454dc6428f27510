// Package main is a command line front end for description enhancement.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"rentals/internal/config"
	"rentals/internal/logging"
	"rentals/internal/model"
	"rentals/internal/service"
)

// errEnhancementFailed signals a Failure outcome; it has already been printed.
var errEnhancementFailed = errors.New("enhancement failed")

// descriptionEnhancer is satisfied by *service.DescriptionEnhancer.
type descriptionEnhancer interface {
	EnhanceDescription(ctx context.Context, raw map[string]any) model.Outcome
}

// buildEnhancer wires the enhancer from configuration.
var buildEnhancer = func(ctx context.Context, cfg *config.Config) (descriptionEnhancer, error) {
	backend, err := service.NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	generator := service.NewGenerationClient(backend,
		service.WithMaxRetries(cfg.Generation.MaxRetries),
		service.WithInitialDelay(cfg.Generation.RetryDelay),
		service.WithBackoffFactor(cfg.Generation.BackoffFactor),
		service.WithMaxConcurrency(1),
		service.WithLogger(logging.Component("generation")),
	)
	return service.NewDescriptionEnhancer(generator, cfg.Generation.Timeout,
		service.WithEnhancerLogger(logging.Component("enhancer")),
	), nil
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errEnhancementFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		address     string
		price       string
		amenities   string
		description string
		pretty      bool
	)

	cmd := &cobra.Command{
		Use:   "enhance",
		Short: "Rewrite a rental property description",
		Long: `Rewrite a rental property description with the configured generation backend.

The result is printed as a JSON outcome. The exit status is 1 when the
enhancement fails. Backend settings are read from the environment and .env.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logging.InitWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, "console")

			enhancer, err := buildEnhancer(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("create enhancer: %w", err)
			}

			raw := map[string]any{
				service.FieldAddress:     address,
				service.FieldPrice:       price,
				service.FieldAmenities:   amenities,
				service.FieldDescription: description,
			}
			outcome := enhancer.EnhanceDescription(cmd.Context(), raw)
			if !outcome.Success {
				log.Debug().Str("error", outcome.Error).Msg("enhancement did not succeed")
			}
			return writeOutcome(cmd.OutOrStdout(), outcome, pretty)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Property address")
	cmd.Flags().StringVar(&price, "price", "", "Monthly rent")
	cmd.Flags().StringVar(&amenities, "amenities", "", "Comma-separated amenities")
	cmd.Flags().StringVar(&description, "description", "", "Current description")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")

	return cmd
}

// writeOutcome prints the outcome and maps Failure to errEnhancementFailed.
func writeOutcome(w io.Writer, outcome model.Outcome, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(outcome); err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}
	if !outcome.Success {
		return errEnhancementFailed
	}
	return nil
}
