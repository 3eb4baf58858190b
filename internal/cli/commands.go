package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ydegt/putcall/config"
	"github.com/ydegt/putcall/internal/display"
	"github.com/ydegt/putcall/internal/expiry"
	"github.com/ydegt/putcall/internal/marketdata"
	"github.com/ydegt/putcall/internal/pcr"
)

const version = "1.0.2"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	// Initialize configuration early
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "putcall",
		Short: "putcall - Put/Call Ratio Calculator",
		Long: `putcall computes the Put/Call Ratio (PCR) from options open interest for a
security symbol, expiration date and strike selection. PCR values above 1 are
conventionally read as bearish-leaning sentiment, below 1 as bullish-leaning.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Debug {
				log.SetLevel(log.DebugLevel)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if cfg.CacheEnabled {
				if err := cfg.EnsureDirectories(); err != nil {
					return fmt.Errorf("failed to create directories: %w", err)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start interactive mode
			return runInteractiveMode(cfg)
		},
	}

	// Add subcommands
	rootCmd.AddCommand(newPCRCmd(cfg))
	rootCmd.AddCommand(newExpirationsCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(cfg))

	return rootCmd
}

// newPCRCmd creates the pcr command
func newPCRCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pcr",
		Short: "Compute the Put/Call Ratio for a symbol",
		Long: `Compute the Put/Call Ratio based on open interest for a given symbol,
expiration date, and strike range or single strike.
Examples:
  putcall pcr --symbol AAPL --date-strike Nov --lower 100 --upper 200 --chart
  putcall pcr --symbol MSFT --date-strike "Nov 29, 150"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, _ := cmd.Flags().GetString("symbol")
			dateStrike, _ := cmd.Flags().GetString("date-strike")
			chart, _ := cmd.Flags().GetBool("chart")

			var lower, upper *decimal.Decimal
			if cmd.Flags().Changed("lower") {
				val, _ := cmd.Flags().GetFloat64("lower")
				d := decimal.NewFromFloat(val)
				lower = &d
			}
			if cmd.Flags().Changed("upper") {
				val, _ := cmd.Flags().GetFloat64("upper")
				d := decimal.NewFromFloat(val)
				upper = &d
			}

			return runPCRCommand(cfg, symbol, dateStrike, lower, upper, chart)
		},
	}

	cmd.Flags().StringP("symbol", "s", "", "Security symbol (e.g., AAPL)")
	cmd.Flags().StringP("date-strike", "d", "", `Expiration date and strike: "Month Day, Strike" (e.g., "Nov 29, 150"), "Month" (e.g., "Nov"), or "all"`)
	cmd.Flags().Float64("lower", 0, "Lower bound of strike price range (optional)")
	cmd.Flags().Float64("upper", 0, "Upper bound of strike price range (optional)")
	cmd.Flags().BoolP("chart", "g", false, "Render a PCR vs strike chart")
	cmd.MarkFlagRequired("symbol")
	cmd.MarkFlagRequired("date-strike")

	return cmd
}

// newExpirationsCmd creates the expirations command
func newExpirationsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expirations",
		Short: "List the known option expiration dates for a symbol",
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, _ := cmd.Flags().GetString("symbol")

			provider, err := marketdata.NewProvider(cfg)
			if err != nil {
				return err
			}
			defer closeProvider(provider)

			dates, err := provider.ListExpirations(context.Background(), symbol)
			if err != nil {
				return fmt.Errorf("list expirations: %w", err)
			}

			fmt.Printf("Option expiration dates for %s:\n", symbol)
			for _, date := range dates {
				fmt.Printf("  %s\n", date)
			}
			return nil
		},
	}

	cmd.Flags().StringP("symbol", "s", "", "Security symbol (e.g., AAPL)")
	cmd.MarkFlagRequired("symbol")

	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("putcall v%s\n", version)
			fmt.Println("Put/Call Ratio calculator based on options open interest")
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Manage putcall configuration settings",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cfg)
		},
	})

	return configCmd
}

// runPCRCommand executes the main computation workflow
func runPCRCommand(cfg *config.Config, symbol, dateStrike string, lower, upper *decimal.Decimal, chart bool) error {
	ctx := context.Background()

	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	expr, err := expiry.ParseExpression(dateStrike)
	if err != nil {
		return err
	}

	// The year (and, for "all", the month) comes from the clock here at the
	// boundary; resolution itself is deterministic.
	now := time.Now()
	var resolved expiry.Resolved
	if expr.Kind == expiry.KindAll {
		resolved = expiry.Resolved{Date: expiry.ThirdFriday(now.Year(), now.Month())}
	} else {
		resolved, err = expiry.Resolve(expr, now.Year())
		if err != nil {
			return err
		}
	}

	selection, err := buildSelection(resolved, lower, upper)
	if err != nil {
		return err
	}

	provider, err := marketdata.NewProvider(cfg)
	if err != nil {
		return err
	}
	defer closeProvider(provider)

	engine := pcr.NewEngine(provider)
	result, err := engine.Compute(ctx, symbol, resolved.ISO(), selection)
	if err != nil {
		return err
	}

	display.RenderResult(os.Stdout, result)
	if chart {
		if result.Single != nil {
			fmt.Println("Chart rendering needs a strike range; ignoring --chart for a single strike.")
		} else {
			display.RenderChart(os.Stdout, result)
		}
	}

	return nil
}

// closeProvider releases provider resources for providers that hold a
// connection, such as the Longport quote context.
func closeProvider(provider marketdata.Provider) {
	if closer, ok := provider.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.WithError(err).Warn("failed to close market data provider")
		}
	}
}

// showConfig displays the current configuration
func showConfig(cfg *config.Config) {
	fmt.Println("Current putcall configuration:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Printf("Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Println()
	fmt.Printf("Provider:             %s\n", cfg.Provider)
	fmt.Printf("HTTP Timeout:         %s\n", cfg.HTTPTimeout)
	fmt.Printf("Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Printf("Cache TTL:            %s\n", cfg.CacheTTL)
	fmt.Printf("Debug Mode:           %t\n", cfg.Debug)
	fmt.Println()

	fmt.Println("API configuration:")
	fmt.Println("─────────────────────")
	if cfg.LongportAppKey != "" && cfg.LongportAppSecret != "" && cfg.LongportAccessToken != "" {
		fmt.Println("Longport API:         ✅ Configured")
	} else {
		fmt.Println("Longport API:         ❌ Not configured")
	}
}

// validateConfig validates the configuration and dependencies
func validateConfig(cfg *config.Config) error {
	fmt.Println("Validating putcall configuration...")
	fmt.Println("═══════════════════════════════════════")

	fmt.Print("Checking configuration values... ")
	if err := cfg.Validate(); err != nil {
		fmt.Println("❌")
		return err
	}
	fmt.Println("✅")

	fmt.Print("Checking directories... ")
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Println("❌")
		return fmt.Errorf("directory validation failed: %w", err)
	}
	fmt.Println("✅")

	fmt.Print("Checking provider... ")
	provider, err := marketdata.NewProvider(cfg)
	if err != nil {
		fmt.Println("❌")
		return err
	}
	closeProvider(provider)
	fmt.Println("✅")

	fmt.Println()
	fmt.Println("✅ Configuration validation completed successfully!")
	fmt.Println()
	fmt.Println("Tips:")
	fmt.Println("  • Set PUTCALL_PROVIDER to yahoo, yahoo-web or longport")
	fmt.Println("  • Set LONGPORT_APP_KEY, LONGPORT_APP_SECRET and LONGPORT_ACCESS_TOKEN for the longport provider")
	fmt.Println("  • Use 'putcall pcr -s AAPL -d Nov' to compute your first ratio")

	return nil
}
