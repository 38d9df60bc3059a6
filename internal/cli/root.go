package cli

import (
	"fmt"
	"os"

	"github.com/serenespa/admin-console/internal/config"
	"github.com/serenespa/admin-console/pkg/logger"
	"github.com/spf13/cobra"
)

type options struct {
	cfg        *config.Config
	verbose    bool
	backendURL string
	email      string
	password   string
}

// NewRootCmd builds the console command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "spa-console",
		Short:         "Admin console for the spa booking backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if o.backendURL != "" {
				cfg.Backend.URL = o.backendURL
			}
			logger.Init(cfg.Log.Level)
			logger.SetFormat(cfg.Log.Format)
			if o.verbose {
				logger.Init("debug")
			}
			o.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&o.backendURL, "backend-url", "", "Backend base URL (overrides BACKEND_URL)")
	root.PersistentFlags().StringVar(&o.email, "email", os.Getenv("CONSOLE_EMAIL"), "Admin email for commands that sign in (env CONSOLE_EMAIL)")
	root.PersistentFlags().StringVar(&o.password, "password", os.Getenv("CONSOLE_PASSWORD"), "Admin password (env CONSOLE_PASSWORD)")

	root.AddCommand(newServeCmd(o), newVerifyCmd(o), newServicesCmd(o))
	return root
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
