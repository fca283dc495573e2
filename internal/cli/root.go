package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"syscall"

	"github.com/matiscalella/fitzone/internal/core/repository"
	"github.com/matiscalella/fitzone/internal/infrastructure/database"
	"github.com/matiscalella/fitzone/internal/logging"
	"github.com/matiscalella/fitzone/pkg/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fitzone",
	Short: "Fit Zone - gym client management",
	Long: `Fit Zone manages the gym's client records stored in a MySQL, PostgreSQL
or SQLite database.

Run without a subcommand to open the interactive menu, or use the clients
subcommands for scripting.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// Load configuration
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger = logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
		if cfg.ConfigPath != "" {
			logger.Debug("configuration loaded", "path", cfg.ConfigPath, "driver", cfg.DB.Driver)
		}

		return nil
	},
	RunE: runMenu,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yml or /etc/fitzone/config.yml)")
}

// Terminal access, replaced in tests.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// Services holds everything a command needs to talk to the store
type Services struct {
	ClientRepo repository.ClientRepository
	Logger     *slog.Logger
}

// initServices builds the provider and repository from the loaded config.
// Connections are opened per operation, so there is nothing to close.
func initServices(cmd *cobra.Command) (*Services, error) {
	provider, err := newProvider(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.DB.CreateSchema {
		if err := provider.EnsureSchema(cmd.Context()); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	return &Services{
		ClientRepo: database.NewClientRepository(provider),
		Logger:     logger,
	}, nil
}

// newProvider asks for the password when db.password_prompt is set and then
// builds the connection provider. Every command that connects goes through here.
func newProvider(cmd *cobra.Command) (*database.Provider, error) {
	if cfg.DB.PasswordPrompt && cfg.DB.DSN == "" {
		if err := promptPassword(cmd.ErrOrStderr()); err != nil {
			return nil, err
		}
	}

	return database.NewProvider(cfg.DB, logger)
}

// promptPassword reads the database password from the terminal. Without a
// terminal the configured password is kept.
func promptPassword(w io.Writer) error {
	fd := int(syscall.Stdin)
	if !isTerminal(fd) {
		logger.Warn("db.password_prompt is set but stdin is not a terminal, using configured password")
		return nil
	}

	fmt.Fprint(w, "Database password: ")
	password, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	cfg.DB.Password = string(password)
	return nil
}
