package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/spachava753/phonebook/config"
	"github.com/spachava753/phonebook/contacts"
	"github.com/spachava753/phonebook/dial"
	"github.com/spachava753/phonebook/mail"
	"github.com/spachava753/phonebook/provider/sqlitestore"
	"github.com/spachava753/phonebook/settings"
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// app holds what a single invocation needs. It is filled by the root
// command's pre-run hook.
type app struct {
	debug bool
	cfg   *config.Config
	log   zerolog.Logger
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "contactctl",
		Short:         "Manage the local phone book",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        cmd.ErrOrStderr(),
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if a.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			a.log = log.Logger

			cfg, err := config.New()
			if err != nil {
				return err
			}
			a.cfg = cfg
			log.Debug().
				Str("db_path", cfg.DBPath).
				Str("settings_path", cfg.SettingsPath).
				Bool("batch_email_lookup", cfg.BatchEmailLookup).
				Bool("smtp_configured", cfg.Mail().Configured()).
				Msg("configuration loaded")
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newAddCmd(a))
	rootCmd.AddCommand(newEditCmd(a))
	rootCmd.AddCommand(newDeleteCmd(a))
	rootCmd.AddCommand(newCallCmd(a))
	rootCmd.AddCommand(newTextCmd(a))
	rootCmd.AddCommand(newEmailCmd(a))
	rootCmd.AddCommand(newThemeCmd(a))

	return rootCmd
}

// openContacts opens the record store and returns a service over it. The
// returned func closes the store.
func (a *app) openContacts() (*contacts.Service, func(), error) {
	store, err := sqlitestore.Open(a.cfg.DBPath, sqlitestore.WithLogger(a.log))
	if err != nil {
		return nil, nil, err
	}
	opts := []contacts.Option{contacts.WithLogger(a.log)}
	if a.cfg.BatchEmailLookup {
		opts = append(opts, contacts.WithBatchedEmailLookup())
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing contact store")
		}
	}
	return contacts.New(store, opts...), closeStore, nil
}

func (a *app) settings() *settings.Store {
	return settings.Open(a.cfg.SettingsPath)
}

func (a *app) opener() dial.Opener {
	return dial.CommandOpener{Command: a.cfg.Opener}
}

func (a *app) mailer() *mail.Sender {
	return mail.NewSender(a.cfg.Mail(), mail.WithLogger(a.log))
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid contact id %q", arg)
	}
	return id, nil
}
