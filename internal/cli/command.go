package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zungenrede/internal/domain/entities"
	"zungenrede/internal/infrastructure/storage"
)

const keyStorageFile = "storage_file"

// app carries the settings shared by every subcommand.
type app struct {
	v       *viper.Viper
	log     *logrus.Logger
	cfgFile string
	verbose bool
}

// NewRootCommand creates the zungenctl command tree. Settings come from
// flags, then ZUNGENREDE_* or the bot's own environment variables, then an
// optional config file.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New(), log: logrus.New()}
	a.log.SetOutput(os.Stderr)

	rootCmd := &cobra.Command{
		Use:   "zungenctl",
		Short: "Inspect and maintain the zungenrede translation store",
		Long: `zungenctl works on the storage file of the zungenrede bot.

Stop the bot before running import: the bot keeps the store in memory and
would overwrite changes made behind its back.

Examples:
  zungenctl verify
  zungenctl list de en
  zungenctl export -o backup.json
  zungenctl import backup.json`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig()
		},
	}

	setupFlags(rootCmd, a)
	rootCmd.AddCommand(
		newVerifyCommand(a),
		newListCommand(a),
		newStatsCommand(a),
		newExportCommand(a),
		newImportCommand(a),
	)
	return rootCmd
}

func setupFlags(cmd *cobra.Command, a *app) {
	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (YAML, TOML or JSON)")
	cmd.PersistentFlags().String("storage-file", storage.DefaultPath, "path of the translation storage file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log store operations")

	_ = a.v.BindPFlag(keyStorageFile, cmd.PersistentFlags().Lookup("storage-file"))
	_ = a.v.BindEnv(keyStorageFile, "ZUNGENREDE_STORAGE_FILE", "STORAGE_FILE")
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", a.cfgFile, err)
		}
		a.log.WithField("file", a.v.ConfigFileUsed()).Debug("using config file")
	}
	a.v.SetEnvPrefix("ZUNGENREDE")
	a.v.AutomaticEnv()

	a.log.SetLevel(logrus.WarnLevel)
	if a.verbose {
		a.log.SetLevel(logrus.DebugLevel)
	}
	return nil
}

func (a *app) storagePath() string {
	if p := strings.TrimSpace(a.v.GetString(keyStorageFile)); p != "" {
		return p
	}
	return storage.DefaultPath
}

func (a *app) openStore() (*storage.Store, error) {
	return storage.Open(a.storagePath(), storage.WithLogger(a.log))
}

func newVerifyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the storage file loads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d entries in %d language pairs\n",
				store.Path(), store.Len(), len(store.Stats()))
			return nil
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [src dst]",
		Short: "Print stored translations",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or a language pair, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *entities.LanguagePair
			if len(args) == 2 {
				pair, err := entities.ParseLanguagePair(args[0], args[1])
				if err != nil {
					return err
				}
				filter = &pair
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for e := range store.List(filter) {
				fmt.Fprintf(out, "%s\t%s\t%s\n", e.Pair, e.Key, e.Value)
			}
			return nil
		},
	}
}

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count translations per language pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range store.Stats() {
				fmt.Fprintf(out, "%s\t%d\n", c.Pair, c.Count)
			}
			fmt.Fprintf(out, "total\t%d\n", store.Len())
			return nil
		},
	}
}

func newExportCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the store content as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			data, n, err := store.Export()
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d entries to %s\n", n, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCommand(a *app) *cobra.Command {
	var merge bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load translations from a JSON export",
		Long: `import replaces the store content with the entries of file, which must
use the storage file format. With --merge the entries are added on top of
the current content instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readEntries(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if merge {
				entries = append(collect(store), entries...)
			}
			if err := store.Replace(ctx, entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "imported %d entries, store now holds %d\n", len(entries), store.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&merge, "merge", false, "keep existing entries; imported ones win on conflict")
	return cmd
}

func readEntries(path string) ([]entities.TranslationEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	entries, err := storage.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

func collect(store *storage.Store) []entities.TranslationEntry {
	var entries []entities.TranslationEntry
	for e := range store.List(nil) {
		entries = append(entries, e)
	}
	return entries
}
