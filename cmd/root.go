package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/maskfield/internal/config"
	"github.com/zjrosen/maskfield/internal/flags"
	"github.com/zjrosen/maskfield/internal/infrastructure/sqlite"
	"github.com/zjrosen/maskfield/internal/log"
	"github.com/zjrosen/maskfield/internal/mask"
	"github.com/zjrosen/maskfield/internal/preset"
	"github.com/zjrosen/maskfield/internal/submission"
	"github.com/zjrosen/maskfield/internal/ui/form"
	"github.com/zjrosen/maskfield/internal/ui/styles"
	"github.com/zjrosen/maskfield/internal/watcher"
)

func init() {
	// Query the terminal background before any program starts so the OSC 11
	// response cannot race the input loop and land in a field.
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const localConfigPath = ".maskfield/config.yaml"

var (
	version    = "dev"
	cfgFile    string
	cfg        config.Config
	configUsed string

	// "::" keeps dotted keys such as theme.colors."text.literal" intact.
	v = viper.NewWithOptions(viper.KeyDelimiter("::"))

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "maskfield",
	Short: "Masked input fields in the terminal",
	Long: `maskfield shows a form of masked input fields (phone numbers, dates,
card numbers, ...) and prints the values once the form is submitted.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runForm,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/maskfield/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "write a debug log (also MASKFIELD_DEBUG)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	rootCmd.Flags().StringSliceP("field", "f", nil, "only show the named fields")
	rootCmd.Flags().String("db", "", "store submissions in this SQLite file")
	rootCmd.Flags().Bool("watch", false, "reload fields when the config file changes")
	rootCmd.Flags().Bool("remember", false, "save submitted values as the fields' initial values")

	_ = v.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = v.BindPFlag("store::path", rootCmd.Flags().Lookup("db"))
	v.SetEnvPrefix("MASKFIELD")
	_ = v.BindEnv("debug")
	_ = v.BindEnv("log", "MASKFIELD_LOG")
	_ = v.BindEnv("log_level", "MASKFIELD_LOG_LEVEL")
}

func initConfig() {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Lookup order: .maskfield/config.yaml, then ~/.config/maskfield/config.yaml.
		if _, err := os.Stat(localConfigPath); err == nil {
			v.SetConfigFile(localConfigPath)
		} else {
			v.AddConfigPath(userConfigDir())
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			defaultPath := filepath.Join(userConfigDir(), "config.yaml")
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				v.SetConfigFile(defaultPath)
				_ = v.ReadInConfig()
			}
			// Without a file the defaults apply.
		}
	}

	_ = v.Unmarshal(&cfg)
	configUsed = v.ConfigFileUsed()
}

func setDefaults(v *viper.Viper) {
	defaults := config.Defaults()
	v.SetDefault("ui::width", defaults.UI.Width)
	v.SetDefault("ui::markdown_style", defaults.UI.MarkdownStyle)
	v.SetDefault("tracing::enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing::exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing::otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing::sample_rate", defaults.Tracing.SampleRate)
}

func userConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "maskfield")
}

// setup runs before every command: logging, colors, then config validation.
func setup(cmd *cobra.Command, _ []string) error {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}

	if v.GetBool("debug") && logCleanup == nil {
		logPath := v.GetString("log")
		if logPath == "" {
			logPath = "debug.log"
		}
		cleanup, err := log.InitWithTeaLog(logPath, "maskfield")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		if name := v.GetString("log_level"); name != "" {
			level, err := log.ParseLevel(name)
			if err != nil {
				return err
			}
			log.SetMinLevel(level)
		}
		log.Info(log.CatConfig, "maskfield starting", "version", version, "config", configUsed)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := flags.Validate(cfg.Flags); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := styles.ApplyTheme(styles.ThemeConfig{Preset: cfg.Theme.Preset, Colors: cfg.Theme.Colors}); err != nil {
		return fmt.Errorf("invalid theme: %w", err)
	}
	return nil
}

// newRegistry builds the preset registry for cfg.
func newRegistry(cfg config.Config) (*preset.Registry, error) {
	fl := flags.New(cfg.Flags)
	notify := mask.NotifyBoundary
	if fl.Enabled(flags.FlagNotifyEveryCommit) {
		notify = mask.NotifyEveryCommit
	}
	return preset.New(cfg.Presets, preset.WithNotify(notify))
}

// selectFields keeps the named fields, in the order given. No names keeps all.
func selectFields(all []config.FieldConfig, names []string) ([]config.FieldConfig, error) {
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]config.FieldConfig, len(all))
	for _, f := range all {
		byName[f.Name] = f
	}
	selected := make([]config.FieldConfig, 0, len(names))
	for _, name := range names {
		f, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown field: %s", name)
		}
		selected = append(selected, f)
	}
	return selected, nil
}

func buildFields(ctx context.Context, cfg config.Config, names []string) (*preset.Registry, []form.Field, error) {
	fcs, err := selectFields(cfg.GetFields(), names)
	if err != nil {
		return nil, nil, err
	}
	reg, err := newRegistry(cfg)
	if err != nil {
		return nil, nil, err
	}
	fields, err := reg.Fields(ctx, fcs, cfg.UI.Width)
	if err != nil {
		return nil, nil, err
	}
	return reg, fields, nil
}

func runForm(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	names, _ := cmd.Flags().GetStringSlice("field")
	reg, fields, err := buildFields(ctx, cfg, names)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("no fields configured")
	}

	zone.NewGlobal()
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if flags.New(cfg.Flags).Enabled(flags.FlagMouseFocus) {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(form.New(ctx, fields), opts...)

	if watch, _ := cmd.Flags().GetBool("watch"); watch && configUsed != "" {
		stop, err := watchConfig(ctx, configUsed, names, reg, p.Send)
		if err != nil {
			return err
		}
		defer stop()
	}

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	values, submitted := final.(form.Model).Result()
	if !submitted {
		return nil
	}
	printValues(cmd.OutOrStdout(), values)

	if path := v.GetString("store::path"); path != "" {
		if err := storeValues(path, values); err != nil {
			return err
		}
	}
	if remember, _ := cmd.Flags().GetBool("remember"); remember {
		if configUsed == "" {
			return fmt.Errorf("--remember needs a config file")
		}
		if err := config.SaveValues(configUsed, rememberedValues(values)); err != nil {
			return fmt.Errorf("saving values: %w", err)
		}
	}
	return nil
}

// watchConfig rebuilds the fields each time the config file changes and
// sends them to the running program. An invalid edit leaves the fields as
// they are and is reported on the form's status line.
func watchConfig(ctx context.Context, path string, names []string, reg *preset.Registry, send func(tea.Msg)) (func(), error) {
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				next, fields, err := reloadFields(ctx, path, names, reg)
				if err != nil {
					log.ErrorErr(log.CatWatcher, "Config reload failed", err, "path", path)
					send(form.ReloadFailedMsg{Err: err})
					continue
				}
				reg = next
				send(form.ReloadMsg{Fields: fields})
			}
		}
	}()

	return func() { _ = w.Stop() }, nil
}

// reloadFields reads path afresh and builds its fields with a new registry.
// The old registry is flushed once the new one is in place.
func reloadFields(ctx context.Context, path string, names []string, old *preset.Registry) (*preset.Registry, []form.Field, error) {
	fresh := viper.NewWithOptions(viper.KeyDelimiter("::"))
	setDefaults(fresh)
	fresh.SetConfigFile(path)
	if err := fresh.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	var next config.Config
	if err := fresh.Unmarshal(&next); err != nil {
		return nil, nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := config.Validate(next); err != nil {
		return nil, nil, err
	}
	if err := flags.Validate(next.Flags); err != nil {
		return nil, nil, err
	}

	reg, fields, err := buildFields(ctx, next, names)
	if err != nil {
		return nil, nil, err
	}
	if err := old.Flush(ctx); err != nil {
		log.ErrorErr(log.CatCache, "Flushing masks failed", err)
	}
	return reg, fields, nil
}

func printValues(w io.Writer, values []form.Value) {
	name := color.New(color.Bold)
	dim := color.New(color.Faint)
	for _, val := range values {
		_, _ = name.Fprintf(w, "%s", val.Name)
		_, _ = fmt.Fprintf(w, "=%s", val.Value)
		if val.Value != "" && !val.Complete {
			_, _ = dim.Fprint(w, "  (incomplete)")
		}
		_, _ = fmt.Fprintln(w)
	}
}

func toSubmissionValues(values []form.Value) []submission.Value {
	out := make([]submission.Value, len(values))
	for i, val := range values {
		out[i] = submission.Value{Name: val.Name, Value: val.Value, Complete: val.Complete}
	}
	return out
}

func storeValues(path string, values []form.Value) error {
	db, err := sqlite.NewDB(path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer func() { _ = db.Close() }()

	s := submission.New(toSubmissionValues(values))
	if err := db.SubmissionRepository().Save(s); err != nil {
		return fmt.Errorf("storing submission: %w", err)
	}
	log.Info(log.CatDB, "Stored submission", "guid", s.GUID())
	return nil
}

// rememberedValues maps field names to values; empty values clear the entry.
func rememberedValues(values []form.Value) map[string]string {
	out := make(map[string]string, len(values))
	for _, val := range values {
		out[val.Name] = val.Value
	}
	return out
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if logCleanup != nil {
		logCleanup()
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(ver string) {
	version = ver
	rootCmd.Version = ver
}
