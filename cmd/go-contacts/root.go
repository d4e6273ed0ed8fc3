package main

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/i18n"
)

// Terminal styles. lipgloss drops the colors when the output is not a TTY.
var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// cli carries the state shared by all subcommands once the root
// PersistentPreRunE has run.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logFormat  string
	debug      bool

	settings     config.Settings
	settingsFile string
	tr           *i18n.Translator
	logCloser    io.Closer
}

// close releases what setup opened.
func (c *cli) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
		c.logCloser = nil
	}
}

// setup loads the settings, configures logging and selects the language.
func (c *cli) setup(cmd *cobra.Command) error {
	s, file, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	// An explicit --log-format beats the file and the environment.
	if cmd.Flags().Changed(config.FlagLogFormat) {
		s.LogFormat = c.logFormat
		if err := s.Validate(); err != nil {
			return err
		}
	}
	c.settings = s
	c.settingsFile = file
	c.start()
	return nil
}

// setupDefaults is setup for commands that must run before a settings file exists.
func (c *cli) setupDefaults() {
	c.settings = config.DefaultSettings()
	if c.logFormat == config.LogFormatJSON {
		c.settings.LogFormat = c.logFormat
	}
	c.start()
}

// start finishes setup once c.settings is final.
func (c *cli) start() {
	s := c.settings
	c.logCloser = setupLogging(c.stderr, s.LogFormat, c.debug)
	logStartupInfo()
	slog.Debug(config.MsgSettingsUsed,
		config.LogKeyComponent, config.CompSettings,
		config.LogKeySource, c.settingsFile,
		config.LogKeyLang, s.Language,
	)
	c.tr = i18n.New(s.Language)
}

// newRootCommand builds the command tree. Errors are printed by runMain, not
// by cobra, so usage is not dumped on every failure.
func newRootCommand(app *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           config.AppCommand,
		Short:         config.CmdShortRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&app.configPath, config.FlagConfig, "", config.FlagDescConfig)
	pf.StringVar(&app.logFormat, config.FlagLogFormat, config.DefaultLogFormat, config.FlagDescLogFormat)
	pf.BoolVar(&app.debug, config.FlagDebug, false, config.FlagDescDebug)

	root.AddCommand(
		newParseCommand(app),
		newValidateCommand(app),
		newFormatCommand(app),
		newNewCommand(app),
		newRenameCommand(app),
		newListCommand(app),
		newIndexCommand(app),
		newFetchCommand(app),
		newServeCommand(app),
		newCredentialsCommand(app),
		newConfigCommand(app),
		newVersionCommand(app),
	)
	return root
}

// newVersionCommand skips setup: printing the version needs no settings.
func newVersionCommand(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseVersion,
		Short: config.CmdShortVersion,
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(app.stdout)
		},
	}
}
