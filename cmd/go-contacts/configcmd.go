package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-contacts/internal/config"
)

// newConfigCommand groups the settings file helpers.
func newConfigCommand(app *cli) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   config.CmdUseConfig,
		Short: config.CmdShortConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   config.CmdUseConfigInit,
		Short: config.CmdShortConfigInit,
		Args:  cobra.NoArgs,
		// The file may not exist yet, so skip loading it.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			app.setupDefaults()
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := app.configPath
			if path == "" {
				p, err := config.DefaultSettingsPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := config.WriteSettings(path, config.DefaultSettings(), force); err != nil {
				return err
			}
			app.reportOK(config.TKeyReportWritten, path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, config.FlagForce, "f", false, config.FlagDescForce)
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   config.CmdUseConfigShow,
		Short: config.CmdShortConfigShow,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := app.settings.Encode()
			if err != nil {
				return err
			}
			// Say where the values came from; env-only settings have no file.
			if app.settingsFile != "" {
				fmt.Fprintln(app.stdout, dimStyle.Render("# "+app.settingsFile))
			}
			_, err = app.stdout.Write(data)
			return err
		},
	})
	return cfgCmd
}
