package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/credentials"
	"github.com/tartampluch/go-contacts/internal/engine"
)

// newFetchCommand imports a remote address book: every card that validates is
// written as its own file in the cards directory, existing files are kept
// unless --force is given.
func newFetchCommand(app *cli) *cobra.Command {
	var (
		dir   string
		user  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   config.CmdUseFetch,
		Short: config.CmdShortFetch,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Arguments and flags win over the settings file.
			remote := engine.RemoteConfig{
				URL:  app.settings.RemoteURL,
				User: app.settings.RemoteUser,
			}
			if len(args) == 1 {
				remote.URL = args[0]
			}
			if user != "" {
				remote.User = user
			}
			// A missing keyring entry means an anonymous download.
			remote.Pass = credentials.Lookup(remote.User)

			gen := &engine.Generator{Fetcher: engine.NewHTTPFetcher()}
			res, err := gen.Import(cmd.Context(), remote, app.cardsDir(dir), force)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, okStyle.Render(app.tr.MsgData(config.TKeyReportFetched, map[string]any{"Count": len(res.Written)})))
			if res.Skipped > 0 {
				fmt.Fprintln(app.stdout, dimStyle.Render(app.tr.MsgData(config.TKeyReportSkipped, map[string]any{"Count": res.Skipped})))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, config.FlagDir, "", config.FlagDescDir)
	cmd.Flags().StringVarP(&user, config.FlagUser, "u", "", config.FlagDescUser)
	cmd.Flags().BoolVarP(&force, config.FlagForce, "f", false, config.FlagDescForce)
	return cmd
}

// newCredentialsCommand manages the password of the remote address book user.
// Passwords only ever live in the system keyring, never in the settings file.
func newCredentialsCommand(app *cli) *cobra.Command {
	credsCmd := &cobra.Command{
		Use:   config.CmdUseCredentials,
		Short: config.CmdShortCredentials,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	credsCmd.AddCommand(&cobra.Command{
		Use:   config.CmdUseCredentialsSet,
		Short: config.CmdShortCredentialsSet,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user := app.settings.RemoteUser
			if len(args) == 1 {
				user = args[0]
			}
			// Only the first line counts, so "echo secret | go-contacts credentials set" works.
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New(config.ErrPasswordEmpty)
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New(config.ErrPasswordEmpty)
			}
			if err := credentials.Set(user, password); err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, okStyle.Render(app.tr.MsgData(config.TKeyReportCredsSet, map[string]any{"User": user})))
			return nil
		},
	})

	credsCmd.AddCommand(&cobra.Command{
		Use:   config.CmdUseCredentialsDelete,
		Short: config.CmdShortCredentialsDelete,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user := app.settings.RemoteUser
			if len(args) == 1 {
				user = args[0]
			}
			return credentials.Delete(user)
		},
	})
	return credsCmd
}
