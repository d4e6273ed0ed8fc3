package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/vcf"
)

// stdinArg selects standard input in place of a file name.
const stdinArg = "-"

// readCard parses the card at path, or standard input for "-".
func (c *cli) readCard(cmd *cobra.Command, path string) (*vcf.Card, error) {
	if path == stdinArg {
		return vcf.ParseReader(cmd.InOrStdin())
	}
	return vcf.ReadFile(path)
}

// singleStdin rejects argument lists naming standard input more than once:
// it can only be read once.
func singleStdin(_ *cobra.Command, args []string) error {
	seen := false
	for _, arg := range args {
		if arg != stdinArg {
			continue
		}
		if seen {
			return errors.New(config.ErrStdinRepeated)
		}
		seen = true
	}
	return nil
}

// reason localizes the kind prefix of a card error.
func (c *cli) reason(err error) string {
	kind := vcf.KindOf(err)
	detail := strings.TrimPrefix(err.Error(), kind.String())
	return c.tr.Kind(kind) + detail
}

func (c *cli) reportOK(key, file string) {
	fmt.Fprintln(c.stdout, okStyle.Render(c.tr.MsgData(key, map[string]any{"File": file})))
}

func (c *cli) reportFail(file string, err error) {
	fmt.Fprintln(c.stdout, failStyle.Render(c.tr.MsgData(config.TKeyReportInvalid, map[string]any{
		"File":   file,
		"Reason": c.reason(err),
	})))
}

func newParseCommand(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseParse,
		Short: config.CmdShortParse,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := app.readCard(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, card.String())
			return nil
		},
	}
}

// newValidateCommand reports every argument and fails if any card is invalid.
func newValidateCommand(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseValidate,
		Short: config.CmdShortValidate,
		Args:  cobra.MatchAll(cobra.MinimumNArgs(1), singleStdin),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				// Parse and validate failures are reported the same way.
				card, err := app.readCard(cmd, path)
				if err == nil {
					err = vcf.Validate(card)
				}
				if err != nil {
					failed++
					app.reportFail(path, err)
					continue
				}
				app.reportOK(config.TKeyReportValid, path)
			}
			if failed > 0 {
				return fmt.Errorf("%s: %d/%d", config.ErrCardsInvalid, failed, len(args))
			}
			return nil
		},
	}
}

// newFormatCommand rewrites a card in canonical property order, to stdout or
// to the --output file.
func newFormatCommand(app *cli) *cobra.Command {
	var (
		output     string
		noValidate bool
	)
	cmd := &cobra.Command{
		Use:   config.CmdUseFormat,
		Short: config.CmdShortFormat,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := app.readCard(cmd, args[0])
			if err != nil {
				return err
			}
			// Without validation, unknown properties survive the rewrite.
			if !noValidate {
				if err := vcf.Validate(card); err != nil {
					return err
				}
			}
			if output != "" {
				if err := vcf.WriteFile(output, card); err != nil {
					return err
				}
				app.reportOK(config.TKeyReportWritten, output)
				return nil
			}
			return vcf.Write(app.stdout, card)
		},
	}
	cmd.Flags().StringVarP(&output, config.FlagOutput, "o", "", config.FlagDescOutput)
	cmd.Flags().BoolVar(&noValidate, config.FlagNoValidate, false, config.FlagDescNoValidate)
	return cmd
}

// newNewCommand creates a card holding only FN (and optionally a UID).
func newNewCommand(app *cli) *cobra.Command {
	var (
		withUID bool
		force   bool
	)
	cmd := &cobra.Command{
		Use:   config.CmdUseNew,
		Short: config.CmdShortNew,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, name := args[0], args[1]
			if !vcf.HasCardExtension(path) {
				return errors.New(config.ErrFileName)
			}
			// Never clobber an existing card by accident.
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s: %s", config.ErrFileExists, path)
				}
			}

			card := vcf.NewMinimalCard(name)
			if withUID {
				card.Optional.InsertBack(vcf.NewProperty("", config.VCardUID, config.URNUUIDPrefix+uuid.NewString()))
			}
			if err := vcf.Validate(card); err != nil {
				return err
			}
			if err := vcf.WriteFile(path, card); err != nil {
				return err
			}
			app.reportOK(config.TKeyReportWritten, path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withUID, config.FlagUID, false, config.FlagDescUID)
	cmd.Flags().BoolVarP(&force, config.FlagForce, "f", false, config.FlagDescForce)
	return cmd
}

// newRenameCommand replaces FN in place. The card must still validate
// afterwards or the file is left untouched.
func newRenameCommand(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseRename,
		Short: config.CmdShortRename,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			card, err := vcf.ReadFile(path)
			if err != nil {
				return err
			}
			if err := card.SetFormattedName(args[1]); err != nil {
				return err
			}
			if err := vcf.Validate(card); err != nil {
				return err
			}
			if err := vcf.WriteFile(path, card); err != nil {
				return err
			}
			app.reportOK(config.TKeyReportWritten, path)
			return nil
		},
	}
}
