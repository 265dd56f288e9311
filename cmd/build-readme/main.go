// Command build-readme regenerates README.md from README.md.tmpl and the
// built-in command set.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/docs"
)

type options struct {
	template, out, prefix string
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("build-readme: failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:           "build-readme",
		Short:         "Render README.md from the template and the built-in commands",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			if err := docs.UpdateReadme(o.template, o.out, o.prefix, command.Defaults()); err != nil {
				return err
			}
			log.Info().Str("out", o.out).Msg("build-readme: README updated")
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&o.template, "template", "README.md.tmpl", "template path")
	fs.StringVar(&o.out, "out", "README.md", "output path")
	fs.StringVar(&o.prefix, "prefix", "!", "command prefix shown in examples")
	return cmd
}
