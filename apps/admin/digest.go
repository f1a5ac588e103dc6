package main

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/florescendo/talentos/core"
	appfs "github.com/florescendo/talentos/fs"
)

func (cli *commandLine) digestCmd() *cobra.Command {
	var to []string
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Email the pendency digest of the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recipients := cli.conf.DigestRecipients()
			if len(to) > 0 {
				recipients = recipients[:0]
				for _, addr := range to {
					a, err := mail.ParseAddress(addr)
					if err != nil {
						return errors.Wrapf(err, "parsing recipient %q", addr)
					}
					recipients = append(recipients, *a)
				}
			}
			if len(recipients) == 0 {
				return errNoRecipients
			}

			d, err := cli.getDeps()
			if err != nil {
				return err
			}
			if err = core.ParseEmailTemplates(appfs.FS, cli.conf); err != nil {
				return err
			}

			data, err := d.svc.SendDigest(context.Background(), d.mailer, recipients)
			if err != nil {
				return errors.Wrap(err, "sending digest")
			}
			d.mailer.Wait()

			_, err = fmt.Fprintf(cli.out, "Resumo enviado para %d destinatário(s): %d de %d alunos com pendências\n",
				len(recipients), len(data.Entries), data.Total)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&to, "to", nil, "recipients, overriding digest_recipients")
	return cmd
}
