package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/florescendo/talentos/core/report"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var errUnknownFormat = errors.New("unknown format: use json or yaml")

func (cli *commandLine) parseCmd() *cobra.Command {
	var (
		html     bool
		format   string
		sessions int
	)
	cmd := &cobra.Command{
		Use:   "parse [FILE]",
		Short: "Parse a report and print the resulting record",
		Long: "Parse a report copied from the LMS (FILE, or stdin when omitted) and print the aluno record.\n" +
			"Saved HTML pages are detected automatically; --html forces the extraction.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := cli.readReport(cmd, args)
			if err != nil {
				return err
			}
			if sessions == 0 {
				sessions = cli.conf.Report.Sessions
			}
			rec, err := cli.parse(text, html, sessions)
			if err != nil {
				return err
			}
			return cli.printRecord(rec, format)
		},
	}
	cmd.Flags().BoolVar(&html, "html", false, "treat the input as an HTML page")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json | yaml")
	cmd.Flags().IntVar(&sessions, "aulas", 0, "number of aulas in the course (defaults to report_sessions)")
	return cmd
}

func (cli *commandLine) parse(text string, html bool, sessions int) (report.Record, error) {
	if html || report.LooksLikeHTML(text) {
		extracted, err := report.ExtractText(strings.NewReader(text))
		if err != nil {
			return report.Record{}, errors.Wrap(err, "extracting report text")
		}
		text = extracted
	}
	rec, err := report.ParseN(text, sessions)
	return rec, errors.Wrap(err, "parsing report")
}

func (cli *commandLine) printRecord(rec report.Record, format string) error {
	var (
		out []byte
		err error
	)
	switch strings.ToLower(format) {
	case formatJSON:
		out, err = json.MarshalIndent(rec, "", "  ")
		out = append(out, '\n')
	case formatYAML:
		out, err = yaml.Marshal(rec)
	default:
		return errUnknownFormat
	}
	if err != nil {
		return errors.Wrap(err, "encoding record")
	}
	_, err = cli.out.Write(out)
	return err
}

func (cli *commandLine) importCmd() *cobra.Command {
	var class string
	cmd := &cobra.Command{
		Use:   "import [FILE]",
		Short: "Import a report into the roster, creating or updating its aluno",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := cli.readReport(cmd, args)
			if err != nil {
				return err
			}
			d, err := cli.getDeps()
			if err != nil {
				return err
			}

			res, err := d.svc.ImportReport(context.Background(), text, class)
			if err != nil {
				return errors.Wrap(err, "importing report")
			}
			action := "atualizado"
			if res.Created {
				action = "criado"
			}
			s := res.Student
			_, err = fmt.Fprintf(cli.out, "Aluno %s %s (%s): %d pendências, %d%% concluído\n",
				s.Name, action, s.Class, s.TotalPending, s.Progress())
			return err
		},
	}
	cmd.Flags().StringVarP(&class, "turma", "t", "", "turma of the aluno (kept when empty)")
	return cmd
}
