package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/florescendo/talentos/core/student"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
)

func (cli *commandLine) rankingCmd() *cobra.Command {
	var (
		limit int
		class string
	)
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Print the alunos with the most delivered and the most pending aulas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := cli.getDeps()
			if err != nil {
				return err
			}
			filter := student.QueryFilter{Class: class}
			filter.Clean()

			ranking, err := d.svc.Ranking(context.Background(), filter, limit)
			if err != nil {
				return errors.Wrap(err, "ranking students")
			}
			printRankTable(cli.out, "Mais entregas", ranking.MostDelivered)
			_, _ = fmt.Fprintln(cli.out)
			printRankTable(cli.out, "Mais pendências", ranking.MostPending)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", student.DefaultRankingLimit, "number of alunos per ranking")
	cmd.Flags().StringVarP(&class, "turma", "t", "", "only rank alunos of this turma")
	return cmd
}

func printRankTable(out io.Writer, title string, entries []student.RankEntry) {
	_, _ = fmt.Fprintln(out, titleStyle.Render(title))
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, mutedStyle.Render("nenhum aluno"))
		return
	}

	var rows strings.Builder
	w := tabwriter.NewWriter(&rows, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tALUNO\tTURMA\tENTREGUES\tPENDÊNCIAS\tPROGRESSO")
	for i, e := range entries {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d%%\n", i+1, e.Name, e.Class, e.Delivered, e.Pending, e.Progress)
	}
	_ = w.Flush()

	lines := strings.Split(strings.TrimRight(rows.String(), "\n"), "\n")
	_, _ = fmt.Fprintln(out, mutedStyle.Render(lines[0]))
	for _, line := range lines[1:] {
		_, _ = fmt.Fprintln(out, line)
	}
}
