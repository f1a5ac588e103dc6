package main

import (
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/florescendo/talentos/core"
	"github.com/florescendo/talentos/core/student"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errNoRecipients = errors.New("no digest recipients: set digest_recipients or pass --to")
)

// deps are the services only some commands need; they are resolved on first use.
type deps struct {
	db     *sqlx.DB
	svc    *student.Service
	mailer core.EmailService
}

type commandLine struct {
	conf    *core.Config
	logger  core.Logger
	in      io.Reader
	out     io.Writer
	resolve func() (deps, error)

	deps     deps
	resolved bool
}

func newCommandLine(conf *core.Config, logger core.Logger, resolve func() (deps, error)) *commandLine {
	return &commandLine{
		conf:    conf,
		logger:  logger,
		in:      os.Stdin,
		out:     os.Stdout,
		resolve: resolve,
	}
}

func (cli *commandLine) getDeps() (deps, error) {
	if cli.resolved {
		return cli.deps, nil
	}
	d, err := cli.resolve()
	if err != nil {
		return deps{}, errors.Wrap(err, "setting up dependencies")
	}
	cli.deps, cli.resolved = d, true
	return d, nil
}

func (cli *commandLine) close() {
	if cli.resolved && cli.deps.db != nil {
		if err := cli.deps.db.Close(); err != nil {
			cli.logger.Error("closing database", err)
		}
	}
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         cli.conf.AppName + " administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(cli.in)
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(cli.migrateCmd())
	root.AddCommand(cli.parseCmd())
	root.AddCommand(cli.importCmd())
	root.AddCommand(cli.rankingCmd())
	root.AddCommand(cli.digestCmd())
	return root
}

// run executes the command line `args` (without the program name).
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.Execute()
}

// readReport reads the report from the file named by `args` or, without one, from stdin.
func (cli *commandLine) readReport(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", errors.Wrap(err, "reading report")
		}
		return string(content), nil
	}

	if f, ok := cli.in.(*os.File); ok && isTerminalFunc(int(f.Fd())) {
		cmd.PrintErrln("Cole o relatório e finalize com Ctrl-D:")
	}
	content, err := io.ReadAll(cli.in)
	if err != nil {
		return "", errors.Wrap(err, "reading report")
	}
	return string(content), nil
}
