package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"cctv-surveillance-reports/be/client/apiclient"
	"cctv-surveillance-reports/be/client/session"
	"cctv-surveillance-reports/be/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is the state shared by every command of one invocation.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	apiURL      string
	sessionPath string
	verbose     bool

	log    *zap.Logger
	store  *session.Store
	sess   session.Session
	reader *bufio.Reader
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Submit, browse and export CCTV surveillance reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api", getEnv("REPORTS_API_URL", apiclient.DefaultBaseURL), "report server API base URL")
	flags.StringVar(&a.sessionPath, "session", "", "session file (default: <user config dir>/cctv-reports/session.json)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newActivityCmd(a),
		newStatusCmd(a),
		newUserCmd(a),
	)
	return root
}

func (a *app) init() error {
	if a.log == nil {
		a.log = logging.NewCLI(a.verbose)
	}
	if a.sessionPath == "" {
		path, err := session.DefaultPath()
		if err != nil {
			return err
		}
		a.sessionPath = path
	}
	a.store = session.NewStore(a.sessionPath)

	sess, err := a.store.Load()
	if err != nil {
		a.log.Warn("ignoring unreadable session, please log in again", zap.Error(err))
		sess = session.Session{}
	}
	a.sess = sess
	a.reader = bufio.NewReader(a.in)
	a.log.Debug("client ready",
		zap.String("api", a.apiURL),
		zap.String("session", a.sessionPath),
		zap.Bool("authenticated", sess.Authenticated),
	)
	return nil
}

func (a *app) client() *apiclient.Client {
	return apiclient.New(a.apiURL, apiclient.WithToken(a.sess.Token))
}

// require fails unless the current session may open route.
func (a *app) require(route session.Route) error {
	if a.sess.CanAccess(route) {
		return nil
	}
	if !a.sess.Authenticated {
		return fmt.Errorf("not logged in, run `reportctl login` first")
	}
	return fmt.Errorf("role %q may not open %s", a.sess.Role, route)
}

// ask prints label and returns the next input line without its newline.
func (a *app) ask(label string) string {
	fmt.Fprint(a.out, label)
	line, _ := a.reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func (a *app) confirm(prompt string) bool {
	switch strings.ToLower(strings.TrimSpace(a.ask(prompt + " [y/N]: "))) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (a *app) notify(msg string) {
	fmt.Fprintln(a.errOut, msg)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
