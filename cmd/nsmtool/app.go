// Command nsmtool is a one-shot debug client for the NSM protocol over
// MCTP: every subcommand dials the local mctp-mux directly, issues one
// request to a single endpoint id, prints the decoded response, and
// exits. It is deliberately independent of cmd/nsmd -- grounded on
// leptonai-gpud/cmd/gpud's urfave/cli.App + per-command package layout,
// adapted down to nsmtool's single flat command set.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/NVIDIA/nsmd-sub002/nsm/mctp"
	"github.com/NVIDIA/nsmd-sub002/pkg/log"
	"github.com/NVIDIA/nsmd-sub002/version"
)

// Exit codes per the transport/completion-code/timeout contract.
const (
	exitOK                 = 0
	exitTransportOrEncode  = 1
	exitNonSuccessCompCode = 2
	exitTimeout            = 3
)

const usage = `
# check a device responds at all
nsmtool ping --eid 8

# read a temperature sensor
nsmtool temp --eid 8 --sensor-id 0
`

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	app := newApp()
	if err := app.Run(args); err != nil {
		if ce, ok := err.(*cliError); ok {
			fmt.Fprintf(os.Stderr, "%s\n", ce.msg)
			return ce.code
		}
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return exitTransportOrEncode
	}
	return exitOK
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "nsmtool"
	app.Version = version.Version
	app.Usage = usage
	app.Description = "send one NSM request over MCTP and print the decoded response"
	app.Flags = []cli.Flag{
		cli.UintFlag{Name: "eid", Usage: "MCTP endpoint id of the target device", Value: 8},
		cli.StringFlag{Name: "socket", Usage: "abstract-namespace mctp-mux socket name", Value: mctp.DefaultSocketName},
		cli.DurationFlag{Name: "timeout", Usage: "response timeout", Value: 2 * time.Second},
		cli.StringFlag{Name: "log-level", Usage: "debug|info|warn|error", Value: "warn"},
	}
	app.Commands = commands()
	return app
}

// cliError pins an exit code to an error message, the same role
// cmdcommon.AsJSONCommandError plays in the teacher's CLI, simplified
// to a plain exit code since nsmtool has no JSON-output mode.
type cliError struct {
	code int
	msg  string
}

func (e *cliError) Error() string { return e.msg }

func failf(code int, format string, args ...any) error {
	return &cliError{code: code, msg: fmt.Sprintf(format, args...)}
}

// client holds everything a subcommand's Action needs: a connected
// socket, the target eid, and a deadline.
type client struct {
	sock *mctp.Socket
	eid  uint8
	ctx  context.Context
}

// dial applies --log-level, connects to --socket, and returns a client
// plus a cleanup func the caller must defer.
func dial(c *cli.Context) (*client, func(), error) {
	lvl, err := log.ParseLogLevel(c.String("log-level"))
	if err != nil {
		return nil, nil, failf(exitTransportOrEncode, "invalid log level: %v", err)
	}
	log.Logger = log.CreateLogger(lvl, "")

	sock, err := mctp.Dial(c.String("socket"))
	if err != nil {
		return nil, nil, failf(exitTransportOrEncode, "dial mctp-mux: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	cl := &client{sock: sock, eid: uint8(c.Uint("eid")), ctx: ctx}
	cleanup := func() {
		cancel()
		sock.Close()
	}
	return cl, cleanup, nil
}

// sendRecv writes req as frame [tag=0, eid, PCIVDM] and blocks for the
// next frame read from the socket or the client's deadline; the reply's
// eid and instance id are not checked. A deadline is classified as
// exitTimeout rather than the generic transport failure code.
func (cl *client) sendRecv(req []byte) ([]byte, error) {
	if err := cl.sock.WriteFrame(0, cl.eid, req); err != nil {
		return nil, failf(exitTransportOrEncode, "write: %v", err)
	}
	type result struct {
		payload []byte
		err     error
	}
	done := make(chan result, 1)
	go func() {
		buf := make([]byte, 4096)
		_, _, _, payload, err := cl.sock.ReadFrame(buf)
		done <- result{payload, err}
	}()
	select {
	case <-cl.ctx.Done():
		return nil, failf(exitTimeout, "timed out waiting for response from eid %d", cl.eid)
	case r := <-done:
		if r.err != nil {
			return nil, failf(exitTransportOrEncode, "read: %v", r.err)
		}
		return r.payload, nil
	}
}
