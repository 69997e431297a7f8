// Command reportctl is the operator client for the surveillance report server.
package main

import (
	"errors"
	"fmt"
	"os"

	"cctv-surveillance-reports/be/client/apiclient"
)

func main() {
	a := &app{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

// describe turns client errors into the message shown to the operator.
func describe(err error) string {
	var apiErr *apiclient.APIError
	var netErr *apiclient.TransientError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.As(err, &netErr):
		return fmt.Sprintf("cannot reach the report server (%v)", netErr.Err)
	default:
		return err.Error()
	}
}
