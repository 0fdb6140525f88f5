// Command openfootprint records emissions, validates CSRD reports and serves
// the OpenFootprint API and web UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rshade/openfootprint/internal/cli"
	"github.com/rshade/openfootprint/pkg/version"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	root := cli.NewRootCmd(version.GetVersion())
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return extractExitCode(err)
}

// extractExitCode maps err to an exit code: 0 for nil, the code carried by
// an ExitError, otherwise 1.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode
	}
	return 1
}
