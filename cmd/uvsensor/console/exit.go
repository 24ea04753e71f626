package console

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Exit codes returned by uvsensor commands.
const (
	CodeError       = 1
	CodeConfig      = 2
	CodeNotDetected = 3
)

func Exit(code int, msg string, args ...interface{}) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf(msg, args...), code)
}
