package console

import "github.com/fatih/color"

// Available ANSI colors
var (
	Yellow  = color.New(color.FgYellow).SprintFunc()
	Red     = color.New(color.FgRed).SprintFunc()
	Green   = color.New(color.FgGreen).SprintFunc()
	Magenta = color.New(color.FgMagenta).SprintFunc()
	White   = color.New(color.FgHiWhite).SprintFunc()
	Bold    = color.New(color.Bold).SprintFunc()
)

// Risk colors a risk level name the way UV charts usually do.
func Risk(level uint16, name string) string {
	switch level {
	case 0:
		return Green(name)
	case 1, 2:
		return Yellow(name)
	case 3:
		return Red(name)
	default:
		return Magenta(name)
	}
}
