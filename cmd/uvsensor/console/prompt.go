package console

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
)

const (
	Yes = "y"
	No  = "n"
)

// Confirm asks a yes/no question. An empty answer selects def.
func Confirm(question string, def string) (bool, error) {
	options := []string{Yes, No}
	if def == No {
		options = []string{No, Yes}
	}
	answer, err := Prompt(question, options...)
	if err != nil {
		return false, err
	}
	return answer == Yes, nil
}

// Prompt reads one line from the terminal. When constraints are given the first one
// is the default and any answer outside of them falls back to it.
func Prompt(question string, constraints ...string) (string, error) {
	prompt := question
	if len(constraints) > 0 {
		rest := make([]string, 0, len(constraints))
		rest = append(rest, strings.ToUpper(constraints[0]))
		rest = append(rest, constraints[1:]...)
		prompt = fmt.Sprintf("%s [%s]: ", question, strings.Join(rest, "/"))
	}
	rl, err := readline.New(prompt)
	if err != nil {
		return "", err
	}
	defer func() { _ = rl.Close() }()
	response, err := rl.Readline()
	if err != nil {
		return "", err
	}
	if len(constraints) == 0 {
		return response, nil
	}
	normalized := strings.ToLower(strings.TrimSpace(response))
	for _, c := range constraints {
		if normalized == c {
			return normalized, nil
		}
	}
	return constraints[0], nil
}
