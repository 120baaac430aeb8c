package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// envSteps maps the environment management steps of the Python setup onto
// their Go module equivalents.
var envSteps = [][2]string{
	{"python -m venv .venv", "go mod download          # dependencies live in the module cache"},
	{"pip freeze > requirements.txt", "go mod tidy              # go.mod and go.sum pin the dependency set"},
	{"pip install -r requirements.txt", "go mod download && go build ./cmd/fileagent"},
}

// envCmd prints how environment setup maps onto the Go toolchain
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show how to set up the environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Environment setup:")
		for _, step := range envSteps {
			fmt.Fprintf(out, "\n  %s\n    -> %s\n", step[0], step[1])
		}
		fmt.Fprintln(out, "\nAPI keys are read from GROQ_API_KEY or OPENAI_API_KEY, or from a .env file.")
		return nil
	},
}
