// Package confirm guards destructive commands in protected environments.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"

	"medialib/internal/config"
)

// Prompt is the question asked before proceeding in a protected environment.
const Prompt = "Do you really wish to run this command? (yes/no) [no]: "

// Gate decides whether a command may proceed.
type Gate struct {
	Environment string
	Protected   []string
	// Force skips the check entirely.
	Force bool
	// Interactive reports whether In can answer a prompt. When false a
	// protected environment without Force is always denied.
	Interactive bool
	In          io.Reader
	Out         io.Writer
}

// New builds a gate for cfg's environment reading answers from in.
func New(cfg *config.Config, force bool, in io.Reader, out io.Writer) *Gate {
	return &Gate{
		Environment: cfg.Environment.Name,
		Protected:   cfg.Environment.Protected,
		Force:       force,
		Interactive: isTerminal(in),
		In:          in,
		Out:         out,
	}
}

// ConfirmToProceed returns true when the command may run.
func (g *Gate) ConfirmToProceed() bool {
	if g.Force || !slices.Contains(g.Protected, g.Environment) {
		return true
	}
	out := g.Out
	if out == nil {
		out = io.Discard
	}
	fmt.Fprintf(out, "Environment %q is protected.\n", g.Environment)
	if !g.Interactive || g.In == nil {
		fmt.Fprintln(out, "Re-run with --force to proceed without confirmation.")
		return false
	}
	fmt.Fprint(out, Prompt)
	line, err := bufio.NewReader(g.In).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	return isYes(line)
}

func isYes(answer string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
