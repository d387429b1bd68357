// pkg/shell/activate.go
package shell

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ActivationScript renders the shell snippet that activates a profile:
// PATH first, then the shell's name for prompts and tooling
func ActivationScript(name, binDir string) string {
	var b strings.Builder
	b.WriteString("# generated by shellpin; do not edit\n")
	fmt.Fprintf(&b, "export PATH=%q:\"$PATH\"\n", binDir)
	fmt.Fprintf(&b, "export SHELLPIN_SHELL_NAME=%q\n", name)
	return b.String()
}

// Enter execs an interactive shell with the profile activated. It only
// returns on failure to start the shell.
func Enter(name, binDir string) error {
	sh := os.Getenv("SHELL")
	if sh == "" {
		sh = "/bin/sh"
	}

	env := append(os.Environ(),
		"PATH="+binDir+string(os.PathListSeparator)+os.Getenv("PATH"),
		"SHELLPIN_SHELL_NAME="+name,
	)

	fmt.Printf("Entering shell %q (exit to leave)\n", name)

	cmd := exec.Command(sh)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = env
	return cmd.Run()
}
