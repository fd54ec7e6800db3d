package cli

import (
	"bufio"
	"context"
	"os"
)

// Root greets the user and runs the REPL until EOF or quit.
func (a *App) Root(ctx context.Context) {
	printlnFn("autocheck CLI (type 'help' for commands)")

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
