package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	TokenLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	ListVehicles(ctx context.Context) error
	AddVehicle(ctx context.Context) error
	DeleteVehicle(ctx context.Context) error
	RegisterExit(ctx context.Context) error
	RegisterReturn(ctx context.Context) error
	ListMovements(ctx context.Context) error
	ClearCompleted(ctx context.Context) error
	Sync(ctx context.Context) error
}

// runREPL reads a line from the scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "quit" or "q".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authenticate with username and password
//	  - token          — authenticate with a provisioning token
//	  - quit | q       — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - vehicles | v   — list the fleet with custody status
//	  - addvehicle     — register a vehicle
//	  - delvehicle     — remove a vehicle
//	  - exit           — register a gate exit
//	  - return         — register a return
//	  - movements | m  — list movements
//	  - clear          — prune completed movements from this device
//	  - sync           — merge the replica with the remote backend
//	  - logout         — log out
//	  - quit | q       — leave the program
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("autocheck %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (v)ehicles, addvehicle, delvehicle, exit, return, (m)ovements, clear, sync, logout, quit")
			} else {
				printlnFn("Available commands: login, token, quit")
			}

		case "login":
			_ = a.Login(ctx)

		case "token":
			_ = a.TokenLogin(ctx)

		case "v", "vehicles":
			_ = a.ListVehicles(ctx)

		case "addvehicle":
			_ = a.AddVehicle(ctx)

		case "delvehicle":
			_ = a.DeleteVehicle(ctx)

		case "exit":
			_ = a.RegisterExit(ctx)

		case "return":
			_ = a.RegisterReturn(ctx)

		case "m", "movements":
			_ = a.ListMovements(ctx)

		case "clear":
			_ = a.ClearCompleted(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "q", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
