package main

import (
	"fmt"
	"os"
	"strings"

	"chirp/service"
)

// CliVersion is reported by the version command.
const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches os.Args to a subcommand and exits with its code.
func RealMain() {
	if len(os.Args) < 2 {
		service.PrintHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "version":
		fmt.Printf("chirp version %s\n", CliVersion)
	default:
		if code := service.HandleCommand(append([]string{cmd}, os.Args[2:]...)); code != 0 {
			exit(code)
		}
	}
}
