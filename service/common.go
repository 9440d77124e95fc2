package service

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
)

// Database path - variable to allow testing with different paths
var dbPath = "data/badger"

// Backup directory used when backup is run without --out
var backupDir = "data/backups"

// newFlagSet builds a flag set for an admin command with the shared --db
// flag.
func newFlagSet(name string) (*pflag.FlagSet, *string) {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	db := flags.String("db", dbPath, "badger directory")
	return flags, db
}

// parseFlags parses args and reports an exit code when parsing stops the
// command.
func parseFlags(flags *pflag.FlagSet, args []string) (int, bool) {
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0, false
		}
		fmt.Printf("Error: %v\n", err)
		return 1, false
	}
	return 0, true
}

// confirm asks a yes/no question on stdin. Anything but y or Y is a no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}
