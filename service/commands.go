package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chirp/app/auth"
	"chirp/app/config"
	"chirp/app/models"
	"chirp/app/repositories"
)

const defaultTokenTTL = 24 * time.Hour

// HandleCommand runs a chirp subcommand and returns its exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		PrintHelp()
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "serve":
		return RunServer(args[1:])
	case "clean":
		return clean(args[1:])
	case "init":
		return initDb(args[1:])
	case "backup":
		return backup(args[1:])
	case "restore":
		return restore(args[1:])
	case "user":
		return userCommand(args[1:])
	case "token":
		return token(args[1:])
	case "help":
		PrintHelp()
		return 0
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		PrintHelp()
		return 1
	}
}

// PrintHelp prints help for the chirp subcommands.
func PrintHelp() {
	helpText := `Usage: chirp <command> [options]

Commands:
  serve [--config f] [--addr a] [--db p]    Run the post service
  init [--db p]                             Initialize a new empty database
  clean [--db p] [--yes]                    Remove the database
  backup [--db p] [--out dir]               Create a backup of the database
  restore [--db p] [--yes] <file>           Restore the database from a backup
  user add <id> [--username u] [--full-name n] [--image-url i]
                                            Add or update a local user profile
  token <userId> [--ttl d] [--config f]     Print a session token for a user
  version                                   Show version information
  help                                      Display this help message
`
	fmt.Println(helpText)
}

// clean removes the database.
func clean(args []string) int {
	flags, db := newFlagSet("clean")
	yes := flags.Bool("yes", false, "do not ask for confirmation")
	if code, ok := parseFlags(flags, args); !ok {
		return code
	}

	if _, err := os.Stat(*db); os.IsNotExist(err) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}

	if !*yes && !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return 1
	}

	if err := os.RemoveAll(*db); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

// initDb initializes a new empty database.
func initDb(args []string) int {
	flags, db := newFlagSet("init")
	if code, ok := parseFlags(flags, args); !ok {
		return code
	}

	if _, err := os.Stat(*db); err == nil {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 1
	}

	if err := os.MkdirAll(*db, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	store, err := repositories.OpenStore(*db)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer store.Close()

	fmt.Println("Database initialized successfully")
	return 0
}

// backup writes a full Badger backup into the backup directory.
func backup(args []string) int {
	flags, db := newFlagSet("backup")
	out := flags.String("out", backupDir, "directory for the backup file")
	if code, ok := parseFlags(flags, args); !ok {
		return code
	}

	if _, err := os.Stat(*db); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return 1
	}

	if err := os.MkdirAll(*out, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	store, err := repositories.OpenStore(*db)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	backupFile := filepath.Join(*out, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if _, err := store.DB().Backup(f, 0); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore replaces the database with the contents of a backup file.
func restore(args []string) int {
	flags, db := newFlagSet("restore")
	yes := flags.Bool("yes", false, "replace an existing database without asking")
	if code, ok := parseFlags(flags, args); !ok {
		return code
	}
	if flags.NArg() < 1 {
		fmt.Println("Error: backup file path required for restore")
		return 1
	}
	backupFile := flags.Arg(0)

	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if _, err := os.Stat(*db); err == nil {
		if !*yes && !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(*db); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	if err := os.MkdirAll(*db, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	store, err := repositories.OpenStore(*db)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return store.DB().Load(f, 4)
	}()
	if err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}

// userCommand manages profiles in the local identity directory.
func userCommand(args []string) int {
	if len(args) < 1 || args[0] != "add" {
		fmt.Println("Usage: chirp user add <id> [--username u] [--full-name n] [--image-url i]")
		return 1
	}

	flags, db := newFlagSet("user add")
	username := flags.String("username", "", "unique username")
	fullName := flags.String("full-name", "", "display name")
	imageURL := flags.String("image-url", "", "avatar URL")
	if code, ok := parseFlags(flags, args[1:]); !ok {
		return code
	}
	if flags.NArg() < 1 {
		fmt.Println("Error: user id required")
		return 1
	}

	user := &models.User{
		ID:       flags.Arg(0),
		Username: models.StringPtr(*username),
		FullName: models.StringPtr(*fullName),
		ImageURL: *imageURL,
	}
	if err := user.Validate(); err != nil {
		fmt.Printf("Invalid user: %v\n", err)
		return 1
	}

	store, err := repositories.OpenStore(*db)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	if err := store.Users().Put(context.Background(), user); err != nil {
		fmt.Printf("Failed to save user: %v\n", err)
		return 1
	}
	fmt.Printf("User %s saved\n", user.ID)
	return 0
}

// token prints a session token signed with the configured secret.
func token(args []string) int {
	flags, _ := newFlagSet("token")
	ttl := flags.Duration("ttl", defaultTokenTTL, "token lifetime")
	configPath := flags.String("config", "", "path to a YAML config file")
	if code, ok := parseFlags(flags, args); !ok {
		return code
	}
	if flags.NArg() < 1 {
		fmt.Println("Error: user id required")
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	sessions, err := auth.NewSessions(cfg.Session.Secret)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	signed, err := sessions.Issue(flags.Arg(0), *ttl)
	if err != nil {
		fmt.Printf("Failed to issue token: %v\n", err)
		return 1
	}
	fmt.Println(signed)
	return 0
}
