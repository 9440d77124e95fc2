package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chirp/app/auth"
	"chirp/app/models"
	"chirp/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(f func()) string {
	var buf bytes.Buffer
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	f()
	_ = w.Close()
	os.Stdout = oldStdout
	<-done

	return buf.String()
}

func mockStdin(input string, f func()) {
	oldStdin := os.Stdin
	r, w, _ := os.Pipe()
	os.Stdin = r

	// Write input in a goroutine to avoid blocking
	go func() {
		w.Write([]byte(input))
		w.Close()
	}()

	f()

	os.Stdin = oldStdin
}

func setupTestDB(t *testing.T) string {
	tmpDir := t.TempDir()
	oldDbPath, oldBackupDir := dbPath, backupDir
	dbPath = filepath.Join(tmpDir, "badger")
	backupDir = filepath.Join(tmpDir, "backups")
	t.Cleanup(func() {
		dbPath, backupDir = oldDbPath, oldBackupDir
	})
	return tmpDir
}

func run(args ...string) (int, string) {
	var code int
	output := captureOutput(func() {
		code = HandleCommand(args)
	})
	return code, output
}

func TestHandleCommand(t *testing.T) {
	setupTestDB(t)

	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectedExit   int
	}{
		{
			name:           "no arguments",
			args:           []string{},
			expectedOutput: "Usage: chirp <command> [options]",
			expectedExit:   1,
		},
		{
			name:           "help command",
			args:           []string{"help"},
			expectedOutput: "Usage: chirp <command> [options]",
			expectedExit:   0,
		},
		{
			name:           "unknown command",
			args:           []string{"unknown"},
			expectedOutput: "Unknown command: unknown",
			expectedExit:   1,
		},
		{
			name:           "restore without file",
			args:           []string{"restore"},
			expectedOutput: "Error: backup file path required for restore",
			expectedExit:   1,
		},
		{
			name:           "user without subcommand",
			args:           []string{"user"},
			expectedOutput: "Usage: chirp user add",
			expectedExit:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitCode, output := run(tt.args...)
			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}

func TestInitDb(t *testing.T) {
	setupTestDB(t)

	t.Run("initialize new database", func(t *testing.T) {
		code, output := run("init")
		assert.Equal(t, 0, code)
		assert.Contains(t, output, "Database initialized successfully")
		assert.DirExists(t, dbPath)
	})

	t.Run("initialize existing database", func(t *testing.T) {
		code, output := run("init")
		assert.Equal(t, 1, code)
		assert.Contains(t, output, "Database already exists")
	})
}

func TestClean(t *testing.T) {
	setupTestDB(t)

	t.Run("clean non-existent database", func(t *testing.T) {
		_, output := run("clean")
		assert.Contains(t, output, "Database is already clean")
	})

	t.Run("clean existing database - confirmed", func(t *testing.T) {
		run("init")
		require.DirExists(t, dbPath)

		var output string
		mockStdin("y\n", func() {
			_, output = run("clean")
		})

		assert.Contains(t, output, "Database cleaned successfully")
		assert.NoDirExists(t, dbPath)
	})

	t.Run("clean existing database - cancelled", func(t *testing.T) {
		run("init")
		require.DirExists(t, dbPath)

		var output string
		mockStdin("n\n", func() {
			_, output = run("clean")
		})

		assert.Contains(t, output, "Operation cancelled")
		assert.DirExists(t, dbPath)
	})

	t.Run("clean with --yes skips the prompt", func(t *testing.T) {
		code, output := run("clean", "--yes")
		assert.Equal(t, 0, code)
		assert.Contains(t, output, "Database cleaned successfully")
		assert.NoDirExists(t, dbPath)
	})
}

func TestUserAdd(t *testing.T) {
	setupTestDB(t)

	code, output := run("user", "add", "user_1", "--username", "alice", "--full-name", "Alice Liddell")
	require.Equal(t, 0, code, output)
	assert.Contains(t, output, "User user_1 saved")

	store, err := repositories.OpenStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	u, err := store.Users().GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "user_1", u.ID)
	require.NotNil(t, u.FullName)
	assert.Equal(t, "Alice Liddell", *u.FullName)

	code, output = run("user", "add")
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "user id required")
}

func TestBackupAndRestore(t *testing.T) {
	tmpDir := setupTestDB(t)

	t.Run("backup non-existent database", func(t *testing.T) {
		code, output := run("backup")
		assert.Equal(t, 1, code)
		assert.Contains(t, output, "No database exists to backup")
	})

	code, output := run("user", "add", "user_1", "--username", "alice")
	require.Equal(t, 0, code, output)

	var backupFile string
	t.Run("backup existing database", func(t *testing.T) {
		code, output := run("backup")
		require.Equal(t, 0, code, output)
		assert.Contains(t, output, "Database backed up successfully")

		files, err := filepath.Glob(filepath.Join(backupDir, "backup_*.db"))
		require.NoError(t, err)
		require.Len(t, files, 1)
		backupFile = files[0]
	})
	require.NotEmpty(t, backupFile)

	t.Run("restore non-existent backup", func(t *testing.T) {
		code, output := run("restore", filepath.Join(tmpDir, "nonexistent.db"))
		assert.Equal(t, 1, code)
		assert.Contains(t, output, "Backup file does not exist")
	})

	t.Run("restore empty backup", func(t *testing.T) {
		empty := filepath.Join(tmpDir, "empty.db")
		require.NoError(t, os.WriteFile(empty, nil, 0644))
		_, output := run("restore", empty)
		assert.Contains(t, output, "Backup file is empty")
	})

	t.Run("restore with existing database - cancelled", func(t *testing.T) {
		var output string
		mockStdin("n\n", func() {
			_, output = run("restore", backupFile)
		})
		assert.Contains(t, output, "Operation cancelled")
		assert.DirExists(t, dbPath)
	})

	t.Run("restore into a clean directory", func(t *testing.T) {
		code, output := run("clean", "--yes")
		require.Equal(t, 0, code, output)

		code, output = run("restore", backupFile)
		require.Equal(t, 0, code, output)
		assert.Contains(t, output, "Database restored successfully")

		store, err := repositories.OpenStore(dbPath)
		require.NoError(t, err)
		defer store.Close()
		u, err := store.Users().GetByID(context.Background(), "user_1")
		require.NoError(t, err)
		require.NotNil(t, u.Username)
		assert.Equal(t, "alice", *u.Username)
	})

	t.Run("restore over existing database - confirmed", func(t *testing.T) {
		var output string
		mockStdin("y\n", func() {
			_, output = run("restore", backupFile)
		})
		assert.Contains(t, output, "Database restored successfully")
	})
}

func TestToken(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHIRP_SESSION_SECRET", "token-test-secret")

	code, output := run("token", "user_1", "--ttl", "1h")
	require.Equal(t, 0, code, output)

	sessions, err := auth.NewSessions("token-test-secret")
	require.NoError(t, err)
	userID, err := sessions.Verify(strings.TrimSpace(output))
	require.NoError(t, err)
	assert.Equal(t, "user_1", userID)

	code, output = run("token")
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "user id required")
}

func TestNewApp(t *testing.T) {
	tmpDir := setupTestDB(t)
	t.Chdir(tmpDir)

	cfg := testConfig(t, filepath.Join(tmpDir, "app"))
	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Store.Users().Put(context.Background(), &models.User{
		ID:       "user_1",
		Username: models.StringPtr("alice"),
	}))
	assert.NotNil(t, app.Handler)
	assert.Equal(t, cfg.Store.BadgerPath, app.Store.Path())
}
