package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

// TestNewTestLogger tests creating a test logger
func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger(t)
	if logger == nil {
		t.Fatal("NewTestLogger() returned nil")
	}
	logger.Info("test message")
}

// TestNewObservedLogger tests that entries are recorded
func TestNewObservedLogger(t *testing.T) {
	logger, logs := NewObservedLogger(zap.NewAtomicLevelAt(zap.InfoLevel))
	logger.Debug("dropped")
	logger.Info("kept")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
}

// TestWriteFile tests writing nested files
func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := WriteFile(t, dir, "abis/erc20.json", ERC20ABI)

	if path != filepath.Join(dir, "abis", "erc20.json") {
		t.Errorf("WriteFile() path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != ERC20ABI {
		t.Error("WriteFile() content mismatch")
	}
}

// TestWriteGreeterProject tests the project fixture layout
func TestWriteGreeterProject(t *testing.T) {
	dir := WriteGreeterProject(t)

	for _, name := range []string{"config.yaml", filepath.Join("abis", "erc20.json")} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}
