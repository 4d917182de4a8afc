package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// ERC20ABI declares the Transfer and Approval events of an ERC20 token
const ERC20ABI = `[
  {"type":"event","name":"Transfer","anonymous":false,"inputs":[
    {"name":"from","type":"address","indexed":true},
    {"name":"to","type":"address","indexed":true},
    {"name":"value","type":"uint256","indexed":false}]},
  {"type":"event","name":"Approval","anonymous":false,"inputs":[
    {"name":"owner","type":"address","indexed":true},
    {"name":"spender","type":"address","indexed":true},
    {"name":"value","type":"uint256","indexed":false}]}
]`

// GreeterConfig is an indexer config with one ABI-backed contract and one
// contract declared by signature, including a tuple parameter
const GreeterConfig = `name: greeter
networks:
  - id: 1
    start_block: 0
    contracts:
      - name: ERC20
        address: "0x6B175474E89094C44Da98b954EedeAC495271d0F"
        abi_file_path: abis/erc20.json
        handler: src/erc20.ts
        events:
          - event: Transfer
      - name: Greeter
        address: "0x9D02A17dE4E68545d3a58D3a20BbBE0399E05c9c"
        handler: src/greeter.ts
        events:
          - event: "NewGreeting(address user, (string,uint8) greeting)"
`

// NewTestLogger creates a logger that writes through t.Log
func NewTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t)
}

// NewObservedLogger creates a logger whose entries can be inspected
func NewObservedLogger(level zap.AtomicLevel) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

// WriteFile writes content to dir/name, creating parent directories
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// WriteProject creates a project directory holding config.yaml and the given
// extra files, and returns the directory
func WriteProject(t *testing.T, config string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		WriteFile(t, dir, name, content)
	}
	WriteFile(t, dir, "config.yaml", config)
	return dir
}

// WriteGreeterProject creates a project from GreeterConfig and ERC20ABI
func WriteGreeterProject(t *testing.T) string {
	t.Helper()
	return WriteProject(t, GreeterConfig, map[string]string{"abis/erc20.json": ERC20ABI})
}
