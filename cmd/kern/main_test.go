package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	tests := []struct {
		name         string
		config       string
		args         []string
		expectedExit int
	}{
		{
			name: "boots and shuts down once",
			config: `storage_dir: state
bundles:
  - location: b.yaml
  - location: a.yaml
    start: true
`,
			args:         []string{"kern", "run", "--once"},
			expectedExit: 0,
		},
		{
			name: "resolve prints wiring",
			config: `bundles:
  - location: a.yaml
  - location: b.yaml
`,
			args:         []string{"kern", "resolve"},
			expectedExit: 0,
		},
		{
			name:         "invalid refresh policy",
			config:       "refresh_policy: never\n",
			args:         []string{"kern", "run", "--once"},
			expectedExit: 1,
		},
		{
			name: "missing bundle content",
			config: `bundles:
  - location: nope.yaml
`,
			args:         []string{"kern", "run", "--once"},
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			write := func(name, body string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
			}
			write("kern.yaml", tt.config)
			write("a.yaml", "symbolic_name: a\nversion: 1.0.0\nactivator: log\nimports: [{name: b.api}]\n")
			write("b.yaml", "symbolic_name: b\nversion: 1.0.0\nexports: [{name: b.api, version: 1.0.0}]\n")

			t.Chdir(dir)
			os.Args = tt.args

			assert.Equal(t, tt.expectedExit, run())
		})
	}
}
