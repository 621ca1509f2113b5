package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/redsim/types"
)

func TestDefault(t *testing.T) {
	s := Default()

	require.Len(t, s.Targets, 3)
	assert.Equal(t, "target-1", s.Targets[0].ID)
	assert.Equal(t, "Web Server (DMZ)", s.Targets[0].Name)
	assert.Equal(t, "192.168.1.10", s.Targets[0].IP)
	assert.Len(t, s.Targets[0].Services, 3)
	assert.Equal(t, "Database Server", s.Targets[1].Name)
	assert.Equal(t, types.SeverityCritical, s.Targets[1].Vulnerabilities[0].Severity)
	assert.Equal(t, "Domain Controller", s.Targets[2].Name)
	assert.Equal(t, 445, s.Targets[2].Services[2].Port)
	assert.Equal(t, 3, s.VulnerabilityCount())

	for _, target := range s.Targets {
		assert.Equal(t, types.TargetOnline, target.Status)
	}
}

func TestDefault_ReturnsFreshCopies(t *testing.T) {
	a := Default()
	a.Targets[0].Status = types.TargetCompromised

	assert.Equal(t, types.TargetOnline, Default().Targets[0].Status)
}

func TestInitialState(t *testing.T) {
	state := Default().InitialState()

	assert.Len(t, state.Targets, 3)
	assert.Equal(t, types.PhaseReconnaissance, state.CurrentPhase)
	assert.False(t, state.IsRunning)
	assert.Empty(t, state.AttackSteps)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "minimal target gets defaults",
			doc: `
name: tiny
targets:
  - id: a
    name: Alpha
    services:
      - { port: 22, name: SSH, version: OpenSSH }
`,
		},
		{
			name:    "no targets",
			doc:     "name: empty\ntargets: []\n",
			wantErr: "has no targets",
		},
		{
			name: "duplicate ids",
			doc: `
targets:
  - { id: a, name: Alpha }
  - { id: a, name: Beta }
`,
			wantErr: "duplicate target id",
		},
		{
			name: "invalid severity",
			doc: `
targets:
  - id: a
    name: Alpha
    vulnerabilities:
      - { id: v, cve: CVE-1, severity: extreme }
`,
			wantErr: "invalid severity",
		},
		{
			name:    "malformed yaml",
			doc:     "targets: [",
			wantErr: "failed to parse scenario",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.doc))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, types.TargetOnline, s.Targets[0].Status)
			assert.Equal(t, types.ServiceOpen, s.Targets[0].Services[0].Status)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	doc := "name: custom\ntargets:\n  - { id: x, name: Xray, ip: 10.0.0.1 }\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scenario.yaml"), []byte(doc), 0o600))

	fromDir, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "custom", fromDir.Name)

	fromFile, err := Load(filepath.Join(dir, "scenario.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Xray", fromFile.Targets[0].Name)

	_, err = Load(t.TempDir())
	assert.ErrorContains(t, err, "no scenario.yaml")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to stat path")
}
