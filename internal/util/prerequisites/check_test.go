package prerequisites

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeChecker(installed ...string) Checker {
	paths := make(map[string]string, len(installed))
	for _, name := range installed {
		paths[name] = "/usr/local/bin/" + name
	}
	return Checker{
		LookPath: func(name string) (string, error) {
			if p, ok := paths[name]; ok {
				return p, nil
			}
			return "", errors.New("executable file not found in $PATH")
		},
		Version: func(path string) string { return path + " v1.0.0" },
	}
}

func TestToolsFor(t *testing.T) {
	t.Parallel()

	tools := ToolsFor(true)
	require.Len(t, tools, 2)
	assert.Equal(t, "docker", tools[0].Name)
	assert.True(t, tools[0].Required)
	assert.False(t, tools[1].Required)

	assert.False(t, ToolsFor(false)[0].Required)
	assert.True(t, Docker.Required, "package default must stay untouched")
}

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		installed   []string
		registry    bool
		wantMissing []string
		wantErr     bool
	}{
		{name: "all present", installed: []string{"docker", "kubectl"}, registry: true},
		{name: "docker missing with registry", installed: []string{"kubectl"}, registry: true, wantMissing: []string{"docker"}, wantErr: true},
		{name: "docker missing without registry", installed: []string{"kubectl"}, wantMissing: []string{"docker"}},
		{name: "optional kubectl missing", installed: []string{"docker"}, registry: true, wantMissing: []string{"kubectl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			results := fakeChecker(tt.installed...).Check(ToolsFor(tt.registry))

			var missing []string
			for _, tool := range results.Missing {
				missing = append(missing, tool.Name)
			}
			assert.Equal(t, tt.wantMissing, missing)

			if tt.wantErr {
				require.Error(t, results.Err())
				assert.Contains(t, results.Err().Error(), "docs.docker.com")
			} else {
				assert.NoError(t, results.Err())
			}
		})
	}
}

func TestCheck_RecordsPathAndVersion(t *testing.T) {
	t.Parallel()
	results := fakeChecker("docker").Check([]Tool{Docker})

	require.Len(t, results.Results, 1)
	assert.True(t, results.Results[0].Found)
	assert.Equal(t, "/usr/local/bin/docker", results.Results[0].Path)
	assert.Equal(t, "/usr/local/bin/docker v1.0.0", results.Results[0].Version)
}
