// Package prerequisites checks the client tools the CLI shells out to.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool is a binary looked up in PATH.
type Tool struct {
	Name        string
	Required    bool
	Description string
	InstallURL  string
}

// Docker builds application images.
var Docker = Tool{
	Name:        "docker",
	Required:    true,
	Description: "Builds application images before they are pushed to the registry",
	InstallURL:  "https://docs.docker.com/engine/install/",
}

// Kubectl is handy for inspecting the installed charts.
var Kubectl = Tool{
	Name:        "kubectl",
	Description: "Useful for inspecting installed charts and adopted resources",
	InstallURL:  "https://kubernetes.io/docs/tasks/tools/",
}

// ToolsFor returns the tools needed for the configured features. Image
// builds only happen when a registry is configured.
func ToolsFor(registryConfigured bool) []Tool {
	docker := Docker
	docker.Required = registryConfigured
	return []Tool{docker, Kubectl}
}

// Result is the outcome for one tool.
type Result struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// Results holds the outcome of a Check.
type Results struct {
	Results []Result
	Missing []Tool
}

// Err returns an error naming every missing required tool.
func (r *Results) Err() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Lookup finds a binary. It matches exec.LookPath.
type Lookup func(name string) (string, error)

// VersionReader returns the first line of the tool's version output.
type VersionReader func(path string) string

// Checker looks tools up. Zero values use PATH and run "<tool> version".
type Checker struct {
	LookPath Lookup
	Version  VersionReader
}

// Check verifies that tools are available.
func (c Checker) Check(tools []Tool) *Results {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	version := c.Version
	if version == nil {
		version = toolVersion
	}

	results := &Results{}
	for _, tool := range tools {
		result := Result{Tool: tool}
		if path, err := lookPath(tool.Name); err == nil {
			result.Found = true
			result.Path = path
			result.Version = version(path)
		} else {
			results.Missing = append(results.Missing, tool)
		}
		results.Results = append(results.Results, result)
	}
	return results
}

// toolVersion is best effort and returns "" when no flag works.
func toolVersion(path string) string {
	for _, args := range [][]string{{"version", "--client"}, {"--version"}, {"version"}} {
		// #nosec G204 - path comes from LookPath on a fixed tool name
		out, err := exec.Command(path, args...).Output()
		if err != nil {
			continue
		}
		line, _, _ := strings.Cut(string(out), "\n")
		return strings.TrimSpace(line)
	}
	return ""
}
