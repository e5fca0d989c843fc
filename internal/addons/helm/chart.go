package helm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Action is what applying a unit does to its release.
type Action int

const (
	ActionInstall Action = iota
	ActionDestroy
)

func (a Action) String() string {
	if a == ActionDestroy {
		return "destroy"
	}
	return "install"
}

// DefaultTimeoutSeconds is used when a unit does not set TimeoutSeconds.
const DefaultTimeoutSeconds = 300

// SetValue is one --set style override. Commas in Value are escaped unless
// Raw is set.
type SetValue struct {
	Key   string
	Value string
	// AsString keeps Value a string instead of inferring numbers and booleans.
	AsString bool
	// Raw passes Value to the parser as is, for list literals like {a,b}.
	Raw bool
}

func (v SetValue) String() string {
	if v.Raw {
		return v.Key + "=" + v.Value
	}
	return v.Key + "=" + strings.ReplaceAll(v.Value, ",", `\,`)
}

// GeneratedValuesFile is a values document rendered at plan time.
type GeneratedValuesFile struct {
	Filename string
	Content  string
}

// CRDsUpdate lists CRD manifests fetched and applied before the release,
// since helm never upgrades CRDs it installed from a crds/ directory.
type CRDsUpdate struct {
	BaseURL string
	Files   []string
}

// URLs returns the absolute manifest URLs.
func (u *CRDsUpdate) URLs() []string {
	base := strings.TrimSuffix(u.BaseURL, "/")
	urls := make([]string, 0, len(u.Files))
	for _, f := range u.Files {
		urls = append(urls, base+"/"+f)
	}
	return urls
}

// PreExecHook runs before a unit is applied. An error aborts the unit.
type PreExecHook func(ctx context.Context) error

// ChartInfo is one install unit.
type ChartInfo struct {
	Name string
	// Path is a local chart directory. When empty the chart is fetched from
	// Repository.
	Path       string
	Repository string
	Chart      string
	Version    string
	Namespace  string
	Action     Action

	TimeoutSeconds int
	Wait           bool
	Atomic         bool

	// LastBreakingVersionRequiringRestart forces an uninstall before
	// upgrading a release installed below this chart version.
	LastBreakingVersionRequiringRestart *semver.Version

	Values          []SetValue
	ValuesFiles     []string
	GeneratedValues []GeneratedValuesFile
	CRDsUpdate      *CRDsUpdate
	PreExec         PreExecHook
}

// Level is a set of units with no ordering between them.
type Level []ChartInfo

// Timeout returns the unit timeout.
func (c *ChartInfo) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Source describes where the chart is loaded from, for logs and plans.
func (c *ChartInfo) Source() string {
	if c.Path != "" {
		return c.Path
	}
	if c.Version != "" {
		return fmt.Sprintf("%s/%s@%s", c.Repository, c.Chart, c.Version)
	}
	return fmt.Sprintf("%s/%s", c.Repository, c.Chart)
}

// SetValue appends or replaces a value override.
func (c *ChartInfo) SetValue(key, value string) {
	for i := range c.Values {
		if c.Values[i].Key == key {
			c.Values[i].Value = value
			return
		}
	}
	c.Values = append(c.Values, SetValue{Key: key, Value: value})
}

// Validate checks the fields needed to apply the unit.
func (c *ChartInfo) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("chart name is required")
	}
	if c.Namespace == "" {
		return fmt.Errorf("chart %s: namespace is required", c.Name)
	}
	if c.Action == ActionInstall && c.Path == "" && (c.Repository == "" || c.Chart == "") {
		return fmt.Errorf("chart %s: either a local path or a repository and chart name are required", c.Name)
	}
	return nil
}
