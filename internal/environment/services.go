package environment

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// Port is a container port exposed by an application.
type Port struct {
	Number             int
	PubliclyAccessible bool
}

// ApplicationAdvancedSettings are health check settings that drive the startup
// timeout of an application.
type ApplicationAdvancedSettings struct {
	ReadinessInitialDelaySeconds int
	ReadinessTimeoutSeconds      int
	ReadinessPeriodSeconds       int
	ReadinessFailureThreshold    int
	LivenessInitialDelaySeconds  int
	LivenessTimeoutSeconds       int
	LivenessPeriodSeconds        int
	LivenessFailureThreshold     int
}

// minStartupTimeout is the floor of Application.StartupTimeout.
const minStartupTimeout = 10 * time.Minute

// Application is a service built from source.
type Application struct {
	Identity
	Build            *Build
	Ports            []Port
	MinInstances     int
	MaxInstances     int
	AdvancedSettings ApplicationAdvancedSettings
}

func (*Application) isService() {}
func (*Application) Kind() Kind { return KindApplication }
func (a *Application) ProgressScope() Scope { return a.scope(KindApplication) }
func (a *Application) Logger() logr.Logger { return a.logger(KindApplication) }

// PublicPorts returns the ports reachable from outside the cluster.
func (a *Application) PublicPorts() []Port {
	var ports []Port
	for _, p := range a.Ports {
		if p.PubliclyAccessible {
			ports = append(ports, p)
		}
	}
	return ports
}

// HelmReleaseName is the release name of the application chart, capped at
// 50 characters.
func (a *Application) HelmReleaseName() string {
	name := fmt.Sprintf("application-%s-%s", a.ID(), a.ID())
	if len(name) > 50 {
		name = name[:50]
	}
	return name
}

// StartupTimeout is the longest of the readiness and liveness check budgets,
// never less than ten minutes.
func (a *Application) StartupTimeout() time.Duration {
	s := a.AdvancedSettings
	readiness := s.ReadinessInitialDelaySeconds + (s.ReadinessTimeoutSeconds+s.ReadinessPeriodSeconds)*s.ReadinessFailureThreshold
	liveness := s.LivenessInitialDelaySeconds + (s.LivenessTimeoutSeconds+s.LivenessPeriodSeconds)*s.LivenessFailureThreshold

	longest := time.Duration(max(readiness, liveness)) * time.Second
	return max(longest, minStartupTimeout)
}

// Container is a service deployed from a prebuilt image.
type Container struct {
	Identity
	Image Image
	Ports []Port
}

func (*Container) isService() {}
func (*Container) Kind() Kind { return KindContainer }
func (c *Container) ProgressScope() Scope { return c.scope(KindContainer) }
func (c *Container) Logger() logr.Logger { return c.logger(KindContainer) }

// Route maps a path prefix to a target service.
type Route struct {
	Path      string
	ServiceID string
}

// Router exposes services under a set of domains.
type Router struct {
	Identity
	DefaultDomain string
	CustomDomains []string
	Routes        []Route
}

func (*Router) isService() {}
func (*Router) Kind() Kind { return KindRouter }
func (r *Router) ProgressScope() Scope { return r.scope(KindRouter) }
func (r *Router) Logger() logr.Logger { return r.logger(KindRouter) }

// DatabaseMode says whether a database is cloud-managed or runs in-cluster.
type DatabaseMode int

const (
	DatabaseModeContainer DatabaseMode = iota
	DatabaseModeManaged
)

// Database is a stateful service.
type Database struct {
	Identity
	Engine  string
	Version string
	Mode    DatabaseMode
}

func (*Database) isService() {}
func (*Database) Kind() Kind { return KindDatabase }
func (d *Database) ProgressScope() Scope { return d.scope(KindDatabase) }
func (d *Database) Logger() logr.Logger { return d.logger(KindDatabase) }
