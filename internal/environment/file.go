package environment

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// File is the YAML descriptor of an environment.
type File struct {
	ID             string            `yaml:"id"`
	ProjectID      string            `yaml:"project_id"`
	OrganizationID string            `yaml:"organization_id"`
	Applications   []ApplicationFile `yaml:"applications"`
	Containers     []ContainerFile   `yaml:"containers"`
	Routers        []RouterFile      `yaml:"routers"`
	Databases      []DatabaseFile    `yaml:"databases"`
}

// PortFile is a port of an application or container.
type PortFile struct {
	Number int  `yaml:"number"`
	Public bool `yaml:"public"`
}

// ApplicationFile describes an application built from a git repository.
type ApplicationFile struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	GitURL         string            `yaml:"git_url"`
	CommitID       string            `yaml:"commit_id"`
	RootPath       string            `yaml:"root_path"`
	DockerfilePath string            `yaml:"dockerfile_path"`
	BuildEnv       map[string]string `yaml:"build_env"`
	DisableCache   bool              `yaml:"disable_cache"`
	Ports          []PortFile        `yaml:"ports"`
	MinInstances   int               `yaml:"min_instances"`
	MaxInstances   int               `yaml:"max_instances"`
}

// ContainerFile describes a service deployed from a prebuilt image.
type ContainerFile struct {
	ID    string     `yaml:"id"`
	Name  string     `yaml:"name"`
	Image string     `yaml:"image"`
	Ports []PortFile `yaml:"ports"`
}

// RouteFile maps a path prefix to a service by name.
type RouteFile struct {
	Path    string `yaml:"path"`
	Service string `yaml:"service"`
}

// RouterFile describes a router.
type RouterFile struct {
	ID            string      `yaml:"id"`
	Name          string      `yaml:"name"`
	DefaultDomain string      `yaml:"default_domain"`
	CustomDomains []string    `yaml:"custom_domains"`
	Routes        []RouteFile `yaml:"routes"`
}

// DatabaseFile describes a database.
type DatabaseFile struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Engine  string `yaml:"engine"`
	Version string `yaml:"version"`
	Mode    string `yaml:"mode"`
}

// FileOptions complete a descriptor with what the engine configuration knows.
type FileOptions struct {
	// RegistryName and RegistryURL locate the images of the applications.
	RegistryName string
	RegistryURL  string
	// OrganizationID is used when the descriptor does not set one.
	OrganizationID string
	Log            logr.Logger
}

// LoadFile reads an environment descriptor and builds the environment with
// every service set to action.
func LoadFile(path string, action Action, opts FileOptions) (*Environment, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment file: %w", err)
	}
	return LoadBytes(data, action, opts)
}

// LoadBytes parses and validates an environment descriptor.
func LoadBytes(data []byte, action Action, opts FileOptions) (*Environment, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse environment YAML: %w", err)
	}
	if f.OrganizationID == "" {
		f.OrganizationID = opts.OrganizationID
	}
	return f.Build(action, opts)
}

// Build validates the descriptor and converts it into an Environment.
func (f *File) Build(action Action, opts FileOptions) (*Environment, error) {
	p := &fileParser{action: action, log: opts.Log, names: map[string]uuid.UUID{}}

	envID := p.uuid("id", f.ID)
	projectID := p.uuid("project_id", f.ProjectID)
	orgID := p.uuid("organization_id", f.OrganizationID)
	env := New(envID, projectID, orgID, action)

	for i, d := range f.Databases {
		field := fmt.Sprintf("databases[%d]", i)
		mode, err := parseDatabaseMode(d.Mode)
		if err != nil {
			p.fail(fmt.Errorf("%s.mode: %w", field, err))
		}
		if d.Engine == "" {
			p.fail(fmt.Errorf("%s.engine is required", field))
		}
		env.Databases = append(env.Databases, &Database{
			Identity: p.identity(field, d.ID, d.Name),
			Engine:   d.Engine,
			Version:  d.Version,
			Mode:     mode,
		})
	}

	for i, a := range f.Applications {
		field := fmt.Sprintf("applications[%d]", i)
		if a.CommitID == "" {
			p.fail(fmt.Errorf("%s.commit_id is required", field))
		}
		if opts.RegistryURL == "" && action == ActionCreate {
			p.fail(fmt.Errorf("%s needs registry.url to be configured", field))
		}
		app := &Application{
			Identity:     p.identity(field, a.ID, a.Name),
			Ports:        p.ports(field, a.Ports),
			MinInstances: max(a.MinInstances, 1),
			MaxInstances: max(a.MaxInstances, a.MinInstances, 1),
		}
		app.Build = &Build{
			Image: Image{
				RegistryName: opts.RegistryName,
				RegistryURL:  opts.RegistryURL,
				Name:         "app-" + app.ID(),
				Tag:          a.CommitID,
				CommitID:     a.CommitID,
			},
			GitRepository: GitRepository{
				URL:            a.GitURL,
				CommitID:       a.CommitID,
				RootPath:       a.RootPath,
				DockerfilePath: a.DockerfilePath,
			},
			Environment:  a.BuildEnv,
			DisableCache: a.DisableCache,
		}
		env.Applications = append(env.Applications, app)
	}

	for i, c := range f.Containers {
		field := fmt.Sprintf("containers[%d]", i)
		image, err := ParseImage(c.Image)
		if err != nil {
			p.fail(fmt.Errorf("%s.image: %w", field, err))
		}
		env.Containers = append(env.Containers, &Container{
			Identity: p.identity(field, c.ID, c.Name),
			Image:    image,
			Ports:    p.ports(field, c.Ports),
		})
	}

	for i, r := range f.Routers {
		field := fmt.Sprintf("routers[%d]", i)
		if r.DefaultDomain == "" && len(r.CustomDomains) == 0 {
			p.fail(fmt.Errorf("%s needs a default_domain or custom_domains", field))
		}
		router := &Router{
			Identity:      p.identity(field, r.ID, r.Name),
			DefaultDomain: r.DefaultDomain,
			CustomDomains: r.CustomDomains,
		}
		for j, route := range r.Routes {
			target, ok := p.names[route.Service]
			if !ok {
				p.fail(fmt.Errorf("%s.routes[%d]: unknown service %q", field, j, route.Service))
				continue
			}
			path := route.Path
			if path == "" {
				path = "/"
			}
			router.Routes = append(router.Routes, Route{Path: path, ServiceID: ToShortID(target)})
		}
		env.Routers = append(env.Routers, router)
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("invalid environment file: %w", err)
	}
	return env, nil
}

// ParseImage splits "registry/name:tag". A missing tag means latest.
func ParseImage(ref string) (Image, error) {
	if ref == "" {
		return Image{}, errors.New("image is required")
	}

	name, tag := ref, "latest"
	if i := strings.LastIndex(ref, ":"); i > strings.LastIndex(ref, "/") {
		name, tag = ref[:i], ref[i+1:]
	}

	registry, repo, ok := strings.Cut(name, "/")
	if !ok || !strings.ContainsAny(registry, ".:") && registry != "localhost" {
		registry, repo = "docker.io", name
	}
	if repo == "" || tag == "" {
		return Image{}, fmt.Errorf("invalid image reference %q", ref)
	}
	return Image{RegistryURL: registry, Name: repo, Tag: tag}, nil
}

func parseDatabaseMode(s string) (DatabaseMode, error) {
	switch s {
	case "", "container":
		return DatabaseModeContainer, nil
	case "managed":
		return DatabaseModeManaged, nil
	default:
		return 0, fmt.Errorf("unknown mode %q, use container or managed", s)
	}
}

type fileParser struct {
	action Action
	log    logr.Logger
	names  map[string]uuid.UUID
	errs   []error
}

func (p *fileParser) fail(err error) {
	p.errs = append(p.errs, err)
}

func (p *fileParser) uuid(field, value string) uuid.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		p.fail(fmt.Errorf("%s must be a UUID: %q", field, value))
	}
	return id
}

func (p *fileParser) identity(field, id, name string) Identity {
	longID := p.uuid(field+".id", id)
	if name == "" {
		p.fail(fmt.Errorf("%s.name is required", field))
	} else if _, dup := p.names[name]; dup {
		p.fail(fmt.Errorf("%s.name %q is used twice", field, name))
	} else {
		p.names[name] = longID
	}
	return Identity{UUID: longID, DisplayName: name, ServiceAction: p.action, Log: p.log}
}

func (p *fileParser) ports(field string, ports []PortFile) []Port {
	out := make([]Port, 0, len(ports))
	for i, port := range ports {
		if port.Number < 1 || port.Number > 65535 {
			p.fail(fmt.Errorf("%s.ports[%d]: %d is not a valid port", field, i, port.Number))
		}
		out = append(out, Port{Number: port.Number, PubliclyAccessible: port.Public})
	}
	return out
}
