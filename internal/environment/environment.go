package environment

import "github.com/google/uuid"

// Environment is a namespace-scoped collection of services.
//
// A Transaction takes the *Environment handed to it at push time. Callers
// must not mutate it while a commit referencing it is running.
type Environment struct {
	ID                 string
	LongID             uuid.UUID
	ProjectID          string
	ProjectLongID      uuid.UUID
	OrganizationID     string
	OrganizationLongID uuid.UUID
	OwnerID            string
	Action             Action

	Applications []*Application
	Containers   []*Container
	Routers      []*Router
	Databases    []*Database
}

// New builds an environment and derives its short identifiers.
func New(longID, projectLongID, organizationLongID uuid.UUID, action Action) *Environment {
	return &Environment{
		ID:                 ToShortID(longID),
		LongID:             longID,
		ProjectID:          ToShortID(projectLongID),
		ProjectLongID:      projectLongID,
		OrganizationID:     ToShortID(organizationLongID),
		OrganizationLongID: organizationLongID,
		Action:             action,
	}
}

// Namespace is the Kubernetes namespace the environment is deployed to.
func (e *Environment) Namespace() string {
	return e.ProjectID + "-" + e.ID
}

// ApplicationsWithAction returns the applications whose own action is a.
func (e *Environment) ApplicationsWithAction(a Action) []*Application {
	var apps []*Application
	for _, app := range e.Applications {
		if app.Action() == a {
			apps = append(apps, app)
		}
	}
	return apps
}

// Services lists every service in terminal reporting order: databases,
// applications, routers. Containers are not part of that report.
func (e *Environment) Services() []Service {
	services := make([]Service, 0, len(e.Databases)+len(e.Applications)+len(e.Routers))
	for _, d := range e.Databases {
		services = append(services, d)
	}
	for _, a := range e.Applications {
		services = append(services, a)
	}
	for _, r := range e.Routers {
		services = append(services, r)
	}
	return services
}
