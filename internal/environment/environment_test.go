package environment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToShortID(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("3f1c2b7a-9d4e-4a2b-8c1d-0e5f6a7b8c9d")
	assert.Equal(t, "z3f1c2b7a", ToShortID(id))
}

func TestNew_Namespace(t *testing.T) {
	t.Parallel()

	env := New(
		uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001"),
		uuid.MustParse("bbbbbbbb-0000-4000-8000-000000000002"),
		uuid.MustParse("cccccccc-0000-4000-8000-000000000003"),
		ActionCreate,
	)

	assert.Equal(t, "zaaaaaaaa", env.ID)
	assert.Equal(t, "zbbbbbbbb", env.ProjectID)
	assert.Equal(t, "zcccccccc", env.OrganizationID)
	assert.Equal(t, "zbbbbbbbb-zaaaaaaaa", env.Namespace())
}

func TestApplicationsWithAction(t *testing.T) {
	t.Parallel()

	create := &Application{Identity: Identity{UUID: uuid.New(), ServiceAction: ActionCreate}}
	pause := &Application{Identity: Identity{UUID: uuid.New(), ServiceAction: ActionPause}}
	env := &Environment{Applications: []*Application{create, pause}}

	got := env.ApplicationsWithAction(ActionCreate)
	require.Len(t, got, 1)
	assert.Same(t, create, got[0])
}

func TestServices_ReportingOrder(t *testing.T) {
	t.Parallel()

	db := &Database{Identity: Identity{UUID: uuid.New(), DisplayName: "db"}}
	app := &Application{Identity: Identity{UUID: uuid.New(), DisplayName: "app"}}
	router := &Router{Identity: Identity{UUID: uuid.New(), DisplayName: "router"}}
	container := &Container{Identity: Identity{UUID: uuid.New(), DisplayName: "container"}}
	env := &Environment{
		Applications: []*Application{app},
		Containers:   []*Container{container},
		Routers:      []*Router{router},
		Databases:    []*Database{db},
	}

	services := env.Services()
	require.Len(t, services, 3)
	assert.Equal(t, KindDatabase, services[0].Kind())
	assert.Equal(t, KindApplication, services[1].Kind())
	assert.Equal(t, KindRouter, services[2].Kind())
}

func TestProgressScope(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("12345678-0000-4000-8000-000000000000")
	router := &Router{Identity: Identity{UUID: id, DisplayName: "front"}}

	assert.Equal(t, Scope{Kind: KindRouter, ID: "z12345678", LongID: id, Name: "front"}, router.ProgressScope())
}

func TestImageNames(t *testing.T) {
	t.Parallel()

	img := Image{RegistryURL: "registry.example.dev/", Name: "app-z1234", Tag: "abc123"}

	assert.Equal(t, "app-z1234", img.RepositoryName())
	assert.Equal(t, "registry.example.dev/app-z1234", img.FullImageName())
	assert.Equal(t, "registry.example.dev/app-z1234:abc123", img.FullImageNameWithTag())
}

func TestApplication_StartupTimeout(t *testing.T) {
	t.Parallel()

	app := &Application{}
	assert.Equal(t, 10*time.Minute, app.StartupTimeout())

	app.AdvancedSettings = ApplicationAdvancedSettings{
		ReadinessInitialDelaySeconds: 30,
		ReadinessTimeoutSeconds:      5,
		ReadinessPeriodSeconds:       10,
		ReadinessFailureThreshold:    3,
		LivenessInitialDelaySeconds:  600,
		LivenessTimeoutSeconds:       10,
		LivenessPeriodSeconds:        20,
		LivenessFailureThreshold:     5,
	}
	assert.Equal(t, 750*time.Second, app.StartupTimeout())
}

func TestApplication_PublicPortsAndReleaseName(t *testing.T) {
	t.Parallel()

	app := &Application{
		Identity: Identity{UUID: uuid.MustParse("deadbeef-0000-4000-8000-000000000000")},
		Ports:    []Port{{Number: 80, PubliclyAccessible: true}, {Number: 9090}},
	}

	assert.Equal(t, []Port{{Number: 80, PubliclyAccessible: true}}, app.PublicPorts())
	assert.Equal(t, "application-zdeadbeef-zdeadbeef", app.HelmReleaseName())
}

func TestActionAndKindStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "create", ActionCreate.String())
	assert.Equal(t, "nothing", ActionNothing.String())
	assert.Equal(t, "database", KindDatabase.String())
}
