package environment

import (
	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// Kind identifies a service variant.
type Kind int

const (
	KindApplication Kind = iota
	KindContainer
	KindRouter
	KindDatabase
)

func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "application"
	case KindContainer:
		return "container"
	case KindRouter:
		return "router"
	case KindDatabase:
		return "database"
	default:
		return "unknown"
	}
}

// Scope keys progress notifications to one service.
type Scope struct {
	Kind   Kind
	ID     string
	LongID uuid.UUID
	Name   string
}

// Service is implemented by *Application, *Container, *Router and *Database
// only.
type Service interface {
	ID() string
	LongID() uuid.UUID
	Name() string
	Action() Action
	Kind() Kind
	ProgressScope() Scope
	Logger() logr.Logger

	isService()
}

// Identity is the data shared by every service variant.
type Identity struct {
	UUID          uuid.UUID
	DisplayName   string
	ServiceAction Action
	Log           logr.Logger
}

func (i *Identity) ID() string { return ToShortID(i.UUID) }
func (i *Identity) LongID() uuid.UUID { return i.UUID }
func (i *Identity) Name() string { return i.DisplayName }
func (i *Identity) Action() Action { return i.ServiceAction }

func (i *Identity) scope(kind Kind) Scope {
	return Scope{Kind: kind, ID: i.ID(), LongID: i.UUID, Name: i.DisplayName}
}

func (i *Identity) logger(kind Kind) logr.Logger {
	return i.Log.WithValues("service", kind.String(), "id", i.ID(), "name", i.DisplayName)
}
