package environment

// Action is the lifecycle operation requested for an environment or service.
type Action int

const (
	ActionCreate Action = iota
	ActionPause
	ActionDelete
	ActionNothing
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionPause:
		return "pause"
	case ActionDelete:
		return "delete"
	case ActionNothing:
		return "nothing"
	default:
		return "unknown"
	}
}
