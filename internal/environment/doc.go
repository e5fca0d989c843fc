// Package environment models an application environment: a namespace-scoped
// set of applications, containers, routers and databases, each carrying its
// own lifecycle action.
//
// Services form a closed set of variants. Every variant implements [Service];
// code that needs kind-specific data switches on the concrete type.
package environment
