// Package async provides utilities for running independent tasks
// concurrently and collecting their errors.
//
// The [RunParallel] function is used by the addon deployer to apply every
// install unit of a level at once, since units sharing a level carry no
// ordering dependency on each other.
package async
