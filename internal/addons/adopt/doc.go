// Package adopt hands resources installed outside helm over to a helm
// release without recreating them. It rewrites the release annotations and
// the managed-by label on every related resource, then waits for the owning
// controller to settle before the release is installed.
package adopt
