// Package progress carries per-service lifecycle notifications from the
// build pipeline and the transaction to whoever renders them.
//
// A [Listener] receives in-progress, success and error notifications for
// deployments, pauses and deletions. [Listeners] fans a notification out to
// several listeners and maps an environment action onto the matching
// listener method, so callers never switch on the action themselves.
package progress
