// Package cluster provides the cluster-lifecycle collaborator of a
// transaction.
//
// The [Bootstrapper] installs the leveled chart plan when a cluster is
// created and removes it, levels in reverse, when the cluster is deleted.
// Provisioning the nodes themselves is the job of the cloud provider layer.
package cluster
