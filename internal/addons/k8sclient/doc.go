// Package k8sclient wraps k8s.io/client-go for the install plan: Server-Side
// Apply of multi-document manifests, secrets and namespaces, daemon set
// inspection, crash-loop cleanup and the annotate/label calls used when an
// out-of-band resource is adopted by a helm release.
package k8sclient
