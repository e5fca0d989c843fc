// Package build builds and pushes container images for the applications of
// an environment.
//
// [Pipeline.BuildAndPush] is fail-fast: the first application that cannot be
// built stops the run. A repository is always ensured before its image is
// built, and an image already present in the registry is skipped unless a
// rebuild is forced. Concrete registries and build platforms live in the
// oci and docker subpackages.
package build
