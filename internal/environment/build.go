package environment

import "strings"

// GitRepository locates the sources of a build.
type GitRepository struct {
	URL            string
	CommitID       string
	RootPath       string
	DockerfilePath string
}

// Image is the destination of a build.
type Image struct {
	RegistryName string
	RegistryURL  string
	Name         string
	Tag          string
	CommitID     string
}

// RepositoryName is the registry repository the image is pushed to.
func (i Image) RepositoryName() string {
	return i.Name
}

// FullImageName is the image reference without tag.
func (i Image) FullImageName() string {
	return strings.TrimSuffix(i.RegistryURL, "/") + "/" + i.Name
}

// FullImageNameWithTag is the complete image reference.
func (i Image) FullImageNameWithTag() string {
	return i.FullImageName() + ":" + i.Tag
}

// Build describes how an application image is produced.
type Build struct {
	Image         Image
	GitRepository GitRepository
	Environment   map[string]string
	DisableCache  bool
}
