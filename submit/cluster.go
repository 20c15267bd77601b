package submit

import (
	"context"
	"io"
)

// ClusterSpecification sizes the deployed cluster. A zero memory value
// leaves the resource at the platform default.
type ClusterSpecification struct {
	MasterMemoryMB      int `json:"master_memory_mb"`
	TaskManagerMemoryMB int `json:"task_manager_memory_mb"`
}

// ApplicationConfiguration describes the user program run inside the
// cluster's own driver process.
type ApplicationConfiguration struct {
	UserJars         []string `json:"user_jars"`
	MainClass        string   `json:"main_class"`
	ProgramArguments []string `json:"program_arguments"`
}

type JobStatus struct {
	JobID string `json:"jid"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// ClusterClient is a handle on a deployed application cluster.
type ClusterClient interface {
	io.Closer
	ClusterID() string
	WebInterfaceURL() string
	ListJobs(ctx context.Context) ([]JobStatus, error)
}

// ClusterDescriptor deploys application clusters on a resource manager.
type ClusterDescriptor interface {
	io.Closer
	DeployApplicationCluster(ctx context.Context, spec ClusterSpecification, app ApplicationConfiguration) (ClusterClient, error)
}

// DescriptorFactory opens a descriptor, and the resource-manager client it
// owns, for one submission.
type DescriptorFactory interface {
	NewDescriptor(ctx context.Context, cfg *JobConfig) (ClusterDescriptor, error)
}

type DescriptorFactoryFunc func(ctx context.Context, cfg *JobConfig) (ClusterDescriptor, error)

func (f DescriptorFactoryFunc) NewDescriptor(ctx context.Context, cfg *JobConfig) (ClusterDescriptor, error) {
	return f(ctx, cfg)
}
