package submit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	appID     string
	webURL    string
	emptyFor  int
	jobs      []JobStatus
	listErr   error
	listCalls int
	closed    int
	closeErr  error
}

func (c *fakeClient) ClusterID() string       { return c.appID }
func (c *fakeClient) WebInterfaceURL() string { return c.webURL }

func (c *fakeClient) ListJobs(ctx context.Context) ([]JobStatus, error) {
	c.listCalls++
	if c.listErr != nil {
		return nil, c.listErr
	}
	if c.listCalls <= c.emptyFor {
		return nil, nil
	}
	return c.jobs, nil
}

func (c *fakeClient) Close() error {
	c.closed++
	return c.closeErr
}

type fakeDescriptor struct {
	client    *fakeClient
	deployErr error
	spec      *ClusterSpecification
	app       *ApplicationConfiguration
	closed    int
	closeErr  error
}

func (d *fakeDescriptor) DeployApplicationCluster(ctx context.Context, spec ClusterSpecification, app ApplicationConfiguration) (ClusterClient, error) {
	d.spec = &spec
	d.app = &app
	if d.deployErr != nil {
		return nil, d.deployErr
	}
	return d.client, nil
}

func (d *fakeDescriptor) Close() error {
	d.closed++
	return d.closeErr
}

func newTestSubmitter(d *fakeDescriptor, opts ...Option) *Submitter {
	opts = append([]Option{WithPollInterval(time.Millisecond)}, opts...)
	return NewSubmitter(DescriptorFactoryFunc(func(ctx context.Context, cfg *JobConfig) (ClusterDescriptor, error) {
		return d, nil
	}), opts...)
}

func baseConfig() map[string]string {
	return map[string]string{
		KeyUserJarPath:      "hdfs:///paimon/jars/paimon-sql-runner.jar",
		KeyUserJarParams:    "--sql  hdfs:///paimon/sql/orders.sql --parallelism 2",
		KeyUserJarMainClass: "org.apache.paimon.web.runner.SqlRunner",
		KeyFlinkConfigPath:  "/opt/flink/conf",
		KeyHadoopConfigPath: "/etc/hadoop/conf",
	}
}

func requireInvariant(t *testing.T, o *Outcome) {
	if o.Success {
		require.NotEmpty(t, o.AppID)
	} else {
		require.Empty(t, o.JobIDs)
		require.NotEmpty(t, o.Message)
	}
}

func TestSubmitMemorySizing(t *testing.T) {
	d := &fakeDescriptor{client: &fakeClient{
		appID:  "application_1700000000000_0042",
		webURL: "http://nm-01:38211",
		jobs:   []JobStatus{{JobID: "a7f2b4c1e9d84f5b8c0a6d3e2f1b9c7d", State: "RUNNING"}},
	}}
	cfg := baseConfig()
	cfg[KeyJobMemory] = "1GB"
	cfg[KeyTaskMemory] = "512MB"

	outcome := newTestSubmitter(d).Submit(context.Background(), cfg)
	requireInvariant(t, outcome)
	require.True(t, outcome.Success)
	require.Equal(t, ClusterSpecification{MasterMemoryMB: 1024, TaskManagerMemoryMB: 512}, *d.spec)
	require.Equal(t, []string{"hdfs:///paimon/jars/paimon-sql-runner.jar"}, d.app.UserJars)
	require.Equal(t, "org.apache.paimon.web.runner.SqlRunner", d.app.MainClass)
	require.Equal(t, []string{"--sql", "hdfs:///paimon/sql/orders.sql", "--parallelism", "2"}, d.app.ProgramArguments)
	require.Equal(t, "application_1700000000000_0042", outcome.AppID)
	require.Equal(t, []string{"a7f2b4c1e9d84f5b8c0a6d3e2f1b9c7d"}, outcome.JobIDs)
	require.Equal(t, "http://nm-01:38211", outcome.WebURL)
	require.Equal(t, 1, d.closed)
	require.Equal(t, 1, d.client.closed)
}

func TestSubmitDefaultSizing(t *testing.T) {
	d := &fakeDescriptor{client: &fakeClient{appID: "application_1_1", jobs: []JobStatus{{JobID: "j1"}}}}
	outcome := newTestSubmitter(d).Submit(context.Background(), baseConfig())
	require.True(t, outcome.Success)
	require.Equal(t, ClusterSpecification{}, *d.spec)
}

func TestSubmitWaitsForJobRegistration(t *testing.T) {
	d := &fakeDescriptor{client: &fakeClient{
		appID:    "application_1_2",
		emptyFor: 3,
		jobs:     []JobStatus{{JobID: "j1"}, {JobID: "j2"}, {JobID: "j1"}},
	}}
	outcome := newTestSubmitter(d).Submit(context.Background(), baseConfig())
	require.True(t, outcome.Success)
	require.Equal(t, 4, d.client.listCalls)
	require.Equal(t, []string{"j1", "j2"}, outcome.JobIDs)
}

func TestSubmitDeployFailure(t *testing.T) {
	d := &fakeDescriptor{deployErr: errors.New("queue root.paimon is full")}
	outcome := newTestSubmitter(d).Submit(context.Background(), baseConfig())
	requireInvariant(t, outcome)
	require.False(t, outcome.Success)
	require.Contains(t, outcome.Message, "queue root.paimon is full")
	require.Equal(t, 1, d.closed)
}

func TestSubmitListFailureReleasesResources(t *testing.T) {
	d := &fakeDescriptor{
		client:   &fakeClient{appID: "application_1_3", listErr: errors.New("connection reset"), closeErr: errors.New("already closed")},
		closeErr: errors.New("yarn client stopped"),
	}
	outcome := newTestSubmitter(d).Submit(context.Background(), baseConfig())
	requireInvariant(t, outcome)
	require.Equal(t, "connection reset", outcome.Message)
	require.Equal(t, 1, d.closed)
	require.Equal(t, 1, d.client.closed)
}

func TestSubmitRegistrationTimeout(t *testing.T) {
	d := &fakeDescriptor{client: &fakeClient{appID: "application_1_4", emptyFor: 1 << 30}}
	outcome := newTestSubmitter(d, WithPollTimeout(20*time.Millisecond)).Submit(context.Background(), baseConfig())
	requireInvariant(t, outcome)
	require.False(t, outcome.Success)
	require.Contains(t, outcome.Message, "application_1_4")
}

func TestSubmitInvalidConfig(t *testing.T) {
	d := &fakeDescriptor{}

	cfg := baseConfig()
	cfg[KeyJobMemory] = "abcGB"
	outcome := newTestSubmitter(d).Submit(context.Background(), cfg)
	requireInvariant(t, outcome)
	require.Contains(t, outcome.Message, "abcGB")

	cfg = baseConfig()
	delete(cfg, KeyUserJarPath)
	outcome = newTestSubmitter(d).Submit(context.Background(), cfg)
	requireInvariant(t, outcome)
	require.Contains(t, outcome.Message, "UserJarPath")

	require.Nil(t, d.spec)
	require.Equal(t, 0, d.closed)
}

func TestSubmitDescriptorFailure(t *testing.T) {
	s := NewSubmitter(DescriptorFactoryFunc(func(ctx context.Context, cfg *JobConfig) (ClusterDescriptor, error) {
		return nil, errors.New("yarn-site.xml not found")
	}))
	outcome := s.Submit(context.Background(), baseConfig())
	requireInvariant(t, outcome)
	require.Equal(t, "yarn-site.xml not found", outcome.Message)
}

func TestOutcomeInvariant(t *testing.T) {
	requireInvariant(t, SuccessOutcome("application_1_5", nil, ""))
	requireInvariant(t, SuccessOutcome("", []string{"j1"}, ""))
	requireInvariant(t, FailureOutcome(""))
	require.False(t, SuccessOutcome("", []string{"j1"}, "").Success)
}
