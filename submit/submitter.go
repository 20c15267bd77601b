package submit

import (
	"context"
	"io"
	"time"

	"github.com/DataWorkbench/glog"

	"github.com/DataWorkbench/paimonweb/qerror"
	"github.com/DataWorkbench/paimonweb/utils"
)

const DefaultPollInterval = time.Second

// Submitter deploys application-mode jobs and waits for them to register.
type Submitter struct {
	factory DescriptorFactory
	poll    utils.PollOptions
	logger  *glog.Logger
}

type Option func(s *Submitter)

func WithPollInterval(d time.Duration) Option {
	return func(s *Submitter) { s.poll.Interval = d }
}

// WithPollTimeout bounds the wait for job registration. Zero waits until
// the cluster lists a job or the context is done.
func WithPollTimeout(d time.Duration) Option {
	return func(s *Submitter) { s.poll.Timeout = d }
}

func WithLogger(l *glog.Logger) Option {
	return func(s *Submitter) { s.logger = l }
}

func NewSubmitter(factory DescriptorFactory, opts ...Option) *Submitter {
	s := &Submitter{
		factory: factory,
		poll:    utils.PollOptions{Interval: DefaultPollInterval},
		logger:  glog.NewDefault(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit never returns an error: every failure, from a malformed config to
// a job that never registers, is reported as a failed Outcome. The
// descriptor and the cluster client are released on every path.
func (s *Submitter) Submit(ctx context.Context, config map[string]string) *Outcome {
	cfg, err := ParseJobConfig(config)
	if err != nil {
		return FailureOutcome(err.Error())
	}
	spec, err := cfg.ClusterSpecification()
	if err != nil {
		return FailureOutcome(err.Error())
	}

	descriptor, err := s.factory.NewDescriptor(ctx, cfg)
	if err != nil {
		return FailureOutcome(err.Error())
	}
	defer s.release("cluster descriptor", descriptor)

	client, err := descriptor.DeployApplicationCluster(ctx, spec, cfg.ApplicationConfiguration())
	if err != nil {
		return FailureOutcome(qerror.DeployFailed.Format(err.Error()).Error())
	}
	defer s.release("cluster client", client)

	s.logger.Info().Msg("application cluster deployed, waiting for job registration").String("app_id", client.ClusterID()).Fire()

	var jobs []JobStatus
	err = utils.Poll(ctx, "application "+client.ClusterID(), s.poll, func(ctx context.Context) (bool, error) {
		var listErr error
		if jobs, listErr = client.ListJobs(ctx); listErr != nil {
			return false, listErr
		}
		return len(jobs) > 0, nil
	})
	if err != nil {
		return FailureOutcome(err.Error())
	}

	jobIDs := make([]string, 0, len(jobs))
	for _, job := range jobs {
		jobIDs = append(jobIDs, job.JobID)
	}
	return SuccessOutcome(client.ClusterID(), jobIDs, client.WebInterfaceURL())
}

func (s *Submitter) release(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		s.logger.Error().Msg("release "+name+" failed").String("reason", err.Error()).Fire()
	}
}
