package yarn

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/DataWorkbench/glog"
	"github.com/pkg/errors"

	"github.com/DataWorkbench/paimonweb/submit"
)

var applicationIDPattern = regexp.MustCompile(`application_\d+_\d+`)

// CommandRunner runs the flink CLI and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args []string, env []string) ([]byte, error)

func execRunner(ctx context.Context, name string, args []string, env []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env
	return cmd.CombinedOutput()
}

// Factory opens descriptors that deploy through
// "flink run-application -t yarn-application".
type Factory struct {
	flinkHome string
	runner    CommandRunner
	client    *http.Client
	logger    *glog.Logger
}

type Option func(f *Factory)

func WithCommandRunner(r CommandRunner) Option {
	return func(f *Factory) { f.runner = r }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(f *Factory) { f.client = hc }
}

func WithLogger(l *glog.Logger) Option {
	return func(f *Factory) { f.logger = l }
}

func NewFactory(flinkHome string, opts ...Option) *Factory {
	f := &Factory{
		flinkHome: flinkHome,
		runner:    execRunner,
		logger:    glog.NewDefault(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) NewDescriptor(ctx context.Context, cfg *submit.JobConfig) (submit.ClusterDescriptor, error) {
	if cfg.FlinkConfigPath == "" {
		return nil, errors.New("flinkConfigPath is required for yarn application submission")
	}
	if err := checkHadoopConfigDir(cfg.HadoopConfigPath); err != nil {
		return nil, err
	}
	rm, err := resourceManagerAddress(cfg.HadoopConfigPath)
	if err != nil {
		return nil, err
	}

	client := f.client
	if client == nil {
		client = &http.Client{Timeout: time.Second * 30}
	}
	return &Descriptor{
		flinkHome:        f.flinkHome,
		flinkConfigPath:  cfg.FlinkConfigPath,
		hadoopConfigPath: cfg.HadoopConfigPath,
		resourceManager:  rm,
		runner:           f.runner,
		client:           client,
		logger:           f.logger,
	}, nil
}

type Descriptor struct {
	flinkHome        string
	flinkConfigPath  string
	hadoopConfigPath string
	resourceManager  string
	runner           CommandRunner
	client           *http.Client
	logger           *glog.Logger
	closed           bool
}

func (d *Descriptor) DeployApplicationCluster(ctx context.Context, spec submit.ClusterSpecification, app submit.ApplicationConfiguration) (submit.ClusterClient, error) {
	if d.closed {
		return nil, errors.New("cluster descriptor is closed")
	}
	if len(app.UserJars) == 0 {
		return nil, errors.New("no user jar to deploy")
	}

	args := []string{"run-application", "-t", "yarn-application"}
	if spec.MasterMemoryMB > 0 {
		args = append(args, fmt.Sprintf("-Djobmanager.memory.process.size=%dm", spec.MasterMemoryMB))
	}
	if spec.TaskManagerMemoryMB > 0 {
		args = append(args, fmt.Sprintf("-Dtaskmanager.memory.process.size=%dm", spec.TaskManagerMemoryMB))
	}
	args = append(args, "-Dpipeline.jars="+strings.Join(app.UserJars, ";"))
	if app.MainClass != "" {
		args = append(args, "-c", app.MainClass)
	}
	args = append(args, app.UserJars[0])
	args = append(args, app.ProgramArguments...)

	env := append(os.Environ(),
		"HADOOP_CONF_DIR="+d.hadoopConfigPath,
		"FLINK_CONF_DIR="+d.flinkConfigPath,
	)
	bin := filepath.Join(d.flinkHome, "bin", "flink")
	d.logger.Info().Msg("deploy yarn application cluster").String("command", bin+" "+strings.Join(args, " ")).Fire()

	out, err := d.runner(ctx, bin, args, env)
	if err != nil {
		return nil, errors.Wrapf(err, "flink run-application: %s", lastLines(string(out), 5))
	}
	appID := applicationIDPattern.FindString(string(out))
	if appID == "" {
		return nil, errors.Errorf("no yarn application id in flink output: %s", lastLines(string(out), 5))
	}

	return &ClusterClient{
		appID:           appID,
		resourceManager: d.resourceManager,
		webURL:          fmt.Sprintf("%s/proxy/%s/", d.resourceManager, appID),
		client:          d.client,
	}, nil
}

func (d *Descriptor) Close() error {
	if d.closed {
		return errors.New("cluster descriptor already closed")
	}
	d.closed = true
	d.client.CloseIdleConnections()
	return nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
