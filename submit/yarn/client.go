package yarn

import (
	"context"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/DataWorkbench/paimonweb/qerror"
	"github.com/DataWorkbench/paimonweb/submit"
)

const (
	AppStateRunning  = "RUNNING"
	AppStateFinished = "FINISHED"
	AppStateFailed   = "FAILED"
	AppStateKilled   = "KILLED"
)

// ClusterClient follows one YARN application: its report comes from the
// ResourceManager, its jobs from the Flink REST API behind the tracking URL.
type ClusterClient struct {
	appID           string
	resourceManager string
	webURL          string
	client          *http.Client
}

func (c *ClusterClient) ClusterID() string {
	return c.appID
}

func (c *ClusterClient) WebInterfaceURL() string {
	return c.webURL
}

// ListJobs returns no jobs while the application is not yet RUNNING and
// fails once it has ended.
func (c *ClusterClient) ListJobs(ctx context.Context) ([]submit.JobStatus, error) {
	report, err := c.get(ctx, c.resourceManager+"/ws/v1/cluster/apps/"+c.appID)
	if err != nil {
		return nil, err
	}
	state := string(report.GetStringBytes("app", "state"))
	switch state {
	case AppStateFailed, AppStateKilled, AppStateFinished:
		return nil, errors.Errorf("yarn application %s is %s: %s", c.appID, state, report.GetStringBytes("app", "diagnostics"))
	case AppStateRunning:
	default:
		return nil, nil
	}
	if tracking := string(report.GetStringBytes("app", "trackingUrl")); tracking != "" {
		c.webURL = tracking
	}

	overview, err := c.get(ctx, strings.TrimSuffix(c.webURL, "/")+"/jobs/overview")
	if err != nil {
		return nil, err
	}
	var jobs []submit.JobStatus
	for _, j := range overview.GetArray("jobs") {
		jobs = append(jobs, submit.JobStatus{
			JobID: string(j.GetStringBytes("jid")),
			Name:  string(j.GetStringBytes("name")),
			State: string(j.GetStringBytes("state")),
		})
	}
	return jobs, nil
}

func (c *ClusterClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *ClusterClient) get(ctx context.Context, api string) (*fastjson.Value, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	rep, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer rep.Body.Close()

	body, err := ioutil.ReadAll(rep.Body)
	if err != nil {
		return nil, err
	}
	if rep.StatusCode != http.StatusOK {
		return nil, qerror.ClusterRequestFailed.Format(api, rep.StatusCode, string(body))
	}
	return fastjson.ParseBytes(body)
}
