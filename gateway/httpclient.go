package gateway

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/DataWorkbench/paimonweb/qerror"
)

// requestError is a non-200 reply from the gateway.
type requestError struct {
	api     string
	status  int
	message string
}

func (e *requestError) Error() string {
	return qerror.GatewayRequestFailed.Format(e.api, e.status, e.message).Error()
}

func (e *requestError) Is(target error) bool {
	return errors.Is(qerror.GatewayRequestFailed, target)
}

// notFound reports whether the gateway rejected the request because handle
// is unknown to it. Statement failures such as a missing catalog use the
// same wording, so only a message naming the handle counts.
func (e *requestError) notFound(handle string) bool {
	if handle == "" || !strings.Contains(e.message, handle) {
		return false
	}
	return strings.Contains(e.message, "does not exist") || strings.Contains(e.message, "Can not find")
}

func isNotFound(err error, handle string) bool {
	var re *requestError
	if errors.As(err, &re) {
		return re.notFound(handle)
	}
	return false
}

func (c *Client) doRequest(ctx context.Context, method string, api string, body interface{}) (*fastjson.Value, error) {
	var (
		req     *http.Request
		rep     *http.Response
		reqBody io.Reader
		err     error
	)

	payload, err := marshalBody(body)
	if err != nil {
		return nil, err
	}
	if payload != "" {
		reqBody = strings.NewReader(payload)
	}

	req, err = http.NewRequestWithContext(ctx, method, c.server+api, reqBody)
	if err != nil {
		return nil, err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rep, err = c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, qerror.GatewayUnavailable.Format(c.Address(), err.Error())
	}
	defer rep.Body.Close()

	repBody, err := ioutil.ReadAll(rep.Body)
	if err != nil {
		return nil, qerror.GatewayUnavailable.Format(c.Address(), err.Error())
	}

	if rep.StatusCode != http.StatusOK {
		return nil, &requestError{api: method + " " + api, status: rep.StatusCode, message: errorMessage(repBody)}
	}

	if len(repBody) == 0 {
		return fastjson.MustParse("{}"), nil
	}
	var parser fastjson.Parser
	val, err := parser.ParseBytes(repBody)
	if err != nil {
		return nil, errors.Wrapf(err, "parse reply of %s %s", method, api)
	}
	return val, nil
}

// errorMessage extracts {"errors": [...]} from a failed reply, falling
// back to the raw body.
func errorMessage(body []byte) string {
	val, err := fastjson.ParseBytes(body)
	if err != nil {
		return string(body)
	}
	msgs := val.GetArray("errors")
	if len(msgs) == 0 {
		return string(body)
	}
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if b := m.GetStringBytes(); b != nil {
			parts = append(parts, string(b))
		} else {
			parts = append(parts, m.String())
		}
	}
	return strings.Join(parts, "; ")
}

func sessionAPI(sessionID string) string {
	return fmt.Sprintf("/sessions/%s", sessionID)
}

func operationAPI(sessionID string, operationID string) string {
	return fmt.Sprintf("/sessions/%s/operations/%s", sessionID, operationID)
}
