package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/DataWorkbench/paimonweb/qerror"
	"github.com/DataWorkbench/paimonweb/utils"
)

// ExecuteStatement submits a statement and returns its operation handle
// without waiting for it to finish. timeout bounds only the submission request.
func (c *Client) ExecuteStatement(ctx context.Context, sessionID string, statement string, timeout time.Duration) (string, error) {
	if err := checkHandle("session", sessionID); err != nil {
		return "", err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	rep, err := c.doRequest(ctx, http.MethodPost, sessionAPI(sessionID)+"/statements", &executeStatementRequest{
		Statement:       statement,
		ExecutionConfig: map[string]string{},
	})
	if err != nil {
		if isNotFound(err, sessionID) {
			return "", qerror.SessionNotFound.Format(sessionID)
		}
		return "", err
	}
	operationID := string(rep.GetStringBytes("operationHandle"))
	if err = checkHandle("operation", operationID); err != nil {
		return "", err
	}
	return operationID, nil
}

// FetchResults fetches the page at token. While the gateway answers
// NOT_READY it waits one poll interval and asks again with the same token,
// so the returned page is never NOT_READY.
func (c *Client) FetchResults(ctx context.Context, sessionID string, operationID string, token int64) (*ResultPage, error) {
	if err := checkHandle("session", sessionID); err != nil {
		return nil, err
	}
	if err := checkHandle("operation", operationID); err != nil {
		return nil, err
	}

	api := fmt.Sprintf("%s/result/%d?rowFormat=JSON", operationAPI(sessionID, operationID), token)
	var page *ResultPage
	err := utils.Poll(ctx, "operation "+operationID, c.poll, func(ctx context.Context) (bool, error) {
		rep, err := c.doRequest(ctx, http.MethodGet, api, nil)
		if err != nil {
			return false, handleError(err, sessionID, operationID)
		}
		if page, err = parseResultPage(rep); err != nil {
			return false, err
		}
		return page.ResultType != ResultNotReady, nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Client) GetOperationStatus(ctx context.Context, sessionID string, operationID string) (OperationStatus, error) {
	if err := checkHandle("session", sessionID); err != nil {
		return "", err
	}
	if err := checkHandle("operation", operationID); err != nil {
		return "", err
	}
	rep, err := c.doRequest(ctx, http.MethodGet, operationAPI(sessionID, operationID)+"/status", nil)
	if err != nil {
		return "", handleError(err, sessionID, operationID)
	}
	return OperationStatus(rep.GetStringBytes("status")), nil
}

func (c *Client) CancelOperation(ctx context.Context, sessionID string, operationID string) CleanupResult {
	return c.operationCleanup(ctx, http.MethodPost, "cancel", sessionID, operationID)
}

func (c *Client) CloseOperation(ctx context.Context, sessionID string, operationID string) CleanupResult {
	return c.operationCleanup(ctx, http.MethodDelete, "close", sessionID, operationID)
}

func (c *Client) operationCleanup(ctx context.Context, method string, action string, sessionID string, operationID string) CleanupResult {
	err := checkHandle("session", sessionID)
	if err == nil {
		err = checkHandle("operation", operationID)
	}
	if err == nil {
		_, err = c.doRequest(ctx, method, operationAPI(sessionID, operationID)+"/"+action, nil)
	}
	if err != nil {
		c.logger.Warn().Msg(action+" operation failed").String("session_id", sessionID).String("operation_id", operationID).String("reason", err.Error()).Fire()
	}
	return CleanupResult{Err: err}
}

// handleError maps an unknown session or operation to its error kind and
// leaves every other gateway error as reported.
func handleError(err error, sessionID string, operationID string) error {
	switch {
	case isNotFound(err, sessionID):
		return qerror.SessionNotFound.Format(sessionID)
	case isNotFound(err, operationID):
		return qerror.OperationNotFound.Format(operationID, sessionID)
	}
	return err
}

func parseResultPage(rep *fastjson.Value) (*ResultPage, error) {
	page := &ResultPage{
		ResultType:    ResultType(rep.GetStringBytes("resultType")),
		ResultKind:    string(rep.GetStringBytes("resultKind")),
		IsQueryResult: rep.GetBool("isQueryResult"),
		JobID:         string(rep.GetStringBytes("jobID")),
	}
	if page.ResultType == "" {
		return nil, errors.New("fetch results reply carries no resultType")
	}

	for _, col := range rep.GetArray("results", "columns") {
		page.Columns = append(page.Columns, Column{
			Name:     string(col.GetStringBytes("name")),
			Type:     string(col.GetStringBytes("logicalType", "type")),
			Nullable: col.GetBool("logicalType", "nullable"),
			Comment:  string(col.GetStringBytes("comment")),
		})
	}
	for _, data := range rep.GetArray("results", "data") {
		fields := data.GetArray("fields")
		row := Row{Kind: string(data.GetStringBytes("kind")), Fields: make([]interface{}, 0, len(fields))}
		for _, f := range fields {
			row.Fields = append(row.Fields, fieldValue(f))
		}
		page.Rows = append(page.Rows, row)
	}

	if next := string(rep.GetStringBytes("nextResultUri")); next != "" {
		token, err := tokenFromURI(next)
		if err != nil {
			return nil, err
		}
		page.HasNext = true
		page.NextToken = token
	}
	return page, nil
}

func fieldValue(v *fastjson.Value) interface{} {
	switch v.Type() {
	case fastjson.TypeNull:
		return nil
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return json.Number(v.String())
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return v.String()
	}
}

// tokenFromURI reads the token from ".../result/{token}?rowFormat=JSON".
func tokenFromURI(uri string) (int64, error) {
	if i := strings.Index(uri, "?"); i >= 0 {
		uri = uri[:i]
	}
	uri = strings.TrimSuffix(uri, "/")
	token, err := strconv.ParseInt(uri[strings.LastIndex(uri, "/")+1:], 10, 64)
	if err != nil {
		return 0, qerror.InvalidHandle.Format("result token", uri)
	}
	return token, nil
}
