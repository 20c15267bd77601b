package gateway

import (
	"encoding/json"
)

const (
	// DefaultSessionNamePrefix prefixes the names synthesized for unnamed sessions.
	DefaultSessionNamePrefix = "FLINK_SQL_GATEWAY_SESSION"
)

type SessionStatus int

const (
	SessionInactive SessionStatus = 0
	SessionActive   SessionStatus = 1
)

func (s SessionStatus) String() string {
	if s == SessionActive {
		return "ACTIVE"
	}
	return "INACTIVE"
}

// Session is a gateway session as opened by Client.OpenSession.
type Session struct {
	ID         string            `json:"session_id"`
	Name       string            `json:"session_name"`
	Address    string            `json:"address"`
	Port       int               `json:"port"`
	Properties map[string]string `json:"properties"`
	Status     SessionStatus     `json:"status"`
}

type OperationStatus string

const (
	OperationInitialized OperationStatus = "INITIALIZED"
	OperationPending     OperationStatus = "PENDING"
	OperationRunning     OperationStatus = "RUNNING"
	OperationFinished    OperationStatus = "FINISHED"
	OperationError       OperationStatus = "ERROR"
	OperationCanceled    OperationStatus = "CANCELED"
	OperationClosed      OperationStatus = "CLOSED"
	OperationTimeout     OperationStatus = "TIMEOUT"
)

func (s OperationStatus) IsTerminal() bool {
	switch s {
	case OperationFinished, OperationError, OperationCanceled, OperationClosed, OperationTimeout:
		return true
	}
	return false
}

type ResultType string

const (
	ResultNotReady ResultType = "NOT_READY"
	ResultPayload  ResultType = "PAYLOAD"
	ResultEOS      ResultType = "EOS"
	ResultError    ResultType = "ERROR"
)

type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Comment  string `json:"comment,omitempty"`
}

// Row is one changelog row. Numbers are kept as json.Number, nested
// structures as their raw JSON text.
type Row struct {
	Kind   string        `json:"kind"`
	Fields []interface{} `json:"fields"`
}

// ResultPage is one page of an operation's result. NextToken is only
// meaningful when HasNext is set.
type ResultPage struct {
	ResultType    ResultType `json:"result_type"`
	ResultKind    string     `json:"result_kind"`
	IsQueryResult bool       `json:"is_query_result"`
	JobID         string     `json:"job_id,omitempty"`
	Columns       []Column   `json:"columns"`
	Rows          []Row      `json:"rows"`
	HasNext       bool       `json:"has_next"`
	NextToken     int64      `json:"next_token"`
}

// CleanupResult reports a best-effort close or cancel. A failed cleanup
// is not fatal to the caller.
type CleanupResult struct {
	Err error
}

func (r CleanupResult) OK() bool {
	return r.Err == nil
}

type Info struct {
	ProductName string `json:"productName"`
	Version     string `json:"version"`
}

type openSessionRequest struct {
	SessionName string            `json:"sessionName"`
	Properties  map[string]string `json:"properties"`
}

type configureSessionRequest struct {
	Statement        string `json:"statement"`
	ExecutionTimeout *int64 `json:"executionTimeout,omitempty"`
}

type executeStatementRequest struct {
	Statement       string            `json:"statement"`
	ExecutionConfig map[string]string `json:"executionConfig"`
}

func marshalBody(body interface{}) (string, error) {
	if body == nil {
		return "", nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
