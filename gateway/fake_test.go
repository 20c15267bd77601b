package gateway

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// fakeGateway mimics the SQL Gateway REST endpoints used by Client.
type fakeGateway struct {
	mu         sync.Mutex
	sessions   map[string]map[string]string
	operations map[string]string
	names      []string
	notReady   int
	fetched    []string
	configured []map[string]interface{}
	canceled   []string
	closedOps  []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		sessions:   map[string]map[string]string{},
		operations: map[string]string{},
	}
}

func (g *fakeGateway) start(t *testing.T) (*httptest.Server, *Client) {
	srv := httptest.NewServer(g)
	t.Cleanup(srv.Close)
	addr := srv.Listener.Addr().(*net.TCPAddr)
	return srv, NewClient(addr.IP.String(), addr.Port, WithPollInterval(0))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func missing(w http.ResponseWriter, what string, id string) {
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"errors": []string{"Internal server error.", fmt.Sprintf("%s '%s' does not exist.", what, id)},
	})
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/v2"), "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "info":
		writeJSON(w, http.StatusOK, map[string]string{"productName": "Apache Flink", "version": "1.18.1"})
	case len(parts) == 1 && parts[0] == "sessions" && r.Method == http.MethodPost:
		var body openSessionRequest
		b, _ := ioutil.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		id := uuid.New().String()
		g.names = append(g.names, body.SessionName)
		g.sessions[id] = map[string]string{"execution.runtime-mode": "streaming", "sql-gateway.session.idle-timeout": "10min"}
		writeJSON(w, http.StatusOK, map[string]string{"sessionHandle": id})
	case len(parts) >= 2 && parts[0] == "sessions":
		props, ok := g.sessions[parts[1]]
		if !ok {
			missing(w, "Session", parts[1])
			return
		}
		g.serveSession(w, r, parts[1], props, parts[2:])
	default:
		http.NotFound(w, r)
	}
}

func (g *fakeGateway) serveSession(w http.ResponseWriter, r *http.Request, sid string, props map[string]string, rest []string) {
	switch {
	case len(rest) == 0 && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{"properties": props})
	case len(rest) == 0 && r.Method == http.MethodDelete:
		delete(g.sessions, sid)
		writeJSON(w, http.StatusOK, map[string]string{"status": "CLOSED"})
	case len(rest) == 1 && rest[0] == "heartbeat":
		writeJSON(w, http.StatusOK, map[string]string{})
	case len(rest) == 1 && rest[0] == "configure-session":
		body := map[string]interface{}{}
		b, _ := ioutil.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		g.configured = append(g.configured, body)
		if body["statement"] == "USE CATALOG missing" {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"errors": []string{"Internal server error.", "org.apache.flink.table.catalog.exceptions.CatalogException: A catalog with name [missing] does not exist."},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{})
	case len(rest) == 1 && rest[0] == "statements":
		var body executeStatementRequest
		b, _ := ioutil.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		id := uuid.New().String()
		g.operations[id] = string(OperationRunning)
		if strings.Contains(body.Statement, "broken_table") {
			g.operations[id] = string(OperationError)
		}
		writeJSON(w, http.StatusOK, map[string]string{"operationHandle": id})
	case len(rest) >= 3 && rest[0] == "operations":
		oid := rest[1]
		if _, ok := g.operations[oid]; !ok {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"errors": []string{fmt.Sprintf("Can not find the submitted operation in the OperationManager with the %s.", oid)},
			})
			return
		}
		g.serveOperation(w, r, sid, oid, rest[2:])
	default:
		http.NotFound(w, r)
	}
}

func (g *fakeGateway) serveOperation(w http.ResponseWriter, r *http.Request, sid string, oid string, rest []string) {
	switch rest[0] {
	case "status":
		writeJSON(w, http.StatusOK, map[string]string{"status": g.operations[oid]})
	case "cancel":
		g.operations[oid] = string(OperationCanceled)
		g.canceled = append(g.canceled, oid)
		writeJSON(w, http.StatusOK, map[string]string{"status": "CANCELED"})
	case "close":
		delete(g.operations, oid)
		g.closedOps = append(g.closedOps, oid)
		writeJSON(w, http.StatusOK, map[string]string{"status": "CLOSED"})
	case "result":
		token := rest[1]
		g.fetched = append(g.fetched, token)
		if g.operations[oid] == string(OperationError) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"resultType": "ERROR",
				"resultKind": "SUCCESS",
				"results":    map[string]interface{}{"columns": []interface{}{}, "data": []interface{}{}},
			})
			return
		}
		if g.notReady > 0 {
			g.notReady--
			writeJSON(w, http.StatusOK, map[string]interface{}{"resultType": "NOT_READY", "nextResultUri": r.URL.Path + "?rowFormat=JSON"})
			return
		}
		if token == "0" {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"resultType":    "PAYLOAD",
				"isQueryResult": true,
				"jobID":         "a7f2b4c1e9d84f5b8c0a6d3e2f1b9c7d",
				"resultKind":    "SUCCESS_WITH_CONTENT",
				"results": map[string]interface{}{
					"columns": []interface{}{
						map[string]interface{}{"name": "EXPR$0", "logicalType": map[string]interface{}{"type": "INTEGER", "nullable": false}, "comment": nil},
					},
					"rowFormat": "JSON",
					"data":      []interface{}{map[string]interface{}{"kind": "INSERT", "fields": []interface{}{1}}},
				},
				"nextResultUri": fmt.Sprintf("/v2/sessions/%s/operations/%s/result/1?rowFormat=JSON", sid, oid),
			})
			return
		}
		g.operations[oid] = string(OperationFinished)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"resultType":    "EOS",
			"isQueryResult": true,
			"resultKind":    "SUCCESS_WITH_CONTENT",
			"results":       map[string]interface{}{"columns": []interface{}{}, "data": []interface{}{}},
		})
	default:
		http.NotFound(w, r)
	}
}
