package executor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/DataWorkbench/paimonweb/gateway"
)

func TestGatewayExecutorLifecycle(t *testing.T) {
	g := &fakeGateway{pages: map[int64]*gateway.ResultPage{
		0: {
			ResultType:    gateway.ResultPayload,
			ResultKind:    "SUCCESS_WITH_CONTENT",
			IsQueryResult: true,
			Columns:       []gateway.Column{{Name: "EXPR$0", Type: "INTEGER"}},
			Rows:          []gateway.Row{{Kind: "INSERT", Fields: []interface{}{json.Number("1")}}},
			HasNext:       true,
			NextToken:     1,
		},
		1: {ResultType: gateway.ResultEOS, ResultKind: "SUCCESS_WITH_CONTENT", IsQueryResult: true},
	}}
	p := NewProvider(ExecuteConfig{
		Gateway:        g,
		InitStatements: []string{"USE CATALOG paimon", "USE db_ods"},
	})
	factory, err := p.GetExecutorFactory(TaskTypeFlinkSQLGateway)
	require.Nil(t, err)

	ctx := context.Background()
	ex, err := factory.CreateExecutor(ctx)
	require.Nil(t, err)
	require.Equal(t, []string{""}, g.opened)
	require.Equal(t, []string{"USE CATALOG paimon", "USE db_ods"}, g.configured)

	result, err := ex.ExecuteSQL(ctx, "SELECT 1")
	require.Nil(t, err)
	require.Equal(t, testSessionID, result.SessionID)
	require.Equal(t, testOperationID, result.OperationID)
	require.True(t, result.ShouldFetch)
	require.Len(t, result.Rows, 1)

	result, err = ex.FetchResults(ctx, FetchResultParams{SessionID: result.SessionID, OperationID: result.OperationID, Token: result.NextToken})
	require.Nil(t, err)
	require.False(t, result.ShouldFetch)
	require.Equal(t, []int64{0, 1}, g.fetchedWith)

	require.True(t, ex.Stop(ctx, FetchResultParams{SessionID: testSessionID, OperationID: testOperationID}).OK())
	require.Equal(t, []string{testOperationID}, g.canceled)
	require.Equal(t, []string{testOperationID}, g.closedOps)

	require.True(t, ex.Close(ctx).OK())
	require.Equal(t, []string{testSessionID}, g.closed)
}

func TestGatewayExecutorSharedSession(t *testing.T) {
	g := &fakeGateway{}
	session := &gateway.Session{ID: testSessionID, Status: gateway.SessionActive}
	factory, err := NewProvider(ExecuteConfig{Gateway: g, Session: session}).GetExecutorFactory(TaskTypeFlinkSQLGateway)
	require.Nil(t, err)

	ex, err := factory.CreateExecutor(context.Background())
	require.Nil(t, err)
	require.Empty(t, g.opened)
	require.True(t, ex.Close(context.Background()).OK())
	require.Empty(t, g.closed)
}

func TestGatewayExecutorConfigureFailureClosesSession(t *testing.T) {
	g := &fakeGateway{configureErr: errors.New("catalog paimon does not exist")}
	factory, err := NewProvider(ExecuteConfig{Gateway: g, InitStatements: []string{"USE CATALOG paimon"}}).GetExecutorFactory(TaskTypeFlinkSQLGateway)
	require.Nil(t, err)

	_, err = factory.CreateExecutor(context.Background())
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "catalog paimon does not exist")
	require.Equal(t, []string{testSessionID}, g.closed)
}

func TestGatewayExecutorOpenFailure(t *testing.T) {
	g := &fakeGateway{openErr: errors.New("connection refused")}
	factory, err := NewProvider(ExecuteConfig{Gateway: g}).GetExecutorFactory(TaskTypeFlinkSQLGateway)
	require.Nil(t, err)

	_, err = factory.CreateExecutor(context.Background())
	require.EqualError(t, err, "connection refused")
}

func TestGatewayExecutorStopReportsCancelFailure(t *testing.T) {
	g := &fakeGateway{cancelFails: true}
	ex := &GatewayExecutor{client: g, session: &gateway.Session{ID: testSessionID}}

	result := ex.Stop(context.Background(), FetchResultParams{SessionID: testSessionID, OperationID: testOperationID})
	require.False(t, result.OK())
	require.Equal(t, []string{testOperationID}, g.closedOps)
}
