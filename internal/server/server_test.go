package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() Option {
	logger, _ := test.NewNullLogger()
	return WithLogger(logrus.NewEntry(logger))
}

// serve runs the server over the given request lines and returns every
// response it wrote.
func serve(t *testing.T, lines ...string) []MCPResponse {
	t.Helper()
	var out bytes.Buffer
	s := New(quiet(), WithIO(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out))
	require.NoError(t, s.Run(context.Background()))

	var resps []MCPResponse
	dec := json.NewDecoder(&out)
	for {
		var r MCPResponse
		err := dec.Decode(&r)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		resps = append(resps, r)
	}
	return resps
}

func TestNew(t *testing.T) {
	s := New(quiet())
	require.NotNil(t, s)
	assert.NotNil(t, s.cache)
	assert.NotNil(t, s.registry)
	assert.Equal(t, "server", s.log.Data["component"])
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{"string id", `{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`, "test-1", "tools/list"},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"ping"}`, float64(42), "ping"},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"initialize"}`, nil, "initialize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			require.NoError(t, json.Unmarshal([]byte(tt.json), &req))
			assert.Equal(t, tt.wantID, req.ID)
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, "2.0", req.JSONRPC)
		})
	}
}

func TestRun_Handshake(t *testing.T) {
	resps := serve(t,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	)
	require.Len(t, resps, 2)

	assert.Equal(t, float64(1), resps[0].ID)
	result, ok := resps[0].Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2024-11-05", result["protocolVersion"])
	info := result["serverInfo"].(map[string]interface{})
	assert.Equal(t, "imagein", info["name"])
	assert.Equal(t, Version, info["version"])

	assert.Equal(t, float64(2), resps[1].ID)
	assert.Nil(t, resps[1].Error)
}

func TestRun_Errors(t *testing.T) {
	resps := serve(t,
		`not json`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":"oops"}`,
	)
	require.Len(t, resps, 3)

	require.NotNil(t, resps[0].Error)
	assert.Equal(t, codeParseError, resps[0].Error.Code)
	assert.Nil(t, resps[0].ID)

	require.NotNil(t, resps[1].Error)
	assert.Equal(t, codeMethodNotFound, resps[1].Error.Code)
	assert.Contains(t, resps[1].Error.Message, "resources/list")

	require.NotNil(t, resps[2].Error)
	assert.Equal(t, codeInvalidParams, resps[2].Error.Code)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	s := New(quiet(), WithIO(strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out))
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
	assert.Zero(t, out.Len())
}

func TestToolsList(t *testing.T) {
	resps := serve(t, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.Len(t, resps, 1)

	var listed struct {
		Tools []Tool `json:"tools"`
	}
	raw, err := json.Marshal(resps[0].Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &listed))

	var names []string
	for _, tool := range listed.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"image_load", "image_crop", "image_histogram", "image_projection", "image_otsu",
		"image_filter", "image_morphology", "image_binarize", "image_invert",
		"image_apply", "image_algorithms",
	}, names)
}

func TestToolDefinitions_Schemas(t *testing.T) {
	for _, tool := range ToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			assert.NotEmpty(t, tool.Description)
			assert.Equal(t, "object", tool.InputSchema["type"])
			props, ok := tool.InputSchema["properties"].(schema)
			if tool.Name == "image_algorithms" {
				return
			}
			require.True(t, ok)
			assert.Contains(t, props, "path")
			required := tool.InputSchema["required"].([]string)
			assert.Contains(t, required, "path")
			for _, r := range required {
				assert.Contains(t, props, r)
			}
		})
	}
}

func TestPing_HasResult(t *testing.T) {
	var out bytes.Buffer
	s := New(quiet(), WithIO(strings.NewReader(`{"jsonrpc":"2.0","id":9,"method":"ping"}`+"\n"), &out))
	require.NoError(t, s.Run(context.Background()))
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":9,"result":{}}`, strings.TrimSpace(out.String()))
}
