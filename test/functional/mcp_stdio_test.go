package functional_test

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/estimator/internal/domain/takeoff"
)

func newStdioSession(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()

	binaryPath := "./bin/estimator"
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		binaryPath = "../../bin/estimator"
		if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
			t.Skip("Server binary not found. Build cmd/server into bin/estimator first.")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	cmd := exec.CommandContext(ctx, binaryPath)
	cmd.Env = append(os.Environ(),
		"ESTIMATOR_TRANSPORT_MODE=stdio",
		"ESTIMATOR_DB_PATH=:memory:",
		// Nothing listens here, so the startup sync fails fast and local state is used.
		"ESTIMATOR_BACKEND_URL=http://127.0.0.1:1",
		"ESTIMATOR_BACKEND_TIMEOUT=1s",
	)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() {
		session.Close()
		cancel()
	})
	return session
}

func TestStdio_Initialize(t *testing.T) {
	session := newStdioSession(t)

	initResult := session.InitializeResult()
	require.NotNil(t, initResult)
	require.Equal(t, "estimator", initResult.ServerInfo.Name)
	require.NotEmpty(t, initResult.Instructions)
}

func TestStdio_DivisionsAndEmptyProjects(t *testing.T) {
	session := newStdioSession(t)

	var divisions struct {
		Divisions []takeoff.Division `json:"divisions"`
	}
	result := callTool(t, session, "list_divisions", nil, &divisions)
	require.False(t, result.IsError)
	require.Equal(t, takeoff.Divisions(), divisions.Divisions)

	var projects struct {
		Projects []json.RawMessage `json:"projects"`
	}
	result = callTool(t, session, "list_projects", nil, &projects)
	require.False(t, result.IsError)
	require.Empty(t, projects.Projects)

	var apiErr struct {
		Code string `json:"code"`
	}
	result = callTool(t, session, "get_takeoff", nil, &apiErr)
	require.True(t, result.IsError)
	require.Equal(t, "PROJECT_NOT_FOUND", apiErr.Code)
}
