// Package testserver runs the full HTTP stack against an in-memory database
// and a mocked backend.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/estimator/internal/document/documenttest"
	"github.com/rpggio/estimator/internal/domain/activity"
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/mcp"
	"github.com/rpggio/estimator/internal/repository/mocks"
	"github.com/rpggio/estimator/internal/sqlite"
	"github.com/rpggio/estimator/internal/transport"
	"github.com/rpggio/estimator/internal/workspace"
)

type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Token     string
	Backend   *mocks.Backend
	Remote    *mocks.Remote
	Archive   *documenttest.Archive
	Workspace *workspace.Service
}

// New starts a server seeded with projects. The first project is selected.
func New(t *testing.T, token string, projects ...project.Project) *TestServer {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	state := sqlite.NewStateRepository(db)
	if len(projects) > 0 {
		require.NoError(t, state.SaveProjects(ctx, projects))
	}
	remote := &mocks.Remote{}
	store := project.NewStore(state, remote, nil)
	require.NoError(t, store.Load(ctx))
	if len(projects) > 0 {
		require.NoError(t, store.Select(projects[0].ID))
	}

	be := &mocks.Backend{}
	archive := documenttest.NewArchive()
	ws := workspace.NewService(store, be, activity.NewService(sqlite.NewActivityRepository(db), nil),
		workspace.Options{MaxFileSize: 1 << 20, Archive: archive}, nil)

	mcpServer := mcp.NewServer(mcp.Config{Workspace: ws})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer }, nil)

	server := httptest.NewServer(transport.NewServer(ws, transport.Options{
		MCP:  mcpHandler,
		Auth: transport.AuthMiddleware(token),
	}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:    server,
		DB:        db,
		Token:     token,
		Backend:   be,
		Remote:    remote,
		Archive:   archive,
		Workspace: ws,
	}
}

// Client returns an HTTP client that sends the bearer token.
func (ts *TestServer) Client() *http.Client {
	return &http.Client{Transport: bearerTransport{token: ts.Token, next: http.DefaultTransport}}
}

type bearerTransport struct {
	token string
	next  http.RoundTripper
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.next.RoundTrip(req)
}
