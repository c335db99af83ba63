package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpggio/estimator/internal/backend"
	"github.com/rpggio/estimator/internal/document/documenttest"
	"github.com/rpggio/estimator/internal/domain/activity"
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
	"github.com/rpggio/estimator/internal/repository/mocks"
	"github.com/rpggio/estimator/internal/sqlite"
	"github.com/rpggio/estimator/internal/transport"
	"github.com/rpggio/estimator/internal/workspace"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	server  *httptest.Server
	backend *mocks.Backend
	remote  *mocks.Remote
	store   *project.Store
}

func newAPI(t *testing.T, token string, projects ...project.Project) *apiFixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	state := sqlite.NewStateRepository(db)
	if len(projects) > 0 {
		require.NoError(t, state.SaveProjects(ctx, projects))
	}
	remote := &mocks.Remote{}
	store := project.NewStore(state, remote, nil)
	require.NoError(t, store.Load(ctx))

	be := &mocks.Backend{}
	act := activity.NewService(sqlite.NewActivityRepository(db), nil)
	ws := workspace.NewService(store, be, act, workspace.Options{MaxFileSize: 1 << 20}, nil)

	opts := transport.Options{}
	if token != "" {
		opts.Auth = transport.AuthMiddleware(token)
	}
	srv := httptest.NewServer(transport.NewServer(ws, opts))
	t.Cleanup(srv.Close)
	return &apiFixture{server: srv, backend: be, remote: remote, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.server.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func strPtr(s string) *string { return &s }

func TestHTTPServer_Health(t *testing.T) {
	f := newAPI(t, "secret")

	resp, err := http.Get(f.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_RequiresToken(t *testing.T) {
	f := newAPI(t, "secret")

	resp := f.do(t, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/projects", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	ok, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer ok.Body.Close()
	require.Equal(t, http.StatusOK, ok.StatusCode)
}

func TestHTTPServer_ProjectLifecycle(t *testing.T) {
	f := newAPI(t, "")

	resp := f.do(t, http.MethodPost, "/api/projects", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[project.Project](t, resp)
	require.True(t, created.IsTemporary)
	require.Equal(t, project.DefaultName, created.Name)

	resp = f.do(t, http.MethodPatch, "/api/projects/"+created.ID, map[string]any{"name": "  Fire Hall  ", "summary": "Two bays"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	patched := decode[project.Project](t, resp)
	require.Equal(t, "Fire Hall", patched.Name)
	require.Equal(t, "Two bays", patched.Summary)

	resp = f.do(t, http.MethodGet, "/api/projects", nil)
	list := decode[transport.ListProjectsResponse](t, resp)
	require.Len(t, list.Projects, 1)
	require.Equal(t, created.ID, list.Selected)

	resp = f.do(t, http.MethodDelete, "/api/projects/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	f.remote.AssertNotCalled(t, "DeleteProject", mock.Anything, mock.Anything)

	resp = f.do(t, http.MethodGet, "/api/projects/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPServer_PatchProjectAppliesAllFieldsTogether(t *testing.T) {
	f := newAPI(t, "", project.Project{ID: "p1", Name: "Clinic", Summary: "Old", Preferences: project.DefaultPreferences()})

	resp := f.do(t, http.MethodPatch, "/api/projects/p1", map[string]any{
		"name":        "  Clinic Annex ",
		"summary":     "Two storeys",
		"preferences": map[string]any{"scopeSensitivity": 0.5, "defaultLaborRate": 65},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	patched := decode[project.Project](t, resp)
	require.Equal(t, "Clinic Annex", patched.Name)
	require.Equal(t, "Two storeys", patched.Summary)
	require.Equal(t, project.Preferences{ScopeSensitivity: 0.5, DefaultLaborRate: 65}, patched.Preferences)

	resp = f.do(t, http.MethodPatch, "/api/projects/p1", map[string]any{"name": "   ", "summary": "Kept"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	patched = decode[project.Project](t, resp)
	require.Equal(t, "Clinic Annex", patched.Name)
	require.Equal(t, "Kept", patched.Summary)
}

func TestHTTPServer_PatchProjectRejectsWholePatchOnBadPreferences(t *testing.T) {
	f := newAPI(t, "", project.Project{ID: "p1", Name: "Clinic", Summary: "Old", Preferences: project.DefaultPreferences()})

	resp := f.do(t, http.MethodPatch, "/api/projects/p1", map[string]any{
		"name":        "Renamed",
		"summary":     "New",
		"preferences": map[string]any{"scopeSensitivity": 2},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	p, err := f.store.Get("p1")
	require.NoError(t, err)
	require.Equal(t, "Clinic", p.Name)
	require.Equal(t, "Old", p.Summary)
	require.Equal(t, project.DefaultPreferences(), p.Preferences)
}

func TestHTTPServer_DeleteNeedsForceAfterRemoteFailure(t *testing.T) {
	f := newAPI(t, "", project.Project{ID: "p1", Name: "Clinic"})
	f.remote.On("DeleteProject", mock.Anything, "p1").Return(errors.New("offline"))

	resp := f.do(t, http.MethodDelete, "/api/projects/p1", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, decode[transport.ErrorResponse](t, resp).Error, "force=true")
	_, err := f.store.Get("p1")
	require.NoError(t, err)

	resp = f.do(t, http.MethodDelete, "/api/projects/p1?force=true", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, err = f.store.Get("p1")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestHTTPServer_SyncKeepsLocalOnFailure(t *testing.T) {
	f := newAPI(t, "", project.Project{ID: "p1"})
	f.remote.On("ListProjects", mock.Anything).Return(nil, errors.New("offline")).Once()

	resp := f.do(t, http.MethodPost, "/api/projects/sync", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Len(t, f.store.List(), 1)
}

func TestHTTPServer_TakeoffView(t *testing.T) {
	items := []takeoff.Item{
		{ID: 1, Division: takeoff.DivisionLabel("09"), Description: "Paint walls", Quantity: 10, UnitCost: 2},
		{ID: 2, Division: takeoff.DivisionLabel("03"), Description: "Slab", Quantity: 1, UnitCost: 500},
		{ID: 3, Division: takeoff.DivisionLabel("09"), Description: "Paint doors", Quantity: 4, UnitCost: 10},
	}
	f := newAPI(t, "", project.Project{ID: "p1", Takeoff: items})

	resp := f.do(t, http.MethodGet, "/api/projects/p1/takeoff?division=09&sort=totalCost&dir=desc", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[workspace.TakeoffView](t, resp)
	require.Len(t, view.Items, 2)
	require.Equal(t, int64(3), view.Items[0].ID)
	require.Equal(t, "60.00", view.Totals.Subtotal.StringFixed(2))
	require.Equal(t, "560.00", view.Subtotal.StringFixed(2))

	resp = f.do(t, http.MethodGet, "/api/projects/p1/takeoff?sort=hash", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_ItemEdits(t *testing.T) {
	f := newAPI(t, "", project.Project{ID: "p1", Takeoff: []takeoff.Item{{ID: 7, Description: "Paint", Quantity: 1}}})

	resp := f.do(t, http.MethodPatch, "/api/projects/p1/takeoff/7", transport.UpdateItemRequest{Field: "modifier", Value: "150"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[transport.UpdateItemResponse](t, resp)
	require.False(t, res.Applied)
	require.Zero(t, res.Item.Modifier)

	resp = f.do(t, http.MethodPatch, "/api/projects/p1/takeoff/7", transport.UpdateItemRequest{Field: "quantity", Value: "12.5"})
	res = decode[transport.UpdateItemResponse](t, resp)
	require.True(t, res.Applied)
	require.Equal(t, 12.5, res.Item.Quantity)

	resp = f.do(t, http.MethodPatch, "/api/projects/p1/takeoff/abc", transport.UpdateItemRequest{Field: "quantity", Value: "1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	f.backend.On("ClassifyItem", mock.Anything, "Gypsum board").Return("", errors.New("offline")).Once()
	resp = f.do(t, http.MethodPost, "/api/projects/p1/takeoff", map[string]any{"description": "Gypsum board", "quantity": "40", "unit": "SF"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	added := decode[takeoff.Item](t, resp)
	require.Equal(t, takeoff.UnknownDivision, added.Division)
	require.Equal(t, 40.0, added.Quantity)

	resp = f.do(t, http.MethodDelete, "/api/projects/p1/takeoff/7", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = f.do(t, http.MethodDelete, "/api/projects/p1/takeoff/7", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPServer_ExportCSV(t *testing.T) {
	items := []takeoff.Item{{ID: 1, Division: takeoff.DivisionLabel("09"), Description: "Paint", Quantity: 2, Unit: "GAL", UnitCost: 30}}
	f := newAPI(t, "", project.Project{ID: "p1", Name: "Fire Hall", Takeoff: items})

	resp := f.do(t, http.MethodGet, "/api/projects/p1/export?format=csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	require.Contains(t, resp.Header.Get("Content-Disposition"), "Fire Hall_takeoff_")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(body), `"Division","Description"`))
	require.Contains(t, string(body), `"Paint","2","GAL","30.00","0","60.00"`)

	resp = f.do(t, http.MethodGet, "/api/projects/p1/export?format=pdf", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_ScanGuardsAndBusy(t *testing.T) {
	f := newAPI(t, "", project.Project{ID: "p1"})

	resp := f.do(t, http.MethodPost, "/api/projects/p1/scans/takeoff", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, workspace.ErrNoFiles.Error(), decode[transport.ErrorResponse](t, resp).Error)

	resp = f.do(t, http.MethodPost, "/api/projects/p1/scans/everything", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/projects/p1/busy", nil)
	require.Equal(t, workspace.BusyFlags{}, decode[workspace.BusyFlags](t, resp))
}

func TestHTTPServer_ScanBackendFailureIsBadGateway(t *testing.T) {
	files := []project.FileRecord{{ID: strPtr("f1"), Name: "plans.pdf", Type: project.FileBlueprint}}
	f := newAPI(t, "", project.Project{ID: "p1", Files: files})
	f.backend.On("ScanDivisions", mock.Anything, "p1").Return(nil, &backend.APIError{Status: 500, Detail: "model error"}).Once()

	resp := f.do(t, http.MethodPost, "/api/projects/p1/scans/divisions", nil)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	p, err := f.store.Get("p1")
	require.NoError(t, err)
	require.Contains(t, p.Message, "Divisions scan failed")
}

func TestHTTPServer_UploadMultipart(t *testing.T) {
	f := newAPI(t, "", project.Project{ID: "p1"})
	f.backend.On("Upload", mock.Anything, "p1", "quote.pdf", mock.Anything).Return("f9", nil).Once()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("type", "quote"))
	part, err := mw.CreateFormFile("files", "quote.pdf")
	require.NoError(t, err)
	_, err = part.Write(documenttest.PDF(1))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(f.server.URL+"/api/projects/p1/files", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	res := decode[workspace.UploadResult](t, resp)
	require.Len(t, res.Uploaded, 1)
	require.Equal(t, "f9", res.Uploaded[0].FileID())
	require.Equal(t, "1 file(s) uploaded successfully. Processing...", res.Project.Message)
	f.backend.AssertNotCalled(t, "ScanSummary", mock.Anything, mock.Anything)
}

func TestHTTPServer_ChatFailureReturnsApology(t *testing.T) {
	f := newAPI(t, "", project.Project{ID: "p1"})
	f.backend.On("Chat", mock.Anything, mock.Anything).Return(backend.ChatReply{}, errors.New("timeout")).Once()

	resp := f.do(t, http.MethodPost, "/api/projects/p1/chat", transport.ChatRequest{Message: "How much paint?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[workspace.ChatResult](t, resp)
	require.Contains(t, res.Reply.Text, "Sorry, I encountered an error: timeout.")

	resp = f.do(t, http.MethodPost, "/api/projects/p1/chat", transport.ChatRequest{Message: " "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_Activity(t *testing.T) {
	f := newAPI(t, "", project.Project{ID: "p1"})

	resp := f.do(t, http.MethodPost, "/api/projects/p1/scans/summary", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/activity?project_id=p1&failed=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Activity []activity.ActivityEntry `json:"activity"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Activity, 1)
	require.Equal(t, activity.TypeScanSummary, body.Activity[0].ActivityType)
	require.Equal(t, "Please upload at least one file to scan.", body.Activity[0].Summary)

	resp = f.do(t, http.MethodGet, "/api/activity?limit=many", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_Analytics(t *testing.T) {
	f := newAPI(t, "")
	f.backend.On("Analytics", mock.Anything, 7, "west").Return(backend.DefaultAnalytics()).Once()

	resp := f.do(t, http.MethodGet, "/api/analytics?days=7&region=west", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	f.backend.AssertExpectations(t)
}

func TestHTTPServer_NotesAndTables(t *testing.T) {
	tables := []project.Table{{ID: "t1", TableType: "Finish Schedule", Filename: "plans.pdf"}}
	f := newAPI(t, "", project.Project{ID: "p1", Tables: tables})

	resp := f.do(t, http.MethodPost, "/api/projects/p1/notes", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	note := decode[project.Note](t, resp)

	resp = f.do(t, http.MethodPatch, "/api/projects/p1/notes/"+note.ID, transport.NoteRequest{Text: "Verify alternates"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodPut, "/api/projects/p1/tables/t1/comment", transport.CommentRequest{Comment: "Matches spec"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/projects/p1/tables?type=Finish%20Schedule", nil)
	var groups struct {
		Groups []workspace.TableGroupView `json:"groups"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&groups))
	require.Len(t, groups.Groups, 1)
	require.Equal(t, "Matches spec", groups.Groups[0].Tables[0].Comment)

	resp = f.do(t, http.MethodDelete, "/api/projects/p1/notes/missing", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	p, err := f.store.Get("p1")
	require.NoError(t, err)
	require.Equal(t, "Verify alternates", p.Notes[0].Text)
}
