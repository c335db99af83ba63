package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
)

func projectPath(projectID string, rest ...string) string {
	p := "/api/projects/" + url.PathEscape(projectID)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// Upload sends a document and returns the identifier the backend assigned.
func (c *Client) Upload(ctx context.Context, projectID, filename string, data []byte) (string, error) {
	var resp struct {
		FileID Text `json:"fileId"`
	}
	if err := c.doMultipart(ctx, projectPath(projectID, "upload"), filename, data, &resp); err != nil {
		return "", fmt.Errorf("uploading %s: %w", filename, err)
	}
	if resp.FileID == "" {
		return "", fmt.Errorf("uploading %s: %w: no file id", filename, ErrMalformedResponse)
	}
	return string(resp.FileID), nil
}

// GetFile downloads the raw bytes of an uploaded file.
func (c *Client) GetFile(ctx context.Context, projectID, fileID string) ([]byte, error) {
	var data []byte
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID, "files", fileID), nil, &data); err != nil {
		return nil, fmt.Errorf("fetching file %s: %w", fileID, err)
	}
	return data, nil
}

// DeleteFile removes an uploaded file. A missing file is not an error.
func (c *Client) DeleteFile(ctx context.Context, projectID, fileID string) error {
	err := c.doJSON(ctx, http.MethodDelete, projectPath(projectID, "files", fileID), nil, nil)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting file %s: %w", fileID, err)
	}
	return nil
}

// DeleteProject removes a project. A missing project is not an error.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	err := c.doJSON(ctx, http.MethodDelete, projectPath(projectID), nil, nil)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting project %s: %w", projectID, err)
	}
	return nil
}

// ListProjects fetches every project the backend knows about.
func (c *Client) ListProjects(ctx context.Context) ([]project.Project, error) {
	var resp struct {
		Projects []remoteProject `json:"projects"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/projects", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	out := make([]project.Project, 0, len(resp.Projects))
	for _, rp := range resp.Projects {
		if rp.ID == "" {
			c.logger.Warn("skipping backend project without id", "name", rp.Name)
			continue
		}
		out = append(out, rp.toProject())
	}
	return out, nil
}

// ParseSpec indexes a specification manual.
func (c *Client) ParseSpec(ctx context.Context, filename string, data []byte) ([]json.RawMessage, error) {
	var resp SpecParseResult
	if err := c.doMultipart(ctx, "/api/parse-spec", filename, data, &resp); err != nil {
		return nil, fmt.Errorf("parsing spec %s: %w", filename, err)
	}
	if resp.SpecIndex == nil {
		resp.SpecIndex = []json.RawMessage{}
	}
	return resp.SpecIndex, nil
}

func (c *Client) scan(ctx context.Context, projectID string, typ ScanType, out any) error {
	body := map[string]string{"scan_type": string(typ)}
	if err := c.doJSON(ctx, http.MethodPost, projectPath(projectID, "scan"), body, out); err != nil {
		return fmt.Errorf("scanning %s: %w", typ, err)
	}
	return nil
}

// ScanSummary asks for the project summary and title.
func (c *Client) ScanSummary(ctx context.Context, projectID string) (SummaryResult, error) {
	var resp SummaryResult
	err := c.scan(ctx, projectID, ScanSummary, &resp)
	return resp, err
}

// ScanDivisions asks for per-division scope descriptions.
func (c *Client) ScanDivisions(ctx context.Context, projectID string) (map[string]string, error) {
	var resp DivisionsResult
	if err := c.scan(ctx, projectID, ScanDivisions, &resp); err != nil {
		return nil, err
	}
	if resp.DivisionDescriptions == nil {
		resp.DivisionDescriptions = map[string]string{}
	}
	return resp.DivisionDescriptions, nil
}

// ScanTakeoff asks for quantity takeoff candidates.
func (c *Client) ScanTakeoff(ctx context.Context, projectID string) ([]takeoff.Candidate, error) {
	var resp TakeoffResult
	if err := c.scan(ctx, projectID, ScanTakeoff, &resp); err != nil {
		return nil, err
	}
	if resp.Takeoff == nil {
		resp.Takeoff = []takeoff.Candidate{}
	}
	return resp.Takeoff, nil
}

// ClassifyItem returns the division code suggested for a description.
func (c *Client) ClassifyItem(ctx context.Context, description string) (string, error) {
	var resp struct {
		Division Text `json:"division"`
	}
	body := map[string]string{"description": description}
	if err := c.doJSON(ctx, http.MethodPost, "/api/classify-item", body, &resp); err != nil {
		return "", fmt.Errorf("classifying item: %w", err)
	}
	return string(resp.Division), nil
}

// Chat sends a discussion turn.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatReply, error) {
	var resp ChatReply
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", req, &resp); err != nil {
		return ChatReply{}, fmt.Errorf("chat: %w", err)
	}
	if resp.Reply == "" {
		resp.Reply = "No response."
	}
	return resp, nil
}

// Audit compares the takeoff against the specifications.
func (c *Client) Audit(ctx context.Context, projectID string, req AuditRequest) ([]AuditIssue, error) {
	var resp struct {
		AuditReport []AuditIssue `json:"auditReport"`
	}
	if err := c.doJSON(ctx, http.MethodPost, projectPath(projectID, "audit"), req, &resp); err != nil {
		return nil, fmt.Errorf("auditing: %w", err)
	}
	if resp.AuditReport == nil {
		resp.AuditReport = []AuditIssue{}
	}
	return resp.AuditReport, nil
}

// RecordOutcome reports how a bid ended.
func (c *Client) RecordOutcome(ctx context.Context, projectID string, outcome project.Outcome) error {
	if err := c.doJSON(ctx, http.MethodPost, projectPath(projectID, "outcome"), outcome, nil); err != nil {
		return fmt.Errorf("recording outcome: %w", err)
	}
	return nil
}

// PricingIntelligence fetches a price suggestion for an item description.
func (c *Client) PricingIntelligence(ctx context.Context, description, location string) (PricingIntel, error) {
	path := "/api/intelligence/pricing/" + url.PathEscape(description) + "?" + url.Values{"location": {location}}.Encode()
	var resp PricingIntel
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return PricingIntel{}, fmt.Errorf("fetching pricing: %w", err)
	}
	return resp, nil
}

// RecordPriceCorrection teaches the backend the price the user chose.
func (c *Client) RecordPriceCorrection(ctx context.Context, projectID string, correction PriceCorrection) error {
	if correction.Reason == "" {
		correction.Reason = "manual_adjustment"
	}
	if err := c.doJSON(ctx, http.MethodPost, projectPath(projectID, "learn", "price-correction"), correction, nil); err != nil {
		return fmt.Errorf("recording price correction: %w", err)
	}
	return nil
}
