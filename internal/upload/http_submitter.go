package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"syllabye/internal/api/v1/dto"
	"syllabye/internal/model"
)

// HTTPSubmitter registers metadata through the web tier's
// POST /api/syllabi/upload route instead of calling the backend directly.
type HTTPSubmitter struct {
	siteURL string
	client  *http.Client
}

func NewHTTPSubmitter(siteURL string, timeout time.Duration) *HTTPSubmitter {
	return &HTTPSubmitter{
		siteURL: strings.TrimRight(siteURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSubmitter) CreateSyllabus(ctx context.Context, cookie string, meta model.UploadMetadata) (*model.UploadTicket, error) {
	jsonBody, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.siteURL+"/api/syllabi/upload", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request to web tier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web tier returned status %d", resp.StatusCode)
	}

	var out *dto.UploadSyllabusResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("upload registration returned no body")
	}
	if !out.Success || out.Data == nil {
		return nil, fmt.Errorf("upload registration rejected (status %d): %s", out.Status, out.ErrorText)
	}
	return out.Data, nil
}
