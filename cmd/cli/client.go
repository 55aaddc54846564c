package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// apiClient talks to a running ytgrab server
type apiClient struct {
	baseURL string
	http    *http.Client
}

type infoResponse struct {
	Success   bool    `json:"success"`
	Title     string  `json:"title"`
	Thumbnail *string `json:"thumbnail"`
	URL       string  `json:"url"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type formatEntry struct {
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
	AudioOnly   bool   `json:"audio_only"`
}

// savedFile describes a download written to disk
type savedFile struct {
	Path string
	Size int64
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		// downloads stream for as long as the engine runs
		http: &http.Client{Timeout: 0},
	}
}

// Info resolves a video's title and thumbnail
func (c *apiClient) Info(url string) (*infoResponse, error) {
	resp, err := c.postJSON("/api/v1/info", map[string]string{"url": url})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var info infoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("invalid info response: %w", err)
	}
	return &info, nil
}

// Download fetches the media file and writes it into outDir under the
// name the server chose
func (c *apiClient) Download(url, format, title, outDir string) (*savedFile, error) {
	resp, err := c.postJSON("/api/v1/download", map[string]string{
		"url":    url,
		"format": format,
		"title":  title,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	name := attachmentFileName(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = "download." + format
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(outDir, name)

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	size, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(path)
		return nil, fmt.Errorf("download interrupted: %w", copyErr)
	}
	if closeErr != nil {
		return nil, closeErr
	}

	return &savedFile{Path: path, Size: size}, nil
}

// Formats lists the formats the server can deliver
func (c *apiClient) Formats() ([]formatEntry, error) {
	resp, err := c.http.Get(c.baseURL + "/api/v1/formats")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var result struct {
		Formats []formatEntry `json:"formats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("invalid formats response: %w", err)
	}
	return result.Formats, nil
}

// Ready reports the server's readiness body and whether the engine is usable
func (c *apiClient) Ready() (map[string]interface{}, bool, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(c.baseURL + "/ready")
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("invalid ready response: %w", err)
	}
	return body, resp.StatusCode == http.StatusOK, nil
}

func (c *apiClient) postJSON(path string, payload interface{}) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(data))
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil || e.Message == "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	if e.Error != "" {
		return fmt.Errorf("%s (%s)", e.Message, e.Error)
	}
	return fmt.Errorf("%s", e.Message)
}

// attachmentFileName extracts a safe base name from a Content-Disposition header
func attachmentFileName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
