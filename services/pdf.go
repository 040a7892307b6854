package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrRendererUnavailable is returned when the PDF renderer cannot be reached
var ErrRendererUnavailable = errors.New("pdf renderer is unavailable")

// PDFConverter turns an HTML document into a PDF
type PDFConverter interface {
	Convert(ctx context.Context, html []byte) ([]byte, error)
}

var pdfConverterInstance PDFConverter

// InitPDFConverter configures a Gotenberg converter for baseURL. An empty
// baseURL leaves PDF export disabled.
func InitPDFConverter(baseURL string) PDFConverter {
	if baseURL == "" {
		pdfConverterInstance = nil
		return nil
	}
	pdfConverterInstance = NewGotenbergConverter(baseURL)
	return pdfConverterInstance
}

// GetPDFConverter returns the configured converter, or nil
func GetPDFConverter() PDFConverter {
	return pdfConverterInstance
}

// SetPDFConverter sets the converter (primarily for testing)
func SetPDFConverter(c PDFConverter) {
	pdfConverterInstance = c
}

// GotenbergConverter calls a Gotenberg compatible HTML to PDF endpoint
type GotenbergConverter struct {
	baseURL    string
	httpClient *http.Client
}

// NewGotenbergConverter creates a converter posting to baseURL
func NewGotenbergConverter(baseURL string) *GotenbergConverter {
	return &GotenbergConverter{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Convert uploads html as index.html and returns the rendered PDF
func (g *GotenbergConverter) Convert(ctx context.Context, html []byte) ([]byte, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(html); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	url := g.baseURL + "/forms/chromium/convert/html"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return nil, fmt.Errorf("%w: %w", ErrRendererUnavailable, err)
		}
		return nil, fmt.Errorf("failed to call pdf renderer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("pdf renderer returned status %d: %s", resp.StatusCode, string(msg))
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}
	return pdf, nil
}

// MockPDFConverter returns a fixed document and records its inputs
type MockPDFConverter struct {
	Output []byte
	Err    error

	mu    sync.Mutex
	calls [][]byte
}

// NewMockPDFConverter creates a mock returning a minimal PDF
func NewMockPDFConverter() *MockPDFConverter {
	return &MockPDFConverter{Output: []byte("%PDF-1.4\n%mock\n")}
}

func (m *MockPDFConverter) Convert(_ context.Context, html []byte) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, html)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Output, nil
}

// Calls returns the HTML documents passed to Convert
func (m *MockPDFConverter) Calls() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.calls...)
}
