package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	geminiModel          = "gemini-2.5-flash"

	// Inlined remote images are capped so a huge URL can't balloon the request.
	maxInlineImageBytes = 10 << 20
)

// ImagePayload is an image supplied with a chat message, already read into memory.
type ImagePayload struct {
	Data     []byte
	MIMEType string
}

// GeminiClient calls the Gemini generateContent API. It is constructed once at
// startup and shared across requests; its configuration is read-only.
type GeminiClient struct {
	apiKey            string
	systemInstruction string
	baseURL           string
	httpClient        *http.Client
	fetchClient       *http.Client
}

func NewGeminiClient(apiKey, systemInstruction string) *GeminiClient {
	return &GeminiClient{
		apiKey:            apiKey,
		systemInstruction: systemInstruction,
		baseURL:           defaultGeminiBaseURL,
		httpClient:        http.DefaultClient,
		// Image fetch failures fall back silently, so keep them short.
		fetchClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Generate builds a provider request from whichever inputs are present and
// returns the generated text. An empty or malformed provider response is an
// upstream error, never silently tolerated.
func (c *GeminiClient) Generate(ctx context.Context, message string, image *ImagePayload, imageURL string) (string, error) {
	if message == "" && image == nil && imageURL == "" {
		return "", ErrEmptyPrompt
	}

	var parts []geminiPart

	if message != "" {
		text := message
		if c.systemInstruction != "" {
			text = c.systemInstruction + "\n\n" + message
		}
		parts = append(parts, geminiPart{Text: text})
	}

	if image != nil {
		mimeType := image.MIMEType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		parts = append(parts, geminiPart{InlineData: &geminiBlob{
			MIMEType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(image.Data),
		}})
	}

	if imageURL != "" {
		parts = append(parts, c.remoteImagePart(ctx, imageURL))
	}

	payload := geminiRequest{Contents: []geminiContent{{Parts: parts}}}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal Gemini payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, geminiModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("Gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("Gemini returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("unexpected Gemini response format: %w", err)
	}

	text := out.text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyAIResponse
	}
	return text, nil
}

// remoteImagePart fetches the URL server-side and inlines the bytes. When the
// fetch fails the part degrades to a file reference; that is not a hard error.
func (c *GeminiClient) remoteImagePart(ctx context.Context, imageURL string) geminiPart {
	mimeType := imageMediaType(imageURL)

	referencePart := geminiPart{FileData: &geminiFileData{
		MIMEType: mimeType,
		FileURI:  imageURL,
	}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return referencePart
	}
	resp, err := c.fetchClient.Do(req)
	if err != nil {
		return referencePart
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return referencePart
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxInlineImageBytes))
	if err != nil || len(data) == 0 {
		return referencePart
	}

	return geminiPart{InlineData: &geminiBlob{
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}

// imageMediaType infers a media type from the URL's extension, defaulting to jpeg.
func imageMediaType(imageURL string) string {
	ext := ""
	if u, err := url.Parse(imageURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// Gemini generateContent API payload types.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlob     `json:"inline_data,omitempty"`
	FileData   *geminiFileData `json:"file_data,omitempty"`
}

type geminiBlob struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiFileData struct {
	MIMEType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// text concatenates the text parts of the first candidate.
func (r *geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
