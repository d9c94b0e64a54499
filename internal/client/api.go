package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"octavia/internal/models"
	"octavia/internal/session"
)

// APIError - ответ с кодом не из диапазона 2xx
type APIError struct {
	Status  int
	Message string
	// Fields заполняется, если шлюз отклонил форму при валидации
	Fields []models.FieldError
}

func (e *APIError) Error() string {
	return e.Message
}

// APIClient обращается к бэкенду напрямую по публичному адресу
// (NEXT_PUBLIC_BACKEND_URL), передавая cookie сессии
type APIClient struct {
	BaseURL    string
	Session    string
	HTTPClient *http.Client
}

// NewAPIClient создает клиент для публичного адреса бэкенда
func NewAPIClient(baseURL, sessionToken string) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Session:    sessionToken,
		HTTPClient: &http.Client{},
	}
}

// Do выполняет запрос к endpoint и декодирует JSON-ответ в out (если out не nil).
// При ошибке возвращает *APIError с сообщением бэкенда или текстом статуса.
func (c *APIClient) Do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Session != "" {
		req.Header.Set("Cookie", session.Header(c.Session))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		msg := errBody.Message
		if msg == "" {
			msg = statusText(resp)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusText возвращает текст статуса без кода, как его видит браузер
func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
