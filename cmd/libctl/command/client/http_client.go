package client

// http_client.go talks to the library API on behalf of the client commands.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"schoollibrary/internal/microservices/http-api/dto"
	"schoollibrary/internal/microservices/http-api/models"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// APIError carries the status and the {"error": ...} message of a failed call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) ListBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := c.do(ctx, http.MethodGet, "/books", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *HTTPClient) Borrow(ctx context.Context, userID, bookID string, due time.Time) (*dto.TransactionResponse, error) {
	body := map[string]any{"userId": userID, "bookId": bookID, "dueDate": due.UTC()}
	var txn dto.TransactionResponse
	if err := c.do(ctx, http.MethodPost, "/transactions", body, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (c *HTTPClient) Return(ctx context.Context, transactionID string) (*dto.TransactionResponse, error) {
	var txn dto.TransactionResponse
	if err := c.do(ctx, http.MethodPost, "/transactions/"+transactionID+"/return", nil, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (c *HTTPClient) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	var stats dto.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e dto.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
