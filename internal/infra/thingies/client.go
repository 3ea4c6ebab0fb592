package thingies

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"smartthingies/internal/domain"
	"smartthingies/internal/infra"
)

// Client talks to the SmartThingies device service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      infra.RetryConfig
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retry:      infra.DefaultRetryConfig(),
		validate:   validator.New(),
		logger:     logger,
	}
}

// SetMaxAttempts enables retries of idempotent reads.
func (c *Client) SetMaxAttempts(n int) {
	c.retry.MaxAttempts = n
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.User, error) {
	req := loginRequest{Email: email, Password: password}
	if err := c.validate.Struct(req); err != nil {
		return nil, &domain.ValidationError{Field: "credentials", Reason: "email and password are required"}
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/login", req)
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	var resp loginResponse
	if err := decodeObject(c.validate, "/login", body, &resp); err != nil {
		return nil, err
	}

	return resp.User.toDomain(), nil
}

func (c *Client) Register(ctx context.Context, fullName, email, password string) (*domain.User, error) {
	req := registerRequest{FullName: fullName, Email: email, Password: password}
	if err := c.validate.Struct(req); err != nil {
		return nil, &domain.ValidationError{Field: "registration", Reason: "name, email and password are required"}
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/register/", req)
	if err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}

	var resp wireUser
	if err := decodeObject(c.validate, "/register/", body, &resp); err != nil {
		return nil, err
	}

	return resp.toDomain(), nil
}

func (c *Client) CreateHome(ctx context.Context, userID int, name string) (int, error) {
	req := createHomeRequest{UserID: userID, HomeName: name}
	if err := c.validate.Struct(req); err != nil {
		return 0, &domain.ValidationError{Field: "home_name", Reason: "a home name is required"}
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/create-home/", req)
	if err != nil {
		return 0, fmt.Errorf("creating home: %w", err)
	}

	var resp createHomeResponse
	if err := decodeObject(c.validate, "/create-home/", body, &resp); err != nil {
		return 0, err
	}

	return resp.ID, nil
}

func (c *Client) ListDevices(ctx context.Context) ([]domain.Device, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/get-devices", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching devices: %w", err)
	}

	return decodeDevices(c.validate, "/get-devices", body)
}

func (c *Client) SearchDevices(ctx context.Context, keyword string) ([]domain.Device, error) {
	path := "/get-devices-by-keyword?keyword=" + url.QueryEscape(keyword)
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("searching devices: %w", err)
	}

	return decodeDevices(c.validate, "/get-devices-by-keyword", body)
}

func (c *Client) CreateDevice(ctx context.Context, d domain.NewDevice) error {
	if err := c.validate.Struct(d); err != nil {
		return &domain.ValidationError{Field: "device", Reason: err.Error()}
	}

	if _, err := c.doRequest(ctx, http.MethodPost, "/create-device", d); err != nil {
		return fmt.Errorf("creating device: %w", err)
	}

	return nil
}

func (c *Client) UpdateDevice(ctx context.Context, id int, u domain.DeviceUpdate) error {
	if u.Empty() {
		return &domain.ValidationError{Field: "device", Reason: "nothing to update"}
	}
	if err := c.validate.Struct(u); err != nil {
		return &domain.ValidationError{Field: "device", Reason: err.Error()}
	}

	path := fmt.Sprintf("/update-device/%d", id)
	if _, err := c.doRequest(ctx, http.MethodPut, path, u); err != nil {
		return fmt.Errorf("updating device %d: %w", id, err)
	}

	return nil
}

func (c *Client) DeleteDevice(ctx context.Context, id int) error {
	path := fmt.Sprintf("/delete-device/%d", id)
	if _, err := c.doRequest(ctx, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("deleting device %d: %w", id, err)
	}

	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
	}

	requestID := uuid.NewString()
	var respBody []byte

	retryErr := infra.WithRetry(ctx, c.retry.ForMethod(method), func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		c.logger.Debug("device service call",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"request_id", requestID,
		)

		if resp.StatusCode >= 400 {
			apiErr := &domain.APIError{StatusCode: resp.StatusCode, Detail: errorDetail(respBody)}
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return apiErr
			}
			return infra.Permanent(apiErr)
		}

		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return respBody, nil
}
