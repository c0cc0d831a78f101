package operatorservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с OperatorService (тенанты, продукты, требования)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента OperatorService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetTenant получает оператора с его настройками бронирования
func (c *Client) GetTenant(ctx context.Context, tenantID int64) (*Tenant, error) {
	url := fmt.Sprintf("%s/internal/tenants/%d", c.baseURL, tenantID)

	var tenant Tenant
	if err := c.getJSON(ctx, url, &tenant, ErrTenantNotFound); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetProduct получает продукт тенанта вместе с требованиями к участникам
func (c *Client) GetProduct(ctx context.Context, tenantID, productID int64) (*Product, error) {
	url := fmt.Sprintf("%s/internal/tenants/%d/products/%d", c.baseURL, tenantID, productID)

	var product Product
	if err := c.getJSON(ctx, url, &product, ErrProductNotFound); err != nil {
		return nil, err
	}
	return &product, nil
}

// getJSON выполняет GET запрос и декодирует JSON ответ.
// notFoundErr возвращается при статусе 404.
func (c *Client) getJSON(ctx context.Context, url string, dst interface{}, notFoundErr error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return notFoundErr
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
