package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout таймаут одного запроса к health endpoint
const DefaultTimeout = 10 * time.Second

// maxBodySize ограничение на размер ответа health endpoint
const maxBodySize = 1 << 20

// Checker выполняет одну проверку состояния
type Checker interface {
	Check(ctx context.Context) Result
}

// errNullBody ответ "null": поля services прочитать нельзя
var errNullBody = errors.New("response body is null")

// Client клиент health endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient создаёт клиента для полного URL health endpoint
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint возвращает URL проверяемого endpoint
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Check выполняет GET запрос и разбирает ответ.
// Код ответа используется только как признак успеха: тело разбирается и для не-2xx.
func (c *Client) Check(ctx context.Context) Result {
	report, err := c.doGet(ctx)
	if err != nil {
		return Failed(err)
	}
	return Succeeded(report)
}

func (c *Client) doGet(ctx context.Context) (*HealthReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request %s: %w", c.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response from %s failed: %w", c.endpoint, err)
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%s: status %d, unmarshal response failed: %w", c.endpoint, resp.StatusCode, err)
	}
	if parsed == nil {
		return nil, fmt.Errorf("%s: status %d: %w", c.endpoint, resp.StatusCode, errNullBody)
	}

	return &HealthReport{
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Services:   stringServices(servicesOf(parsed)),
	}, nil
}

// servicesOf возвращает объект services из ответа ожидаемой формы
// {"services": {"database": "...", "email": "..."}}; любая другая форма
// считается отсутствием services
func servicesOf(parsed any) map[string]any {
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil
	}
	services, _ := obj["services"].(map[string]any)
	return services
}

// stringServices оставляет только строковые значения services.*,
// остальные считаются отсутствующими
func stringServices(raw map[string]any) map[string]string {
	services := make(map[string]string, len(raw))
	for name, v := range raw {
		if s, ok := v.(string); ok {
			services[name] = s
		}
	}
	return services
}
