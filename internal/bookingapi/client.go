package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// APIError is a non-2xx answer from the booking API.
type APIError struct {
	StatusCode int
	Detail     string
	// Explained is set when the body carried a detail or message.
	Explained bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("booking api: status %d: %s", e.StatusCode, e.Detail)
}

// Client talks to the external booking API that owns flights, seats,
// reservations and payments.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Inf, 0),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SearchFlights(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Flight, error) {
	var out []flightDTO
	if err := c.do(ctx, http.MethodPost, "/flights/search", criteria, &out); err != nil {
		return nil, err
	}
	flights := make([]domain.Flight, 0, len(out))
	for _, f := range out {
		flights = append(flights, f.toDomain())
	}
	return flights, nil
}

func (c *Client) ListSeats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	var out []seatDTO
	path := "/flights/" + strconv.FormatInt(flightID, 10) + "/seats"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	seats := make([]domain.Seat, 0, len(out))
	for _, s := range out {
		seats = append(seats, s.toDomain())
	}
	return seats, nil
}

func (c *Client) CreateReservation(ctx context.Context, req ReservationRequest) (*Reservation, error) {
	var out Reservation
	if err := c.do(ctx, http.MethodPost, "/bookings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Pay(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if req.PaymentDetails == nil {
		req.PaymentDetails = map[string]string{}
	}
	var out PaymentResult
	if err := c.do(ctx, http.MethodPost, "/payments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QRCodeURL is where the server renders the ticket QR code of a booking.
func (c *Client) QRCodeURL(bookingID int64) string {
	return c.baseURL + "/bookings/" + strconv.FormatInt(bookingID, 10) + "/qrcode"
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s %s: rate limit: %w", method, path, err)
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("booking api request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	c.logger.Debug("booking api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, explained := errorDetail(resp, raw)
		return &APIError{StatusCode: resp.StatusCode, Detail: detail, Explained: explained}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", domain.ErrProtocolViolation, method, path, err)
	}
	return nil
}

func errorDetail(resp *http.Response, raw []byte) (string, bool) {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if len(body.Detail) > 0 {
			var s string
			if json.Unmarshal(body.Detail, &s) == nil {
				return s, true
			}
			return string(body.Detail), true
		}
		if body.Message != "" {
			return body.Message, true
		}
	}
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)), false
}

// IsDefinitive reports whether err is a definitive rejection from the server:
// any 4xx, or a 500 the server explained. Gateway errors, bare 5xx, transport
// and decoding failures leave the outcome unknown.
func IsDefinitive(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch {
	case apiErr.StatusCode < http.StatusInternalServerError:
		return true
	case apiErr.StatusCode == http.StatusInternalServerError:
		return apiErr.Explained
	default:
		return false
	}
}
