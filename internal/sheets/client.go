package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"daily-report-go/internal/config"
	"daily-report-go/internal/logger"
	"daily-report-go/internal/types"
)

var (
	ErrDisabled = errors.New("sheets webhook not configured")
	ErrRejected = errors.New("sheets webhook rejected report")
)

// Payload is the body the Apps Script web app expects.
type Payload struct {
	Secret       string `json:"secret"`
	EmployeeName string `json:"employee_name"`
	ReportDate   string `json:"report_date"`
	CallsCount   int    `json:"calls_count"`
	KPPlus       int    `json:"kp_plus"`
	KP           int    `json:"kp"`
	Rejections   int    `json:"rejections"`
	Inadequate   int    `json:"inadequate"`
}

type webhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Client mirrors reports into the team spreadsheet through a webhook.
type Client struct {
	url        string
	secret     string
	httpClient *http.Client
	maxElapsed time.Duration
	initial    time.Duration
	log        *logrus.Entry
}

func New(cfg config.SheetsConfig, log *logrus.Entry) *Client {
	if log == nil {
		log = logger.New().Entry
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:        cfg.WebhookURL,
		secret:     cfg.SecretKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxElapsed: timeout,
		initial:    500 * time.Millisecond,
		log:        log.WithField("component", "sheets"),
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.url != ""
}

// Forward posts r to the webhook, retrying transport failures and 5xx
// answers until the configured timeout runs out.
func (c *Client) Forward(ctx context.Context, r types.Report) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	body, err := json.Marshal(Payload{
		Secret:       c.secret,
		EmployeeName: r.EmployeeName,
		ReportDate:   r.ReportDate,
		CallsCount:   r.CallsCount,
		KPPlus:       r.KPPlus,
		KP:           r.KP,
		Rejections:   r.Rejections,
		Inadequate:   r.Inadequate,
	})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initial
	bo.MaxElapsedTime = c.maxElapsed

	var resp webhookResponse
	op := func() error {
		return c.post(ctx, body, &resp)
	}
	notify := func(err error, wait time.Duration) {
		c.log.WithError(err).WithField("retry_in", wait.String()).Warn("sheets webhook failed, retrying")
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify); err != nil {
		return err
	}
	if resp.Status != "success" {
		return fmt.Errorf("%w: %s", ErrRejected, resp.Message)
	}
	c.log.WithFields(logrus.Fields{
		"employee_name": r.EmployeeName,
		"report_date":   r.ReportDate,
	}).Info("report forwarded to sheets")
	return nil
}

func (c *Client) post(ctx context.Context, body []byte, target *webhookResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("server error: %d %s", resp.StatusCode, string(data))
	case resp.StatusCode >= 400:
		return backoff.Permanent(fmt.Errorf("%w: status %d %s", ErrRejected, resp.StatusCode, string(data)))
	}
	if err := json.Unmarshal(data, target); err != nil {
		return backoff.Permanent(fmt.Errorf("json decode error: %v body=%s", err, string(data)))
	}
	return nil
}
