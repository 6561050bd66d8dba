// Package browser captures public service pages with a headless Chrome.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/ports"
)

const (
	defaultTimeout = 30 * time.Second
	defaultSettle  = 2 * time.Second
	defaultWidth   = 1920
	defaultHeight  = 1080
	// viewsPerCapture is the number of shots one Capture takes.
	viewsPerCapture = 2
	userAgent       = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36`
)

var publicPages = map[string]string{
	"amazon-bedrock": "https://aws.amazon.com/bedrock",
	"aws-lambda":     "https://aws.amazon.com/lambda",
	"amazon-s3":      "https://aws.amazon.com/s3",
	"amazon-ec2":     "https://aws.amazon.com/ec2",
	"amazon-rds":     "https://aws.amazon.com/rds",
}

// ShotTimeout splits a per-announcement capture budget across the views one
// Capture takes, so the last view still fits inside the budget.
func ShotTimeout(capture time.Duration) time.Duration {
	if capture <= 0 {
		return 0
	}
	return capture / viewsPerCapture
}

// Options configure the headless browser.
type Options struct {
	// Timeout bounds a single screenshot, not the whole Capture.
	Timeout  time.Duration
	Settle   time.Duration
	Width    int
	Height   int
	ExecPath string
	Logger   *slog.Logger
}

type shootFunc func(ctx context.Context, url string) ([]byte, error)

// Capturer implements ports.Capturer. One browser is started lazily and shared;
// every capture runs in its own tab.
type Capturer struct {
	opts   Options
	logger *slog.Logger
	shoot  shootFunc
	now    func() time.Time

	mu            sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

var _ ports.Capturer = (*Capturer)(nil)

// NewCapturer returns a capturer; Chrome is not launched until the first capture.
func NewCapturer(opts Options) *Capturer {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Settle < 0 {
		opts.Settle = 0
	} else if opts.Settle == 0 {
		opts.Settle = defaultSettle
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Capturer{
		opts:   opts,
		logger: logger.With("component", "browser"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	c.shoot = c.screenshot
	return c
}

// Capture takes the main view and, best effort, the pricing view of the
// service's public page. Failing the main view is ErrCaptureFailed.
func (c *Capturer) Capture(ctx context.Context, ann domain.Announcement) ([]domain.VisualArtifact, error) {
	base := PublicURL(ann.ServiceName)

	main, err := c.shoot(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("%w: %s main view: %w", domain.ErrCaptureFailed, ann.ServiceName, err)
	}
	artifacts := []domain.VisualArtifact{c.artifact(ann, domain.LabelMainView, main)}
	if ctx.Err() != nil {
		return artifacts, nil
	}

	pricing, err := c.shoot(ctx, base+"/pricing")
	if err != nil {
		c.logger.Warn("pricing view capture failed", "service", ann.ServiceName, "error", err)
		return artifacts, nil
	}
	artifacts = append(artifacts, c.artifact(ann, domain.LabelPricingView, pricing))

	c.logger.Debug("captured views", "service", ann.ServiceName, "count", len(artifacts))
	return artifacts, nil
}

// Close shuts the shared browser down.
func (c *Capturer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browserCancel != nil {
		c.browserCancel()
		c.browserCancel = nil
	}
	if c.allocCancel != nil {
		c.allocCancel()
		c.allocCancel = nil
	}
	c.browserCtx = nil
}

func (c *Capturer) artifact(ann domain.Announcement, label string, image []byte) domain.VisualArtifact {
	return domain.VisualArtifact{
		AnnouncementID: ann.ID,
		ServiceName:    ann.ServiceName,
		Label:          label,
		ImageBytes:     image,
		CapturedAt:     c.now(),
	}
}

func (c *Capturer) browser() (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browserCtx != nil {
		return c.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(c.opts.Width, c.opts.Height),
		chromedp.UserAgent(userAgent),
	)
	if c.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	c.browserCtx = browserCtx
	c.browserCancel = browserCancel
	c.allocCancel = allocCancel
	c.logger.Info("browser started")
	return browserCtx, nil
}

func (c *Capturer) screenshot(ctx context.Context, url string) ([]byte, error) {
	browserCtx, err := c.browser()
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	tabCtx, cancel := context.WithTimeout(tabCtx, c.opts.Timeout)
	defer cancel()

	var buf []byte
	err = chromedp.Run(tabCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDeviceMetricsOverride(int64(c.opts.Width), int64(c.opts.Height), 1, false).Do(ctx)
		}),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(c.opts.Settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng).Do(ctx)
			return err
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("screenshot %s: %w", url, err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("screenshot %s: empty image", url)
	}
	return buf, nil
}

// PublicURL maps a service name to its public marketing page.
func PublicURL(serviceName string) string {
	slug := domain.Slug(serviceName, '-')
	if u, ok := publicPages[slug]; ok {
		return u
	}
	return "https://aws.amazon.com/" + strings.TrimPrefix(slug, "/")
}

// Disabled captures nothing.
type Disabled struct{}

var _ ports.Capturer = Disabled{}

// Capture returns no artifacts.
func (Disabled) Capture(context.Context, domain.Announcement) ([]domain.VisualArtifact, error) {
	return nil, nil
}
