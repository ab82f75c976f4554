package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/use-agent/pagegrab/models"
)

// navigate loads target on page under timeout and fails unless the main
// document answered with a 2xx status. A status of 0 means the browser could
// not report one (cache hits, some redirects) and is accepted.
func navigate(ctx context.Context, page Page, target string, wait models.WaitStrategy, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := page.Navigate(navCtx, target, wait); err != nil {
		return categorizeError(err, fmt.Sprintf("navigation did not reach %s within %s", waitLabel(wait), timeout))
	}

	status, err := page.ResponseStatus(ctx)
	if err != nil {
		slog.Debug("response status unavailable, assuming success", "url", target, "error", err)
		return nil
	}
	if status != 0 && (status < 200 || status > 299) {
		return models.NewCrawlError(
			models.ErrCodeNavigation,
			fmt.Sprintf("Failed to load page: %d %s", status, http.StatusText(status)),
			nil,
		)
	}
	return nil
}

func waitLabel(wait models.WaitStrategy) string {
	if wait == models.WaitNetworkIdle {
		return "network idle"
	}
	return "DOM ready"
}

// categorizeError maps a navigation failure onto a CrawlError.
func categorizeError(err error, msg string) *models.CrawlError {
	switch {
	case errors.Is(err, context.Canceled):
		return models.NewCrawlError(models.ErrCodeNavigation, "request canceled", err)
	default:
		return models.NewCrawlError(models.ErrCodeNavigation, msg, err)
	}
}
