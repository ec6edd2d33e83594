package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"JobScanner/internal/domain"
	"JobScanner/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier sends a short cycle summary to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.ReportSink = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Emit posts the summary of a finished cycle.
func (n *Notifier) Emit(ctx context.Context, report domain.CycleReport) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimSuffix(n.apiBase, "/"), n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", FormatReport(report))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// FormatReport renders the counts and failed sources as plain text.
func FormatReport(report domain.CycleReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cycle %s: %s in %s\n", report.ID, report.Status,
		report.EndedAt.Sub(report.StartedAt).Round(time.Second))
	fmt.Fprintf(&b, "new %d, updated %d, unchanged %d, rejected %d\n",
		report.Totals.Inserted, report.Totals.Updated, report.Totals.Unchanged, report.Rejected)

	for _, src := range report.FailedSources() {
		fmt.Fprintf(&b, "- %s: %s\n", src.Source, src.Reason)
	}
	return strings.TrimRight(b.String(), "\n")
}
