package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/bkinvest/botboard/internal/domain"
)

// SummaryArchiver writes each refresh cycle's aggregate summary to blob
// storage under a date-partitioned key, giving the dashboard a cheap
// history of every published report.
type SummaryArchiver struct {
	writer domain.BlobWriter
	prefix string
}

// NewSummaryArchiver creates an archiver writing under prefix (e.g.
// "summaries").
func NewSummaryArchiver(writer domain.BlobWriter, prefix string) *SummaryArchiver {
	if prefix == "" {
		prefix = "summaries"
	}
	return &SummaryArchiver{writer: writer, prefix: prefix}
}

// Archive uploads the summary as JSON. The key embeds the summary's own
// timestamp: <prefix>/2006/01/02/summary-150405.json.
func (a *SummaryArchiver) Archive(ctx context.Context, summary domain.BotSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("s3blob: marshal summary: %w", err)
	}

	ts := summary.Timestamp.UTC()
	key := path.Join(
		a.prefix,
		ts.Format("2006/01/02"),
		"summary-"+ts.Format("150405")+".json",
	)

	if err := a.writer.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive summary: %w", err)
	}
	return nil
}
