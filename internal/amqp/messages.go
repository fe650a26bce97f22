package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"payslip/internal/export"
)

// ExportRequestVersion is bumped whenever ExportRequest changes shape.
const ExportRequestVersion = 1

// ExportRequest asks the export worker to render a slip. It carries the
// whole formatted snapshot; drafts live only in the web process.
type ExportRequest struct {
	Version   int             `json:"version"`
	DraftID   string          `json:"draft_id"`
	Document  export.Document `json:"document"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewExportRequest(draftID string, doc export.Document) *ExportRequest {
	return &ExportRequest{
		Version:   ExportRequestVersion,
		DraftID:   draftID,
		Document:  doc,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportRequestFromJSON decodes a message and rejects unknown versions.
func ExportRequestFromJSON(data []byte) (*ExportRequest, error) {
	var msg ExportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Version != ExportRequestVersion {
		return nil, fmt.Errorf("unsupported export request version %d", msg.Version)
	}
	return &msg, nil
}
