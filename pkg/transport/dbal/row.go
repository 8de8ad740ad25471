package dbal

import (
	"encoding/json"

	"github.com/iota-uz/iota-mq/pkg/transport"
)

// row mirrors one table record. The json form is used only in diagnostics.
type row struct {
	ID          int64  `db:"id" json:"-"`
	Body        string `db:"body" json:"body"`
	Headers     string `db:"headers" json:"headers"`
	Properties  string `db:"properties" json:"properties"`
	Priority    int    `db:"priority" json:"priority"`
	Queue       string `db:"queue" json:"queue"`
	Redelivered bool   `db:"redelivered" json:"redelivered"`
}

func newRow(queue string, m *Message, redelivered bool) (row, error) {
	headers, err := transport.EncodeValues(m.Headers())
	if err != nil {
		return row{}, err
	}
	properties, err := transport.EncodeValues(m.Properties())
	if err != nil {
		return row{}, err
	}
	return row{
		Body:        m.Body(),
		Headers:     headers,
		Properties:  properties,
		Priority:    m.Priority(),
		Queue:       queue,
		Redelivered: redelivered,
	}, nil
}

func (r row) args() []any {
	return []any{r.Queue, r.Priority, r.Body, r.Headers, r.Properties, r.Redelivered}
}

func (r row) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return "{}"
	}
	return string(b)
}
