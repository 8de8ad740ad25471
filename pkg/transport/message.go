package transport

import "maps"

// Message is the envelope moved by a transport.
//
// Headers carry transport metadata and may be rewritten by the transport
// (for example on requeue). Properties carry application metadata and are
// never modified by the transport.
type Message interface {
	Body() string
	SetBody(body string)

	Headers() Values
	SetHeaders(headers Values)
	Header(name string) (any, bool)
	SetHeader(name string, value any)

	Properties() Values
	SetProperties(properties Values)
	Property(name string) (any, bool)
	SetProperty(name string, value any)

	Priority() int
	SetPriority(priority int)

	IsRedelivered() bool
	SetRedelivered(redelivered bool)
}

// BasicMessage is a transport-neutral Message implementation. Transports
// embed it in their own message kinds.
type BasicMessage struct {
	body        string
	headers     Values
	properties  Values
	priority    int
	redelivered bool
}

func NewMessage(body string, properties, headers Values) *BasicMessage {
	return &BasicMessage{
		body:       body,
		headers:    maps.Clone(headers),
		properties: maps.Clone(properties),
	}
}

func (m *BasicMessage) Body() string {
	return m.body
}

func (m *BasicMessage) SetBody(body string) {
	m.body = body
}

// Headers returns the live header map; it is never nil.
func (m *BasicMessage) Headers() Values {
	if m.headers == nil {
		m.headers = Values{}
	}
	return m.headers
}

func (m *BasicMessage) SetHeaders(headers Values) {
	m.headers = maps.Clone(headers)
}

func (m *BasicMessage) Header(name string) (any, bool) {
	v, ok := m.headers[name]
	return v, ok
}

func (m *BasicMessage) SetHeader(name string, value any) {
	m.Headers()[name] = value
}

// Properties returns the live property map; it is never nil.
func (m *BasicMessage) Properties() Values {
	if m.properties == nil {
		m.properties = Values{}
	}
	return m.properties
}

func (m *BasicMessage) SetProperties(properties Values) {
	m.properties = maps.Clone(properties)
}

func (m *BasicMessage) Property(name string) (any, bool) {
	v, ok := m.properties[name]
	return v, ok
}

func (m *BasicMessage) SetProperty(name string, value any) {
	m.Properties()[name] = value
}

func (m *BasicMessage) Priority() int {
	return m.priority
}

func (m *BasicMessage) SetPriority(priority int) {
	m.priority = priority
}

func (m *BasicMessage) IsRedelivered() bool {
	return m.redelivered
}

func (m *BasicMessage) SetRedelivered(redelivered bool) {
	m.redelivered = redelivered
}
