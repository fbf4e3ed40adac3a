package llm

// Role identifies the author of a conversation turn.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is one piece of a conversation turn: text, inline binary data, or both.
type Part struct {
	Text     string `json:"text,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

// Content is a single turn in a conversation.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// NewTextContent builds a single-part text turn.
func NewTextContent(role, text string) Content {
	return Content{Role: role, Parts: []Part{{Text: text}}}
}

// SchemaType enumerates the field kinds a structured-output schema may declare.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
)

// Schema declares the shape the model's JSON response must conform to.
// It is a typed tree of object/array/scalar/enum fields with a required list;
// providers translate it into their native structured-output format.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Request is one generation call: ordered conversation history, an optional
// system instruction, an optional structured-output schema, and an optional
// web-search grounding flag. Schema and WebSearch are mutually exclusive on
// most backends; callers set at most one.
type Request struct {
	Contents          []Content
	SystemInstruction string
	Schema            *Schema
	WebSearch         bool
}

// Source is a web reference the backend grounded its answer on.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Response is the backend's reply. When a Schema was supplied, Text is the
// raw JSON the caller must parse; the backend may return non-conformant or
// unparsable text, which callers must treat as a recoverable error.
type Response struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}

// Config holds common configuration for generation backends.
type Config struct {
	APIKey          string
	Model           string
	MaxOutputTokens int32
	Temperature     float32
}
