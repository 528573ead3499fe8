package llm

import (
	"encoding/base64"
	"encoding/json"
)

// textContent wraps a free-text reply as a JSON string so Response.Content
// is always valid JSON.
func textContent(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// replyContent returns the reply for req: the raw JSON object when a schema
// was requested, the quoted text otherwise.
func replyContent(req Request, text string) json.RawMessage {
	if req.Schema != nil {
		return json.RawMessage(text)
	}
	return textContent(text)
}

func (img Image) base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

func (img Image) dataURL() string {
	return "data:" + img.MIMEType + ";base64," + img.base64()
}
