package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const statusOK = 200

var (
	ErrEmptyEnvelope = errors.New("empty response envelope")
	ErrMissingBody   = errors.New("response body missing")
)

// RequestPayload es el JSON que recibe la función remota.
// Solo viajan strings: los roles no se envían.
type RequestPayload struct {
	Input RequestInput `json:"input"`
}

type RequestInput struct {
	Messages []string `json:"messages"`
}

func NewRequestPayload(messages []string) RequestPayload {
	if messages == nil {
		messages = []string{}
	}
	return RequestPayload{Input: RequestInput{Messages: messages}}
}

// Envelope es el wrapper {statusCode, body} devuelto por la función.
// El body se conserva crudo y solo se decodifica cuando el status es 200.
type Envelope struct {
	StatusCode json.RawMessage `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

// Body es la forma normalizada del body, venga como string u objeto.
// content y agent se guardan crudos: la función a veces devuelve números o
// booleanos y se muestran tal cual.
type Body struct {
	Content json.RawMessage `json:"content"`
	Memory  *Memory         `json:"memory"`
}

type Memory struct {
	Agent json.RawMessage `json:"agent"`
}

// ParseEnvelope decodifica la respuesta cruda de la invocación.
func ParseEnvelope(raw []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || isJSONNull(trimmed) {
		return Envelope{}, ErrEmptyEnvelope
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// OK reporta statusCode == 200. Un status ausente o no numérico no es éxito.
func (e Envelope) OK() bool {
	if len(e.StatusCode) == 0 {
		return false
	}
	var code float64
	if err := json.Unmarshal(e.StatusCode, &code); err != nil {
		return false
	}
	return code == statusOK
}

// DecodeBody normaliza el body: si llega como texto (JSON doblemente
// codificado) se parsea una vez más antes de extraer los campos.
func DecodeBody(raw json.RawMessage) (Body, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || isJSONNull(data) {
		return Body{}, ErrMissingBody
	}

	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return Body{}, fmt.Errorf("decode body string: %w", err)
		}
		data = bytes.TrimSpace([]byte(text))
		if len(data) == 0 || isJSONNull(data) {
			return Body{}, ErrMissingBody
		}
	}

	var body Body
	if err := json.Unmarshal(data, &body); err != nil {
		return Body{}, fmt.Errorf("decode body: %w", err)
	}
	return body, nil
}

// Turn arma el turno del asistente aplicando los defaults de content y agent.
func (b Body) Turn() ChatTurn {
	content, ok := fieldText(b.Content)
	if !ok {
		content = NoReplyContent
	}
	agent := AgentUnknown
	if b.Memory != nil {
		if text, ok := fieldText(b.Memory.Agent); ok {
			agent = text
		}
	}
	return AssistantTurn(content, agent)
}

// fieldText pasa un campo del body a texto. Los strings se desescapan, el resto
// se muestra como su JSON compacto. Ausente o null devuelve false.
func fieldText(raw json.RawMessage) (string, bool) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || isJSONNull(data) {
		return "", false
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err == nil {
			return text, true
		}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return string(data), true
	}
	return compact.String(), true
}

// ReplyFromEnvelope traduce un envelope ya parseado al turno final.
// Solo devuelve error si el body de una respuesta 200 no se puede leer.
func ReplyFromEnvelope(env Envelope) (ChatTurn, error) {
	if !env.OK() {
		return FailureTurn(), nil
	}
	body, err := DecodeBody(env.Body)
	if err != nil {
		return ChatTurn{}, err
	}
	return body.Turn(), nil
}

func isJSONNull(b []byte) bool {
	return bytes.Equal(b, []byte("null"))
}
