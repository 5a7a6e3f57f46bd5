package domain

import "errors"

// Role identifica quién produjo un turno del chat.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Textos fijos que ve el usuario cuando la respuesta remota no es utilizable.
const (
	NoReplyContent = "⚠️ No reply received."
	FailureContent = "⚠️ Something went wrong."
	ErrorPrefix    = "⚠️ Error: "

	AgentUnknown = "Unknown"
	AgentNone    = "none"
)

var ErrInvalidRole = errors.New("invalid chat role")

// Valid indica si el rol pertenece a la enumeración soportada.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ChatTurn es una unidad de mensaje dentro de la transcripción.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Agent   string `json:"agent,omitempty"`
}

func UserTurn(content string) ChatTurn {
	return ChatTurn{Role: RoleUser, Content: content}
}

func AssistantTurn(content, agent string) ChatTurn {
	return ChatTurn{Role: RoleAssistant, Content: content, Agent: agent}
}

// FailureTurn se usa cuando el envelope llega con un statusCode distinto de 200.
func FailureTurn() ChatTurn {
	return AssistantTurn(FailureContent, AgentNone)
}

// ErrorTurn convierte la descripción de un fallo en una burbuja visible.
func ErrorTurn(description string) ChatTurn {
	return AssistantTurn(ErrorPrefix+description, AgentNone)
}

// IsError reporta si el turno es un placeholder de error (agent "none").
func (t ChatTurn) IsError() bool {
	return t.Role == RoleAssistant && t.Agent == AgentNone
}
