package service

import "coffeebot/internal/domain"

const DefaultContextWindow = 3

// BuildContextWindow toma el contenido de los últimos `size` turnos de usuario
// previos (en orden cronológico) y agrega el prompt nuevo al final.
func BuildContextWindow(prior []domain.ChatTurn, prompt string, size int) []string {
	if size < 0 {
		size = 0
	}
	var users []string
	for _, t := range prior {
		if t.Role == domain.RoleUser {
			users = append(users, t.Content)
		}
	}
	if len(users) > size {
		users = users[len(users)-size:]
	}

	window := make([]string, 0, len(users)+1)
	window = append(window, users...)
	return append(window, prompt)
}
