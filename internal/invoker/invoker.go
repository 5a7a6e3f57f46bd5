package invoker

import "context"

// Invoker ejecuta la función remota de forma síncrona: recibe el payload JSON
// serializado y devuelve la respuesta completa como bytes.
type Invoker interface {
	Invoke(ctx context.Context, payload []byte) ([]byte, error)
}
