package moysklad

import (
	"errors"
	"fmt"
)

// Errores definitivos del adaptador: cortan la operación sin reintentos.
var (
	// ErrNoCredentials faltan MS_LOGIN/MS_PASSWORD; fatal para cualquier
	// intento de sincronización, no para el arranque del proceso.
	ErrNoCredentials = errors.New("moysklad: credenciales MS_LOGIN/MS_PASSWORD no configuradas")

	// ErrStoreNotFound el almacén configurado no existe o no está configurado.
	ErrStoreNotFound = errors.New("moysklad: almacén no encontrado")

	// errAuthExhausted se agotó el cupo de refrescos de token tras 401.
	errAuthExhausted = errors.New("moysklad: autorización rechazada tras agotar refrescos de token")
)

// apiError estado HTTP definitivo de la API. Solo 401 se considera
// reintentable (el emisor de tokens puede rechazar transitoriamente);
// cualquier otro estado es fatal para la operación en curso.
type apiError struct {
	Op     string
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("moysklad: %s: estado %d: %s", e.Op, e.Status, e.Body)
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
