package i18n

// EsMessages Spanish message catalog
var EsMessages = map[string]string{
	// UI - Panel titles
	"panel.chat":          "Chat",
	"panel.conversations": "Conversaciones",
	"panel.attachments":   "Adjuntos",

	// UI - Status bar
	"status.ready":       "Listo",
	"status.sending":     "Esperando respuesta... (Enter para cancelar)",
	"status.loading":     "Cargando conversación...",
	"status.cancelled":   "Solicitud cancelada",
	"status.new":         "Nueva conversación",
	"status.vision_on":   "Visión activada",
	"status.vision_off":  "Visión desactivada",
	"status.tokens":      "~%d tokens",
	"status.attachments": "%d adjunto(s)",

	// UI - Input
	"input.placeholder": "Escribe un mensaje... (Enter para enviar)",
	"input.attach":      "Ruta de la imagen a adjuntar:",

	// UI - Keybindings
	"keys.send":   "enter enviar/cancelar",
	"keys.new":    "ctrl+n nueva",
	"keys.delete": "ctrl+d eliminar",
	"keys.vision": "ctrl+v visión",
	"keys.attach": "ctrl+o adjuntar",
	"keys.quit":   "ctrl+c salir",

	// Conversation list
	"conv.empty":    "Aún no hay conversaciones",
	"conv.loading":  "Cargando conversaciones...",
	"conv.untitled": "(sin título)",

	// REPL commands
	"cmd.help":        "Mostrar comandos disponibles",
	"cmd.new":         "Iniciar una nueva conversación",
	"cmd.list":        "Listar conversaciones",
	"cmd.open":        "Abrir una conversación por número o id",
	"cmd.delete":      "Eliminar una conversación",
	"cmd.vision":      "Alternar modo visión (on/off)",
	"cmd.attach":      "Adjuntar un archivo de imagen",
	"cmd.attachments": "Listar adjuntos pendientes",
	"cmd.remove":      "Quitar un adjunto pendiente por número",
	"cmd.quit":        "Salir",

	// Auth
	"auth.email":            "Correo electrónico:",
	"auth.password":         "Contraseña:",
	"auth.username":         "Nombre de usuario:",
	"auth.confirm_password": "Confirma la contraseña:",
	"auth.phrase":           "Frase de seguridad:",
	"auth.logged_in":        "Sesión iniciada como %s",
	"auth.logged_out":       "Sesión cerrada",
	"auth.registered":       "Cuenta creada para %s",
	"auth.required":         "Sesión caducada, ejecuta: moia login",

	// Errors
	"error.send":   "El mensaje falló: %s",
	"error.load":   "No se pudo cargar la conversación: %s",
	"error.delete": "No se pudo eliminar la conversación: %s",
	"error.attach": "No se pudo adjuntar el archivo: %s",
}
