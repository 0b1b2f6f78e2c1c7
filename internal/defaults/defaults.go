package defaults

// FormattingPrompt is the system instruction prepended to every chat request.
// The backend streams the reply back as Markdown; both surfaces render it
// with glamour, so the instruction pins the output format and the language
// the assistant answers in.
const FormattingPrompt = `
Responde en Markdown bien estructurado:
- Usa títulos  con (#) decendentes
- Usa listas
- Usa bloques de código cuando sea necesario
- No expliques el Markdown, solo úsalo
- Usa tablas cuando sea necesario
- Usa citas cuando sea necesario
- No uses enlaces
- Responde siempre en español
`

// Disclaimer shown under the input area.
const Disclaimer = "MoIA puede cometer errores. Considera verificar la información importante."
