package assistant

import (
	"fmt"
	"strings"
)

const analysisPromptTemplate = `Eres el módulo de análisis del asistente virtual del CECADE, un centro de
capacitación en programación. Analiza el mensaje del visitante y responde
SOLO con un objeto JSON, sin texto adicional:

{
  "intent": "greeting|course_inquiry|enrollment_inquiry|schedule_inquiry|concept_question|farewell|general_inquiry",
  "sentiment": "positive|neutral|negative",
  "confidence": 0.0,
  "context": ["fragmentos relevantes"],
  "user_level": "beginner|intermediate|advanced",
  "urgency": "low|medium|high",
  "keywords": ["palabras clave"],
  "category": "social_interaction|programming_concepts|institutional_info|courses|enrollment|schedules|projects"
}

Contexto de la sesión:
- Etapa: %s
- Tema actual: %s
- Temas recientes: %s
- Nivel detectado: %s
- Mensajes en la conversación: %d

Mensaje del visitante: %s`

// renderAnalysisPrompt substitutes the session state into the analysis prompt.
func renderAnalysisPrompt(text string, sctx *SessionContext) string {
	stage := StageGreeting
	topic := "ninguno"
	recent := "ninguno"
	level := "desconocido"
	count := 0
	if sctx != nil {
		if sctx.Flow.Stage != "" {
			stage = sctx.Flow.Stage
		}
		if sctx.Flow.CurrentTopic != "" {
			topic = sctx.Flow.CurrentTopic
		}
		if len(sctx.Memory.RecentTopics) > 0 {
			recent = strings.Join(sctx.Memory.RecentTopics, ", ")
		}
		if sctx.Profile.DetectedLevel != "" {
			level = sctx.Profile.DetectedLevel
		}
		count = sctx.Metadata.MessageCount
	}
	return fmt.Sprintf(analysisPromptTemplate, stage, topic, recent, level, count, text)
}

const sentimentPromptTemplate = `Analiza el sentimiento de este mensaje de un visitante. Responde SOLO con JSON:

{"sentiment": "positive|neutral|negative", "confidence": 0.0, "emotions": ["..."], "intensity": 0.0}

Mensaje: %s`

func renderSentimentPrompt(text string) string {
	return fmt.Sprintf(sentimentPromptTemplate, text)
}

const replySystemPrompt = `Eres el asistente virtual del CECADE durante la casa abierta. Respondes a
visitantes curiosos sobre los cursos de programación. Reglas:
- Responde en español, en dos o tres frases, con tono amable y entusiasta.
- Habla solo de programación, los cursos, horarios, inscripciones y el CECADE.
- No uses emojis ni símbolos especiales; tu respuesta se convierte en voz.
- Si no sabes algo, invita al visitante a preguntar en recepción.`

// replyContextPrompt renders a compact session summary for the reply call.
func replyContextPrompt(sctx *SessionContext) string {
	if sctx == nil {
		return ""
	}
	parts := []string{
		fmt.Sprintf("Etapa de la conversación: %s.", sctx.Flow.Stage),
	}
	if sctx.Profile.DetectedLevel != "" {
		parts = append(parts, fmt.Sprintf("Nivel del visitante: %s.", sctx.Profile.DetectedLevel))
	}
	if len(sctx.Memory.RecentTopics) > 0 {
		parts = append(parts, fmt.Sprintf("Temas recientes: %s.", strings.Join(sctx.Memory.RecentTopics, ", ")))
	}
	if len(sctx.Summaries) > 0 {
		parts = append(parts, fmt.Sprintf("Resumen previo: %s.", sctx.Summaries[len(sctx.Summaries)-1]))
	}
	return strings.Join(parts, " ")
}
