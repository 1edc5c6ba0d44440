package assistant

// Topic categories used by the catalog, the flow tracker and the
// next-topic prediction table.
const (
	CategorySocial        = "social_interaction"
	CategoryProgramming   = "programming_concepts"
	CategoryInstitutional = "institutional_info"
	CategoryCourses       = "courses"
	CategoryEnrollment    = "enrollment"
	CategorySchedules     = "schedules"
	CategoryProjects      = "projects"
)

// defaultResponses are used when no template clears the match threshold and
// the generative path is unavailable.
var defaultResponses = []string{
	"¡Qué buena pregunta! Te recomiendo acercarte a uno de nuestros instructores para más detalles.",
	"No estoy seguro de haber entendido. ¿Puedes preguntarme sobre los cursos, horarios o inscripciones?",
	"Interesante. ¿Te gustaría conocer más sobre nuestros cursos de programación?",
	"Puedo contarte sobre el CECADE, sus cursos de programación y cómo inscribirte. ¿Qué te interesa?",
}

// DefaultCatalog is the canned-response catalog for the open-house exhibit.
func DefaultCatalog() []ResponseTemplate {
	return []ResponseTemplate{
		{
			ID:       "greeting",
			Category: CategorySocial,
			Keywords: []string{"hola", "buenos dias", "buenas tardes", "saludos", "que tal"},
			Responses: []string{
				"¡Hola! Soy el asistente virtual del CECADE. Pregúntame sobre nuestros cursos de programación.",
				"¡Bienvenido a la casa abierta del CECADE! ¿Qué te gustaría saber?",
			},
		},
		{
			ID:       "farewell",
			Category: CategorySocial,
			Keywords: []string{"adios", "hasta luego", "gracias", "nos vemos", "chao"},
			Responses: []string{
				"¡Gracias por visitarnos! Esperamos verte pronto en el CECADE.",
				"¡Hasta pronto! Fue un gusto platicar contigo.",
			},
		},
		{
			ID:       "courses_overview",
			Category: CategoryCourses,
			Keywords: []string{"cursos", "que ensenan", "talleres", "clases", "programas de estudio"},
			Responses: []string{
				"Ofrecemos cursos de fundamentos de programación, desarrollo web, y aplicaciones móviles. Cada curso combina teoría con proyectos prácticos.",
				"Nuestros cursos cubren desde lógica de programación hasta desarrollo web completo. ¿Te interesa alguno en particular?",
			},
		},
		{
			ID:       "languages",
			Category: CategoryProgramming,
			Keywords: []string{"lenguajes", "python", "javascript", "que lenguaje", "programar"},
			Responses: []string{
				"Trabajamos principalmente con Python y JavaScript. Python es ideal para empezar y JavaScript te abre las puertas del desarrollo web.",
			},
		},
		{
			ID:       "what_is_programming",
			Category: CategoryProgramming,
			Keywords: []string{"que es programacion", "que es programar", "algoritmo", "codigo"},
			Responses: []string{
				"Programar es darle instrucciones a una computadora para resolver problemas. Empezamos con algoritmos sencillos y pronto estarás creando tus propios programas.",
			},
		},
		{
			ID:       "enrollment",
			Category: CategoryEnrollment,
			Keywords: []string{"inscripcion", "inscribirme", "matricula", "requisitos", "como entro"},
			Responses: []string{
				"Para inscribirte solo necesitas tu documento de identidad y llenar el formulario en recepción. ¡La casa abierta tiene descuentos especiales!",
			},
		},
		{
			ID:       "schedules",
			Category: CategorySchedules,
			Keywords: []string{"horarios", "que hora", "cuando", "dias de clase", "turnos"},
			Responses: []string{
				"Tenemos turnos de mañana (8:00–12:00), tarde (14:00–18:00) y sábados intensivos. Los grupos son reducidos.",
			},
		},
		{
			ID:       "about_cecade",
			Category: CategoryInstitutional,
			Keywords: []string{"cecade", "escuela", "instituto", "donde estan", "quienes son"},
			Responses: []string{
				"El CECADE es un centro de capacitación con más de una década formando programadores. Estamos en el centro de la ciudad y contamos con laboratorios equipados.",
			},
		},
		{
			ID:       "projects",
			Category: CategoryProjects,
			Keywords: []string{"proyectos", "que construyen", "ejemplos", "trabajos de alumnos"},
			Responses: []string{
				"Nuestros alumnos construyen desde juegos sencillos hasta sitios web completos. En la exposición de hoy puedes ver varios proyectos funcionando.",
			},
		},
		{
			ID:       "cost",
			Category: CategoryEnrollment,
			Keywords: []string{"costo", "precio", "cuanto cuesta", "mensualidad", "becas"},
			Responses: []string{
				"Los costos varían por curso y hay becas parciales para estudiantes destacados. En recepción te dan el detalle completo y las promociones de hoy.",
			},
		},
	}
}
