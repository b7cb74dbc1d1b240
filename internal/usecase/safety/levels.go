package safety

// Level describes one crisis severity: detection patterns plus the fixed
// containment response sent when any of them matches. Lower priority means
// more severe and is evaluated first.
type Level struct {
	Name            string
	Label           string
	Priority        int
	Patterns        []string
	Response        string
	Resources       []string
	Recommendations []string
	AlertRequired   bool
}

// DefaultLevels returns the built-in three-level escalation ladder. Patterns
// are matched case-insensitively. Accents are intentionally absent in most
// patterns; users in crisis rarely type them.
func DefaultLevels() []Level {
	return []Level{
		{
			Name:     "high",
			Label:    "🔴 Alto",
			Priority: 0,
			Patterns: []string{
				`\bme quiero morir\b`,
				`\bno quiero vivir\b`,
				`\bquitarme la vida\b`,
				`\bterminar con mi vida\b`,
				`\bno vale la pena vivir\b`,
				`\bvoy a suicidarme\b`,
				`\btengo un plan para suicidarme\b`,
				`\bsuicidarme\b`,
				`\bsuicidio\b`,
				`\bplaneo suicidarme\b`,
				`\bend my life\b`,
				`\bkill myself\b`,
				`\bi want to die\b`,
			},
			Response: "Gracias por compartir lo que sientes. Vamos a priorizar tu seguridad ahora mismo. Comunícate" +
				" de inmediato con los servicios de emergencia 123 en Colombia o con la Línea 106 (Bogotá)." +
				" Si estás en otra región, llama o escribe a la Línea Calma 3009125231 o consulta" +
				" https://www.iasp.info/resources/Crisis_Centres/ para ubicar apoyo presencial. Indica dónde" +
				" te encuentras y pide a alguien de confianza que permanezca contigo mientras llega ayuda.",
			Resources: []string{
				"Línea 123 - emergencias en Colombia",
				"Línea 106 - atención en salud mental (Bogotá)",
				"Línea Calma (WhatsApp 3009125231)",
				"https://www.iasp.info/resources/Crisis_Centres/ - centros de crisis internacionales",
			},
			Recommendations: []string{
				"Contactar inmediatamente a los servicios de emergencia disponibles en tu zona.",
				"Compartir tu ubicación actual para coordinar apoyo en sitio.",
				"Buscar compañía de una persona de confianza mientras llega ayuda profesional.",
			},
			AlertRequired: true,
		},
		{
			Name:     "moderate",
			Label:    "🟡 Moderado",
			Priority: 1,
			Patterns: []string{
				`\bya no quiero seguir asi\b`,
				`\bno encuentro salida\b`,
				`\bno veo sentido a la vida\b`,
				`\bpreferiria desaparecer\b`,
				`\bquisiera dormirme y no despertar\b`,
				`\bestoy cansado de vivir\b`,
				`\bno puedo mas\b`,
				`\bthoughts of death\b`,
				`\bending it all\b`,
			},
			Response: "Gracias por abrirte sobre lo que estás viviendo. Estos mensajes muestran un dolor profundo y" +
				" es importante que recibas acompañamiento profesional cuanto antes. Agenda una consulta con" +
				" un psicólogo o psiquiatra y comparte exactamente lo que mencionaste aquí. Puedes comunicarte" +
				" con la Línea 106 o la Línea Calma 3009125231 para orientación inmediata, y habla hoy con alguien" +
				" de tu confianza para no atravesar esto en soledad.",
			Resources: []string{
				"Línea 106 - atención en salud mental (Bogotá)",
				"Línea Calma (WhatsApp 3009125231)",
				"https://www.iasp.info/resources/Crisis_Centres/ - centros de crisis internacionales",
			},
			Recommendations: []string{
				"Contactar a un profesional de salud mental y programar una cita prioritaria.",
				"Utilizar líneas de apoyo emocional como la 106 o Línea Calma para acompañamiento inmediato.",
				"Informar a una persona de confianza sobre los pensamientos que estás teniendo hoy.",
			},
		},
		{
			Name:     "low",
			Label:    "🟢 Bajo",
			Priority: 2,
			Patterns: []string{
				`\bestoy deprimido\b`,
				`\bsiento mucha tristeza\b`,
				`\bestoy muy triste\b`,
				`\bestoy muy solo\b`,
				`\bestoy muy sola\b`,
				`\bno tengo ganas de nada\b`,
				`\bestoy perdiendo la esperanza\b`,
				`\bestoy muy cansado emocionalmente\b`,
			},
			Response: "Lamento que estés pasando por este momento difícil. Hablar de tu tristeza es un paso valioso." +
				" Te sugiero agendar una orientación con el equipo de bienestar o un profesional de confianza," +
				" y trabajar en estrategias de autocuidado. Puedo compartirte ejercicios de respiración," +
				" técnicas de afrontamiento y materiales para que no te sientas solo/a en este proceso.",
			Resources: []string{
				"Programa de bienestar u orientación psicológica de tu institución",
				"Artículo OMS: autocuidado y salud mental (https://www.who.int/es/health-topics/mental-health)",
				"Guía de ejercicios de respiración y relajación (https://www.apa.org/topics/stress/tips)",
			},
			Recommendations: []string{
				"Hablar con una persona de confianza sobre lo que estás sintiendo.",
				"Agendar una sesión con orientación psicológica o bienestar universitario.",
				"Practicar ejercicios de autocuidado y registrar cambios en estado de ánimo.",
			},
		},
	}
}

// DefaultResources returns the baseline support resources appended to every
// triggered response regardless of level.
func DefaultResources() []string {
	return []string{
		"Línea 123 - emergencias en Colombia",
		"Línea 106 - atención en salud mental (Bogotá)",
		"Línea Calma (WhatsApp 3009125231)",
		"https://www.iasp.info/resources/Crisis_Centres/ - búsqueda de centros de crisis internacionales",
	}
}
