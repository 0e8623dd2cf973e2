package chat

// prompts.go collects the fixed user-facing strings and the assistant
// persona. Keeping them in one file makes them easy to tweak without
// touching the session logic.

const (
	// PersonaInstruction tailors the assistant for a rural Indian setting.
	// It is bound to the conversation at creation time and never changes
	// for the lifetime of a session.
	PersonaInstruction = `You are GraminHealth, a helpful and empathetic medical assistant designed for people living in rural India, specifically farmers.

Your goals:
1. Provide clear, simple, and accurate medical guidance in English (but tailored for non-native speakers if needed).
2. If a situation sounds like an emergency (heart attack, snake bite, severe injury), immediately advise calling an ambulance (102/108) or going to the nearest hospital.
3. Be culturally aware of rural Indian settings (farms, distance to clinics).
4. Do not provide definitive diagnoses; always suggest consulting a doctor.
5. Keep responses concise and easy to read on mobile phones.`

	// PersonaTemperature is the fixed creativity parameter for the chat.
	PersonaTemperature float32 = 0.7

	// WelcomeMessage opens every session. It is synthesized locally and is
	// never sent to the backend.
	WelcomeMessage = "Namaste! I am your health assistant. I can help you understand symptoms or guide you on basic first aid. How are you feeling today?"

	// FallbackMessage substitutes an empty or absent remote reply.
	FallbackMessage = "I'm sorry, I couldn't understand that. Please try again."

	// ConnectionTroubleMessage is the in-band error turn text. The raw
	// error is logged, never shown to the user.
	ConnectionTroubleMessage = "I'm having trouble connecting right now. Please check your internet connection."

	// CapMessage is appended once a session reaches its message cap.
	CapMessage = "We have reached the message limit for this visit. Thank you for the details. For anything urgent, please call 102 or 108, or visit the nearest clinic."
)
