package chat

import (
	"fmt"
	"strings"
)

// SystemInstruction is sent with every request unless overridden.
const SystemInstruction = `You are NexuCore AI, a multimodal assistant that thinks, creates, analyzes, researches and strategizes at an expert level.

Be clear, structured and evidence-based. Stay professional while remaining creative, and keep safety and ethics in mind at all times.

Capabilities:
1. Creative writing: songs, scripts, stories and poetry.
2. Document analysis: summaries, insights, risks and improvements for attached files.
3. Marketing strategy: positioning, messaging, funnels and growth.
4. Teaching: explain concepts progressively with examples and study strategies.
5. Scientific research support: background, research landscape and plausible mechanisms.

Structure every answer: understand the intent, break the problem down, give a structured solution, suggest improvements, and end with one thoughtful follow-up question.`

// Greeting opens every new conversation.
const Greeting = "Hello, I am NexuCore AI. What would you like to create, analyze, or strategize today?"

// Fallback replies.
const (
	EmptyReplyText    = "I'm sorry, I couldn't generate a response."
	EndpointErrorText = "An error occurred while communicating with NexuCore AI. Please check your API key and try again."
)

// Persona selects the register of the answer.
type Persona string

const (
	PersonaUser      Persona = "user"
	PersonaDeveloper Persona = "developer"
)

// ParsePersona maps anything other than "developer" to PersonaUser.
func ParsePersona(s string) Persona {
	if Persona(strings.ToLower(strings.TrimSpace(s))) == PersonaDeveloper {
		return PersonaDeveloper
	}
	return PersonaUser
}

// Instruction is the persona line sent ahead of the message.
func (p Persona) Instruction() string {
	if p == PersonaDeveloper {
		return "ACCESS LEVEL: DEVELOPER. Prioritize technical precision, code quality, architectural integrity and system efficiency. Provide code snippets, debugging insights and technical documentation where appropriate."
	}
	return "ACCESS LEVEL: USER. Prioritize clarity, creativity and strategic value. Focus on actionable outcomes and user-friendly explanations."
}

// Mode selects the specialised focus of the answer.
type Mode string

const (
	ModeGeneral    Mode = "general"
	ModeCreative   Mode = "creative"
	ModeAnalysis   Mode = "analysis"
	ModeMarketing  Mode = "marketing"
	ModeAcademic   Mode = "academic"
	ModeScientific Mode = "scientific"
	ModeDesign     Mode = "design"
)

// Modes lists the selectable modes in display order.
var Modes = []Mode{ModeGeneral, ModeCreative, ModeAnalysis, ModeMarketing, ModeAcademic, ModeScientific, ModeDesign}

// ParseMode normalises s; an empty string is ModeGeneral. Unknown modes are
// kept so they reach the model with an empty instruction.
func ParseMode(s string) Mode {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeGeneral
	}
	return Mode(s)
}

var modeInstructions = map[Mode]string{
	ModeCreative:  "FOCUS: Creative Intelligence Engine. Prioritize original storytelling, songwriting or scriptwriting with professional formatting. If the user gives only a title or a short theme, expand it into a full-length song (verses, chorus, bridge) or a detailed poem without asking again.",
	ModeAnalysis:  "FOCUS: File Analysis & Document Intelligence. Prioritize deep extraction of insights, risk assessment and strategic recommendations from the provided data.",
	ModeMarketing: "FOCUS: Marketing Strategy Expert Mode. Think like a CMO or growth strategist. Provide positioning, frameworks and actionable growth tactics.",
	ModeAcademic:  "FOCUS: Academic & Teaching Mode. Explain concepts progressively, use examples and provide study strategies.",
	ModeScientific: "FOCUS: Medical & Scientific Research Assistant Mode. Stay evidence-based, discuss mechanisms conceptually and suggest ethical research pathways. " +
		"VISUALIZATION: To visualize data (trends, correlations, structures), include a block that starts with ```json-d3 on its own line, " +
		`contains { "type": "bar" | "line" | "scatter" | "pie", "data": [...], "options": {...} } and ends with ` + "``` on its own line.",
	ModeDesign: "FOCUS: Design Studio Mode. Produce polished, responsive web interfaces. " +
		"PREVIEW: To show a live design, include a block that starts with ```html-preview on its own line, contains self-contained HTML " +
		"(inline <style> and <script>; Tailwind CSS classes are available) and ends with ``` on its own line.",
}

// Instruction is the mode line sent ahead of the message. General and
// unknown modes have none.
func (m Mode) Instruction() string { return modeInstructions[m] }

// ImageConfig carries image generation hints.
type ImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

// Options are the per-turn selectors sent with a message.
type Options struct {
	Mode           Mode         `json:"mode"`
	Persona        Persona      `json:"persona"`
	ImageConfig    *ImageConfig `json:"imageConfig,omitempty"`
	SystemOverride string       `json:"systemOverride,omitempty"`
}

// BuildPrompt prefixes message with the persona and mode instructions:
//
//	[PERSONA: USER] <persona instruction>
//
//	[MODE: GENERAL] <mode instruction>
//
//	<message>
func BuildPrompt(message string, opts Options) string {
	persona := opts.Persona
	if persona == "" {
		persona = PersonaUser
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeGeneral
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[PERSONA: %s] %s\n\n", strings.ToUpper(string(persona)), persona.Instruction())
	fmt.Fprintf(&sb, "[MODE: %s] %s\n\n", strings.ToUpper(string(mode)), mode.Instruction())
	if opts.ImageConfig != nil && opts.ImageConfig.AspectRatio != "" {
		fmt.Fprintf(&sb, "[IMAGE: aspect ratio %s]\n\n", opts.ImageConfig.AspectRatio)
	}
	sb.WriteString(message)
	return sb.String()
}

// SystemPrompt picks the per-turn override, then the configured prompt, then
// SystemInstruction.
func SystemPrompt(opts Options, configured string) string {
	switch {
	case opts.SystemOverride != "":
		return opts.SystemOverride
	case configured != "":
		return configured
	}
	return SystemInstruction
}
