package vision

import "strings"

// Rendered descriptions for outcomes that did not identify a garment.
const (
	MessageNotClothing  = "no garment identified in the image."
	MessageUnclear      = "could not identify the garment clearly."
	MessageUnidentified = "could not identify the garment."
)

const (
	// promptLead is how the model starts when it echoes the instruction back.
	promptLead = "descreva a peça de roupa nesta imagem"
	// notClothing is the answer the prompt asks for on non-garment images.
	notClothing = "não é uma peça de roupa"
)

type Kind int

const (
	KindIdentified Kind = iota
	KindNotClothing
	KindUnclear
	KindUnidentified
)

func (k Kind) String() string {
	switch k {
	case KindIdentified:
		return "identified"
	case KindNotClothing:
		return "not_clothing"
	case KindUnclear:
		return "unclear"
	default:
		return "unidentified"
	}
}

// Outcome is the normalised result of one classification.
type Outcome struct {
	Kind        Kind
	Description string
}

func Identified(description string) Outcome {
	return Outcome{Kind: KindIdentified, Description: description}
}

// Text is the description shown to the caller.
func (o Outcome) Text() string {
	switch o.Kind {
	case KindIdentified:
		return o.Description
	case KindNotClothing:
		return MessageNotClothing
	case KindUnclear:
		return MessageUnclear
	default:
		return MessageUnidentified
	}
}

// IsSentinel reports whether description is one of the rendered
// non-identified messages.
func IsSentinel(description string) bool {
	switch description {
	case MessageNotClothing, MessageUnclear, MessageUnidentified:
		return true
	}
	return false
}

// Normalize interprets the raw model text.
func Normalize(raw string) Outcome {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Outcome{Kind: KindUnidentified}
	}

	if strings.HasPrefix(strings.ToLower(text), promptLead) {
		parts := strings.Split(text, ":")
		if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
			return Outcome{Kind: KindUnclear}
		}
		text = strings.TrimSpace(parts[1])
	}

	if isNotClothing(text) {
		return Outcome{Kind: KindNotClothing}
	}
	return Identified(text)
}

func isNotClothing(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimSpace(strings.TrimSuffix(t, "."))
	return t == notClothing
}
