package domain

// Length buckets reply verbosity. Same closed-set, default-on-miss rule as Tone.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// DefaultLength is substituted for unrecognized or absent length values.
const DefaultLength = LengthMedium

// GenerationParams is the parameter object sent with a generation call.
// It is derived from the length class alone, so identical length classes
// always produce identical parameters.
type GenerationParams struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
}

// ResolveLength maps a raw request value onto a known Length, falling back
// to DefaultLength for anything it does not recognize.
func ResolveLength(raw string) Length {
	switch Length(raw) {
	case LengthShort, LengthMedium, LengthLong:
		return Length(raw)
	default:
		return DefaultLength
	}
}

// Instruction returns the prompt fragment describing the target reply size.
func (l Length) Instruction() string {
	switch l {
	case LengthShort:
		return "एकदम छोटा जवाब (1-2 वाक्य)"
	case LengthLong:
		return "विस्तार से जवाब (6+ वाक्य)"
	default:
		return "मध्यम जवाब (3-5 वाक्य)"
	}
}

// GenerationParams returns the sampling configuration for the length class.
// Only the output-token ceiling varies; sampling parameters are fixed.
func (l Length) GenerationParams() GenerationParams {
	p := GenerationParams{Temperature: 0.8, TopP: 0.95, TopK: 40}
	switch l {
	case LengthShort:
		p.MaxOutputTokens = 100
	case LengthLong:
		p.MaxOutputTokens = 600
	default:
		p.MaxOutputTokens = 300
	}
	return p
}
