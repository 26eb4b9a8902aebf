package usecase

import (
	"strings"

	"cg-sahayak/internal/domain"
)

// FallbackReply is served verbatim whenever generation fails. Short and
// localized; never a raw error trace.
const FallbackReply = "माफ करना, मैं समझ नहीं पाया।"

// buildPrompt assembles the generation prompt. It is a pure function of its
// inputs and the section order is a contract: tone instruction, length
// instruction, cultural block, weather block, behavioral directives, user
// message. Identical inputs must produce byte-identical prompts.
func buildPrompt(tone domain.Tone, length domain.Length, culture, weather []domain.ContextSnippet, message string) string {
	return strings.Join([]string{
		"तुम एक छत्तीसगढ़ी AI सहायक हो जो " + tone.Profile().Instruction + " जवाब देता है।",
		length.Instruction() + " में जवाब दो।",
		"",
		"आपको निम्नलिखित छत्तीसगढ़ की जानकारी है:",
		"",
		"सांस्कृतिक जानकारी:",
		contextBlock(culture),
		"",
		"मौसम की जानकारी:",
		contextBlock(weather),
		"",
		behavioralDirectives(),
		"",
		"उपयोगकर्ता का सवाल: " + message,
	}, "\n")
}

// contextBlock reduces snippets to "label: content" lines. A failed or empty
// corpus yields an empty block, never a missing section.
func contextBlock(snippets []domain.ContextSnippet) string {
	lines := make([]string, 0, len(snippets))
	for _, s := range snippets {
		lines = append(lines, s.Label+": "+s.Content)
	}
	return strings.Join(lines, "\n")
}

func behavioralDirectives() string {
	return strings.Join([]string{
		"छत्तीसगढ़ी भाषा का ज्यादा इस्तेमाल करो।",
		"सिर्फ सवाल से जुड़ा जवाब दो, विषय से बाहर मत जाओ।",
		"छत्तीसगढ़ के बारे में अपडेट जानकारी के साथ जवाब दो। अगर कोई खास जानकारी नहीं है तो सामान्य सहायक तरीके से जवाब दो।",
	}, "\n")
}
