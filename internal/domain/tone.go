package domain

// Tone names a reply style profile. The set is closed: unknown or empty
// values resolve to the default instead of failing, so a stale client can
// never break an exchange by sending a tone this build does not know.
type Tone string

const (
	ToneFriendly      Tone = "friendly"
	ToneEnthusiastic  Tone = "enthusiastic"
	ToneCalm          Tone = "calm"
	TonePlayful       Tone = "playful"
	ToneWise          Tone = "wise"
	ToneCaring        Tone = "caring"
	ToneExcited       Tone = "excited"
	ToneProfessional  Tone = "professional"
	ToneGentle        Tone = "gentle"
	ToneAuthoritative Tone = "authoritative"
)

// DefaultTone is substituted for unrecognized or absent tone values.
const DefaultTone = ToneFriendly

// ToneProfile carries the prompt instruction fragment and the synthesis
// voice bound to a tone.
type ToneProfile struct {
	Instruction string
	VoiceID     string
}

// ResolveTone maps a raw request value onto a known Tone, falling back to
// DefaultTone for anything it does not recognize.
func ResolveTone(raw string) Tone {
	switch Tone(raw) {
	case ToneFriendly, ToneEnthusiastic, ToneCalm, TonePlayful, ToneWise,
		ToneCaring, ToneExcited, ToneProfessional, ToneGentle, ToneAuthoritative:
		return Tone(raw)
	default:
		return DefaultTone
	}
}

// Profile returns the style configuration for the tone. Values outside the
// enumerated set get the default profile.
func (t Tone) Profile() ToneProfile {
	switch t {
	case ToneEnthusiastic:
		return ToneProfile{Instruction: "जोशीला अउ उत्साही तरीका से", VoiceID: "IKne3meq5aSn9XLyUdCD"}
	case ToneCalm:
		return ToneProfile{Instruction: "शांत अउ धैर्यवान तरीका से", VoiceID: "EXAVITQu4vr4xnSDxMaL"}
	case TonePlayful:
		return ToneProfile{Instruction: "मजेदार अउ हंसी-मजाक के साथ", VoiceID: "SAz9YHcvj6GT2YYXdXww"}
	case ToneWise:
		return ToneProfile{Instruction: "ज्ञानी अउ समझदार तरीका से", VoiceID: "JBFqnCBsd6RMkjVDRZzb"}
	case ToneCaring:
		return ToneProfile{Instruction: "प्रेम अउ देखभाल के साथ", VoiceID: "FGY2WhTYpPnrIDTdsKH5"}
	case ToneExcited:
		return ToneProfile{Instruction: "जोश अउ उमंग के साथ", VoiceID: "TX3LPaxmHKxFdv7VOQHJ"}
	case ToneProfessional:
		return ToneProfile{Instruction: "पेशेवर अउ सटीक तरीका से", VoiceID: "nPczCjzI2devNBz1zQrb"}
	case ToneGentle:
		return ToneProfile{Instruction: "नरम अउ कोमल तरीका से", VoiceID: "Xb7hH8MSUJpSbSDYk0k2"}
	case ToneAuthoritative:
		return ToneProfile{Instruction: "भरोसा अउ दृढ़ता के साथ", VoiceID: "onwK4e9ZLuTAKqWW03F9"}
	default:
		return ToneProfile{Instruction: "दोस्ताना अउ मिलनसार तरीका से", VoiceID: "9BWtsMINqrJLrRacOk9x"}
	}
}
