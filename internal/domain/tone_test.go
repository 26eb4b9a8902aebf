package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveTone_KnownValues(t *testing.T) {
	for _, tone := range []Tone{
		ToneFriendly, ToneEnthusiastic, ToneCalm, TonePlayful, ToneWise,
		ToneCaring, ToneExcited, ToneProfessional, ToneGentle, ToneAuthoritative,
	} {
		require.Equal(t, tone, ResolveTone(string(tone)))
	}
}

func TestResolveTone_FallsBackToDefault(t *testing.T) {
	require.Equal(t, DefaultTone, ResolveTone(""))
	require.Equal(t, DefaultTone, ResolveTone("nonexistent-tone"))
	require.Equal(t, DefaultTone, ResolveTone("FRIENDLY"))
}

func TestResolveTone_UnknownBehavesLikeAbsent(t *testing.T) {
	require.Equal(t, ResolveTone(""), ResolveTone("nonexistent-tone"))
	require.Equal(t, ResolveTone("").Profile(), ResolveTone("nonexistent-tone").Profile())
}

func TestToneProfile_EveryToneHasInstructionAndVoice(t *testing.T) {
	for _, tone := range []Tone{
		ToneFriendly, ToneEnthusiastic, ToneCalm, TonePlayful, ToneWise,
		ToneCaring, ToneExcited, ToneProfessional, ToneGentle, ToneAuthoritative,
	} {
		p := tone.Profile()
		require.NotEmpty(t, p.Instruction, "tone=%s", tone)
		require.NotEmpty(t, p.VoiceID, "tone=%s", tone)
	}
}

func TestToneProfile_UnknownGetsDefaultProfile(t *testing.T) {
	require.Equal(t, DefaultTone.Profile(), Tone("whatever").Profile())
}

func TestToneProfile_VoicesAreDistinct(t *testing.T) {
	seen := map[string]Tone{}
	for _, tone := range []Tone{
		ToneFriendly, ToneEnthusiastic, ToneCalm, TonePlayful, ToneWise,
		ToneCaring, ToneExcited, ToneProfessional, ToneGentle, ToneAuthoritative,
	} {
		id := tone.Profile().VoiceID
		prev, dup := seen[id]
		require.False(t, dup, "tones %s and %s share voice %s", prev, tone, id)
		seen[id] = tone
	}
}
