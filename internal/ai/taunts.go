package ai

var tauntLines = map[Taunt][]string{
	TauntConfident: {
		"I like my cards.",
		"You might want to think about this one.",
		"Raise. Your move.",
		"Feeling lucky?",
	},
	TauntBluff: {
		"Let's make it interesting.",
		"Do you believe me?",
		"Nothing to see here.",
	},
	TauntFold: {
		"Not this time.",
		"You can have that one.",
		"I'll wait for a better spot.",
	},
	TauntCall: {
		"I'll see that.",
		"Call. Show me what you've got.",
		"Not scared of you.",
	},
}

// TauntLine returns a chat line for t, or "" for TauntNone.
func TauntLine(t Taunt, rng Rand) string {
	lines := tauntLines[t]
	if len(lines) == 0 {
		return ""
	}
	return lines[rng.IntN(len(lines))]
}
