package orchestration

import (
	"fmt"
	"strings"
)

func stance(s Speaker) string {
	if s == SpeakerFor {
		return "in favor of"
	}
	return "against"
}

func opponentStance(s Speaker) string {
	if s == SpeakerFor {
		return "in favor"
	}
	return "against"
}

// buildPrompt writes the instruction for the speaker's next turn. The
// opening turn only knows the topic; every later turn quotes the opponent's
// previous turn verbatim and asks for a rebuttal.
func buildPrompt(topic string, speaker Speaker, turnIndex int, carriedContext string, opponent string, maxWords int) string {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "You are an expert debater. The topic of the debate is: \"%s\". ", topic)

	if turnIndex == 0 {
		fmt.Fprintf(&prompt, "Please present a strong and well-structured opening argument %s this topic. ", stance(speaker))
	} else {
		fmt.Fprintf(&prompt, "%s has presented the following argument %s:\n\n\"%s\"\n\n", opponent, opponentStance(Next(speaker)), carriedContext)
		fmt.Fprintf(&prompt, "Please present a strong and well-structured counterargument, refuting %s's points if possible, and taking a stance %s the original topic. ", opponent, stance(speaker))
	}

	prompt.WriteString("Be persuasive and clear.")
	if maxWords > 0 {
		fmt.Fprintf(&prompt, " Your argument should be a maximum of %d words.", maxWords)
	}
	return prompt.String()
}

func startedMessage(topic string, first string) string {
	return fmt.Sprintf("Debate started on: \"%s\". Waiting for %s...", topic, first)
}

func preparingMessage(topic string, speaker Speaker, turnIndex int, name string, opponent string) string {
	side := "for"
	if speaker == SpeakerAgainst {
		side = "against"
	}
	if turnIndex == 0 {
		return fmt.Sprintf("%s (%s) is preparing its argument on: \"%s\"", name, side, topic)
	}
	return fmt.Sprintf("%s (%s) is preparing its response to %s's argument...", name, side, opponent)
}

func stoppedBeforeMessage(name string) string {
	return fmt.Sprintf("Debate stopped before %s started.", name)
}

func stoppedDuringMessage(name string) string {
	return fmt.Sprintf("Debate stopped during %s's turn.", name)
}

const completedMessage = "Debate round completed."

func failedMessage(err error) string {
	message := "Unknown"
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return fmt.Sprintf("Server error: %s.", strings.TrimSuffix(message, "."))
}
