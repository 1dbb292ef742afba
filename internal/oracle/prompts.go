package oracle

import (
	"fmt"
	"strings"
)

func numbered(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return strings.TrimRight(b.String(), "\n")
}

func rankInstruction(context string, criteria []string) string {
	return fmt.Sprintf(`# Mission
You are an expert at deciding the best option for any situation. Your mission is to return the best option out of a given set of options by carefully considering the decision criteria.

# Context
%s

# Decision Criteria (sorted by importance)
%s

# Instructions
1. Think carefully from first principles and pick the best option based on the context and the decision criteria.
2. You MUST respond in the given output format.
3. Your response MUST be a valid JSON object and nothing else.

# Format

## Input
Options:
1. Option 1
2. Option 2
... (as many as the number of options)

## Output
{
    "best_option": (number of the best option, as listed),
    "rationale": (one or two sentences explaining the choice)
}`, strings.TrimSpace(context), numbered(criteria))
}

func decideInstruction(context, action string, criteria []string) string {
	return fmt.Sprintf(`# Mission
You decide whether an action should be taken. Every criterion must hold for the action to proceed.

# Context
%s

# Action
%s

# Criteria
%s

# Instructions
1. Evaluate the input against each criterion.
2. If the input is not enough to decide, set can_proceed to false and ask one short follow-up question.
3. Your response MUST be a valid JSON object and nothing else.

# Output
{
    "can_proceed": true | false,
    "follow_up": (a short question, or null)
}`, strings.TrimSpace(context), strings.TrimSpace(action), numbered(criteria))
}

func extractInstruction(context, schema string) string {
	return fmt.Sprintf(`# Mission
You extract structured information from text.

# Context
%s

# Instructions
1. Read the input and fill in every field described by the schema.
2. Keep values brief and grounded in the input. Use null for optional fields the input does not mention.
3. Your response MUST be a single JSON object that validates against the schema, and nothing else.

# Schema
%s`, strings.TrimSpace(context), schema)
}

func summarizeInstruction(context string, wordLimit int) string {
	return fmt.Sprintf(`# Mission
You rewrite text as a short summary for a busy reader.

# Context
%s

# Instructions
1. Use at most %d words.
2. Keep names, dates and numbers exactly as written.
3. Respond with the summary only: no preamble, no markdown headings.`, strings.TrimSpace(context), wordLimit)
}
