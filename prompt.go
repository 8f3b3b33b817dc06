package main

import (
	"fmt"
	"strings"
)

const feedbackSystemPrompt = "You are a senior product manager and software architect. " +
	"You review agile user stories and give concise, practical feedback."

const (
	techStackPlaceholder   = "Not specified"
	userStoriesPlaceholder = "None yet"
)

const feedbackInstructions = `Review the new user story in the context of this project.
Respond in Markdown with exactly these sections:

1. **Improved Story** - a rewritten version in "As a ..., I want ..., so that ..." form.
2. **Acceptance Criteria** - a bulleted list of testable criteria.
3. **Edge Cases** - scenarios the team could miss.
4. **Implementation Notes** - hints that fit the project's tech stack.`

// buildFeedbackPrompt renders the user message sent with a feedback request.
// The output depends only on its inputs.
func buildFeedbackPrompt(project Project, draft string) string {
	techStack := strings.Join(project.TechStack, ", ")
	if techStack == "" {
		techStack = techStackPlaceholder
	}
	stories := strings.Join(project.UserStories, " | ")
	if stories == "" {
		stories = userStoriesPlaceholder
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Project name: %s\n", project.Name))
	b.WriteString(fmt.Sprintf("Description: %s\n", project.Description))
	b.WriteString(fmt.Sprintf("Tech stack: %s\n", techStack))
	b.WriteString(fmt.Sprintf("Existing user stories: %s\n", stories))
	b.WriteString(fmt.Sprintf("New user story: %s\n\n", strings.TrimSpace(draft)))
	b.WriteString(feedbackInstructions)
	return b.String()
}
