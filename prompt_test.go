package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFeedbackPrompt(t *testing.T) {
	project := Project{
		Name:        "Pal",
		Description: "Tracks projects",
		TechStack:   []string{"Go", "Bubble Tea"},
		UserStories: []string{"As a user, I add a project", "As a user, I delete a project"},
	}

	prompt := buildFeedbackPrompt(project, "  As a user, I get feedback  ")

	assert.Contains(t, prompt, "Project name: Pal\n")
	assert.Contains(t, prompt, "Description: Tracks projects\n")
	assert.Contains(t, prompt, "Tech stack: Go, Bubble Tea\n")
	assert.Contains(t, prompt, "Existing user stories: As a user, I add a project | As a user, I delete a project\n")
	assert.Contains(t, prompt, "New user story: As a user, I get feedback\n")
	assert.True(t, strings.HasSuffix(prompt, feedbackInstructions))
	for _, section := range []string{"Improved Story", "Acceptance Criteria", "Edge Cases", "Implementation Notes"} {
		assert.Contains(t, prompt, section)
	}
}

func TestBuildFeedbackPromptPlaceholders(t *testing.T) {
	prompt := buildFeedbackPrompt(Project{Name: "Empty"}, "story")
	assert.Contains(t, prompt, "Tech stack: "+techStackPlaceholder+"\n")
	assert.Contains(t, prompt, "Existing user stories: "+userStoriesPlaceholder+"\n")
}

func TestBuildFeedbackPromptIsDeterministic(t *testing.T) {
	project := Project{Name: "P", TechStack: []string{"Go"}}
	assert.Equal(t, buildFeedbackPrompt(project, "s"), buildFeedbackPrompt(project, "s"))
}
