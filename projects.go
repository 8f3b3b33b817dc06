package main

import (
	"strings"
)

// Project is one tracked portfolio entry. ID is assigned by the store and
// never changes.
type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TechStack   []string `json:"tech_stack"`
	UserStories []string `json:"user_stories"`
}

// ProjectFields is the raw form record submitted by the create and edit
// forms. TechStack is comma separated, UserStories holds one story per line.
type ProjectFields struct {
	Name        string
	Description string
	TechStack   string
	UserStories string
}

func (p Project) clone() Project {
	out := p
	out.TechStack = append([]string(nil), p.TechStack...)
	out.UserStories = append([]string(nil), p.UserStories...)
	return out
}

func (p Project) hasStory(story string) bool {
	for _, existing := range p.UserStories {
		if existing == story {
			return true
		}
	}
	return false
}

// fieldsFromProject renders a project back into form input.
func fieldsFromProject(p Project) ProjectFields {
	return ProjectFields{
		Name:        p.Name,
		Description: p.Description,
		TechStack:   strings.Join(p.TechStack, ", "),
		UserStories: strings.Join(p.UserStories, "\n"),
	}
}

// normalizeFields validates the form record and returns the normalized
// project without an ID. ok is false when the name is blank.
func normalizeFields(fields ProjectFields) (Project, bool) {
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		return Project{}, false
	}
	return Project{
		Name:        name,
		Description: strings.TrimSpace(fields.Description),
		TechStack:   splitTechStack(fields.TechStack),
		UserStories: splitUserStories(fields.UserStories),
	}, true
}

func splitTechStack(raw string) []string {
	return splitAndTrim(raw, ",")
}

func splitUserStories(raw string) []string {
	return splitAndTrim(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
}

func splitAndTrim(raw, sep string) []string {
	var out []string
	for _, part := range strings.Split(raw, sep) {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
