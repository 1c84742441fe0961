package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Markers name the handler recorded in agent_used when no single tool
// domain answered.
type Markers struct {
	Orchestrator string `yaml:"orchestrator"`
	Moderation   string `yaml:"moderation"`
	Redirect     string `yaml:"redirect"`
	Knowledge    string `yaml:"knowledge"`
	Datetime     string `yaml:"datetime"`
}

// Messages holds every user-visible string the assistant emits. A
// deployment overrides any subset through a YAML file.
type Messages struct {
	AgentName          string  `yaml:"agent_name"`
	SystemInstructions string  `yaml:"system_instructions"`
	Redirect           string  `yaml:"redirect"`
	ModerationBlock    string  `yaml:"moderation_block"`
	AllToolsFailed     string  `yaml:"all_tools_failed"`
	GeneralError       string  `yaml:"general_error"`
	ToolErrorNote      string  `yaml:"tool_error_note"`
	TimeAnswer         string  `yaml:"time_answer"`
	SignInRequired     string  `yaml:"sign_in_required"`
	KnowledgeOffline   string  `yaml:"knowledge_offline"`
	KnowledgeSource    string  `yaml:"knowledge_source"`
	Markers            Markers `yaml:"markers"`
}

func Default() Messages {
	return Messages{
		AgentName: "Nexora Campus Copilot",
		SystemInstructions: "You are Nexora Campus Copilot, a helpful assistant for university students. " +
			"Answer using only the campus information provided. Keep every labeled section that is given, " +
			"in the same order, and do not invent events, routes, menu items, grades or people. " +
			"If a section says information is unavailable, say so plainly.",
		Redirect: "I'm Nexora Campus Copilot, and I can only help with university-related questions. " +
			"Try asking about campus events, departments, bus routes, the cafeteria menu, your exam results or your profile.",
		ModerationBlock: "I'm sorry, but I cannot process messages that may contain inappropriate content. " +
			"As Nexora Campus Copilot, I'm designed to help with university-related questions and maintain a respectful academic environment. " +
			"Please rephrase your question in a way that focuses on campus resources, events, departments, or academic support.",
		AllToolsFailed: "I apologize, but I'm experiencing technical difficulties retrieving campus information. Please try again later.",
		GeneralError:   "I apologize, but I'm experiencing technical difficulties. Please try again later.",
		ToolErrorNote:  "%s information is temporarily unavailable.",
		TimeAnswer:     "It is currently %s.",
		SignInRequired: "Please include your user ID so I can look up your %s.",
		KnowledgeOffline: "I couldn't reach the campus knowledge base just now, so I can't answer that yet. " +
			"Please try again in a moment, or ask about events, departments, bus routes or the cafeteria.",
		// Source attribution line under each knowledge excerpt.
		KnowledgeSource: "(Source: %s, relevance %.2f)",
		Markers: Markers{
			Orchestrator: "Nexora Orchestrator",
			Moderation:   "Content Moderation",
			Redirect:     "Campus Redirect",
			Knowledge:    "Knowledge Base",
			Datetime:     "Date & Time",
		},
	}
}

// Load overlays the YAML file at path onto Default. An empty path
// returns the defaults unchanged.
func Load(path string) (Messages, error) {
	msgs := Default()
	if path == "" {
		return msgs, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return msgs, fmt.Errorf("read prompts file: %w", err)
	}
	var overlay Messages
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return msgs, fmt.Errorf("parse prompts file: %w", err)
	}
	msgs.merge(overlay)
	return msgs, nil
}

func (m *Messages) merge(o Messages) {
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&m.AgentName, o.AgentName)
	pick(&m.SystemInstructions, o.SystemInstructions)
	pick(&m.Redirect, o.Redirect)
	pick(&m.ModerationBlock, o.ModerationBlock)
	pick(&m.AllToolsFailed, o.AllToolsFailed)
	pick(&m.GeneralError, o.GeneralError)
	pick(&m.ToolErrorNote, o.ToolErrorNote)
	pick(&m.TimeAnswer, o.TimeAnswer)
	pick(&m.SignInRequired, o.SignInRequired)
	pick(&m.KnowledgeOffline, o.KnowledgeOffline)
	pick(&m.KnowledgeSource, o.KnowledgeSource)
	pick(&m.Markers.Orchestrator, o.Markers.Orchestrator)
	pick(&m.Markers.Moderation, o.Markers.Moderation)
	pick(&m.Markers.Redirect, o.Markers.Redirect)
	pick(&m.Markers.Knowledge, o.Markers.Knowledge)
	pick(&m.Markers.Datetime, o.Markers.Datetime)
}
