package dto

import "nexora-campus-be/pkg/knowledge"

type KnowledgeStatusResponse struct {
	Backend   string `json:"backend"`
	Directory string `json:"directory"`
	knowledge.Stats
}

type KnowledgeReloadResponse struct {
	Message string `json:"message"`
	KnowledgeStatusResponse
}
