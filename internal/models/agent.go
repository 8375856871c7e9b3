package models

import "time"

// Agent is a configured assistant persona managed through the agent CRUD
// endpoints. Agents are an external collaborator of the chat core: the client
// only needs the id/name pair to create agent-bound sessions.
type Agent struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions,omitempty"`
	Tools        []string  `json:"tools,omitempty"`
	IconName     string    `json:"icon_name,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Tool is an available tool definition advertised by the backend.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// FileInfo describes an ingested file or processed link.
type FileInfo struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes,omitempty"`
	TokenCount int       `json:"token_count,omitempty"`
	SourceURL  string    `json:"source_url,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}
