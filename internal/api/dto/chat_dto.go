package dto

// ChatRequest is a prompt for the assistant.
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Text string `json:"text"`
}
