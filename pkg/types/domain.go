package types

// Model represents a GGUF model file discovered on disk.
type Model struct {
	// Stable identifier for the model (the file name).
	// example: mistral-7b-instruct-v0.2.Q4_K_M.gguf
	ID string `json:"id" example:"mistral-7b-instruct-v0.2.Q4_K_M.gguf"`
	// Human-friendly name.
	Name string `json:"name" example:"mistral-7b-instruct-v0.2.Q4_K_M"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/llm/mistral-7b-instruct-v0.2.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/llm/mistral-7b-instruct-v0.2.Q4_K_M.gguf"`
}
