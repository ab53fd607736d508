package models

// Command is one line-delimited JSON request from a bridge client.
type Command struct {
	Command string                 `json:"command"`
	Data    map[string]interface{} `json:"data"`
}

// Response is the reply to a Command.
type Response struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
