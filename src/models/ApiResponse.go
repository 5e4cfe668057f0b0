package models

type APIResponse struct {
	Data    interface{} `json:"data"`
	Message interface{} `json:"message"`
}
