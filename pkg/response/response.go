package response

// JSONResponse is the generic envelope used by middleware and ancillary
// endpoints (the suggestion endpoints return their own richer envelope).
type JSONResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func Success(message string, data any) JSONResponse {
	return JSONResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func Error(code, message string, data any) JSONResponse {
	return JSONResponse{
		Success: false,
		Code:    code,
		Message: message,
		Data:    data,
	}
}
