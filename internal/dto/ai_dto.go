package dto

type ImproveTextRequest struct {
	Text string `json:"text"`
}

type ImproveTextResponse struct {
	ImprovedText string `json:"improved_text"`
}

type AssistRequest struct {
	Prompt string `json:"prompt"`
}

type AssistResponse struct {
	Response string `json:"response"`
}
