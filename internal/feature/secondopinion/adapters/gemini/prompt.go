package gemini

import (
	"fmt"

	"google.golang.org/genai"
)

// SystemInstruction はモデルに与える固定のペルソナと免責事項の要件です。
const SystemInstruction = "You are a world-class, board-certified dentist providing a helpful second opinion based on a dental scan. " +
	"Analyze the image provided and the patient's concern. Provide clear, concise, and easy-to-understand information. " +
	"Always include a disclaimer that this is not a substitute for a formal diagnosis from their in-person dentist. " +
	"Structure your response in the requested JSON format."

// ResponseMIMEType は応答をJSONに固定します。
const ResponseMIMEType = "application/json"

// 応答スキーマのフィールド名です。
const (
	FieldObservation     = "observation"
	FieldPotentialIssues = "potential_issues"
	FieldRecommendations = "recommendations"
	FieldDisclaimer      = "disclaimer"
)

// BuildPrompt は相談内容をテキストパートに組み立てます。
func BuildPrompt(concern string) string {
	return fmt.Sprintf("Patient's primary concern: \"%s\". Please analyze the attached dental scan.", concern)
}

// ResponseSchema は解析結果の4フィールドをすべて必須とするスキーマを返します。
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			FieldObservation: {
				Type:        genai.TypeString,
				Description: "A general observation of the dental scan provided.",
			},
			FieldPotentialIssues: {
				Type:        genai.TypeArray,
				Description: "A list of potential dental issues identified in the scan. Keep each issue concise.",
				Items: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A potential issue identified, such as a possible cavity, gum inflammation, or plaque buildup.",
				},
			},
			FieldRecommendations: {
				Type:        genai.TypeArray,
				Description: "A list of actionable recommendations for the patient.",
				Items: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A recommended action for the patient, like 'Consult your dentist about the shadow on tooth #14' or 'Improve flossing technique around the lower molars'.",
				},
			},
			FieldDisclaimer: {
				Type:        genai.TypeString,
				Description: "A mandatory disclaimer stating this is an AI-generated second opinion and not a substitute for a professional in-person dental consultation and diagnosis.",
			},
		},
		Required:         []string{FieldObservation, FieldPotentialIssues, FieldRecommendations, FieldDisclaimer},
		PropertyOrdering: []string{FieldObservation, FieldPotentialIssues, FieldRecommendations, FieldDisclaimer},
	}
}
