package engine

import (
	"fmt"

	"github.com/tabeebchat/triage/internal/model"
)

// buildExplanation creates the short Arabic explanation line the chat layer
// shows alongside the suggested answer.
func buildExplanation(result model.TriageResult) string {
	advice := "ويمكن المتابعة مع طبيب مختص"
	if result.Urgent {
		advice = "ويُنصح بالتعامل بشكل عاجل"
	}

	return fmt.Sprintf(
		"التصنيف الآلي يقترح التخصص: %s بثقة تقريبية %.2f%%. تم تقدير مستوى الخطورة: %s %s.",
		result.Specialty,
		result.Confidence*100,
		result.SeverityLevel,
		advice,
	)
}
