package cli

import (
	"fmt"
	"strings"

	"github.com/tabeebchat/triage/internal/model"
)

// FormatTriageResult renders a triage result for the terminal.
func FormatTriageResult(result model.TriageResult) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("نتيجة الفرز"))
	b.WriteString("\n")

	severityStyle := SuccessStyle
	switch result.SeverityLevel {
	case string(model.SeverityMedium):
		severityStyle = WarningStyle
	case string(model.SeverityHigh):
		severityStyle = ErrorStyle
	}

	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("التخصص:"), result.Specialty)
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("الخطورة:"), severityStyle.Render(result.SeverityLevel))
	if result.Urgent {
		fmt.Fprintf(&b, "%s\n", ErrorStyle.Render("⚠ يُنصح بالتعامل بشكل عاجل"))
	}
	fmt.Fprintf(&b, "%s %.2f%%\n", BoldStyle.Render("الثقة:"), result.Confidence*100)
	fmt.Fprintf(&b, "\n%s\n%s\n", BoldStyle.Render("الإجابة المقترحة:"), BoxStyle.Render(result.Answer))

	if result.AnswerConfidence == 0 {
		b.WriteString(SubtleStyle.Render("لم يُعثر على سؤال مشابه موثوق في قاعدة المعرفة.") + "\n")
	} else {
		fmt.Fprintf(&b, "%s %.2f\n", SubtleStyle.Render("تشابه المصدر:"), result.AnswerConfidence)
	}

	return b.String()
}

// FormatLoadSummary renders the validate command's artifact summary.
func FormatLoadSummary(categories, vocabulary, records int) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Artifact summary"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  categories: %s\n", SuccessStyle.Render(fmt.Sprintf("%d", categories)))
	fmt.Fprintf(&b, "  vocabulary: %s\n", SuccessStyle.Render(fmt.Sprintf("%d", vocabulary)))
	fmt.Fprintf(&b, "  records:    %s\n", SuccessStyle.Render(fmt.Sprintf("%d", records)))
	return b.String()
}
