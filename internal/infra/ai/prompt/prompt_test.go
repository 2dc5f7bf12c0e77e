package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mdlabs/atlas-api/internal/domain/classifier"
)

func TestMatcherSystemPromptEmbedsDiagramList(t *testing.T) {
	p := GetMatcherSystemPrompt("252: 교차로 직각충돌\n301: 추돌")

	assert.Contains(t, p, "252: 교차로 직각충돌")
	// skema output yang diminta ke model
	assert.Contains(t, p, "diagram_id")
	assert.Contains(t, p, "fault_a")
	assert.Contains(t, p, "fault_b")
}

func TestMatcherUserPrompt(t *testing.T) {
	p := GetMatcherUserPrompt("교차로에서 사고가 났습니다")
	assert.Contains(t, p, "교차로에서 사고가 났습니다")
}

func TestReportUserPromptEmptyModifiers(t *testing.T) {
	in := classifier.ReportInput{
		DiagramID:  "252",
		LabelA:     "A",
		LabelB:     "B",
		FaultA:     70,
		FaultB:     30,
		BaseFaultA: 60,
		BaseFaultB: 40,
		InputText:  "교차로 사고",
	}
	p := GetReportUserPrompt(in)

	// tanpa modifier → placeholder 없음
	assert.Contains(t, p, "없음")
	assert.Contains(t, p, "252")
	assert.Contains(t, p, "70")
}

func TestReportUserPromptWithModifiers(t *testing.T) {
	in := classifier.ReportInput{
		DiagramID: "252",
		Modifiers: []string{"신호위반 +20", "야간 +5"},
	}
	p := GetReportUserPrompt(in)

	assert.Contains(t, p, "신호위반 +20")
	assert.False(t, strings.Contains(p, "없음"))
}
