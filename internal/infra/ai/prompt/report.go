package prompt

import (
	"fmt"
	"strings"

	"github.com/mdlabs/atlas-api/internal/domain/classifier"
)

// GetReportSystemPrompt: mode "report" menghasilkan teks opini untuk 감정서.
func GetReportSystemPrompt() string {
	return `당신은 교통사고 손해사정 전문가입니다. 감정서에 포함될 분석 의견을 작성하세요.
전문적이고 객관적인 어조를 사용하며, 법적 근거를 명시하세요.
한국어로 작성하세요.`
}

// GetReportUserPrompt builds the appraisal request from a previously computed
// analysis.
func GetReportUserPrompt(in classifier.ReportInput) string {
	mods := strings.Join(in.Modifiers, ", ")
	if mods == "" {
		mods = "없음"
	}
	return fmt.Sprintf(`다음 분석 결과를 바탕으로 감정서 종합 의견을 작성해주세요:

사고 유형: %s — %s
적용 도표: %s
기본 과실비율: %s %d%% : %s %d%%
수정요소: %s
최종 과실비율: %s %d%% : %s %d%%
사고 상황: %s

아래 항목을 포함하여 작성:
1. 사고 유형 판단 근거
2. 과실비율 산정 논리
3. 수정요소 적용 근거
4. 법적 근거 설명
5. 유의사항`,
		in.Category, in.DiagramTitle,
		in.DiagramID,
		in.LabelA, in.BaseFaultA, in.LabelB, in.BaseFaultB,
		mods,
		in.LabelA, in.FaultA, in.LabelB, in.FaultB,
		in.InputText,
	)
}
