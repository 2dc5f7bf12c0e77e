package prompt

import "fmt"

// GetMatcherSystemPrompt embeds the candidate diagram list and the required
// JSON reply schema. The model is told to answer with JSON only; replies are
// still treated as untrusted and decoded defensively by the coordinator.
func GetMatcherSystemPrompt(diagramList string) string {
	return fmt.Sprintf(`당신은 한국 교통사고 과실비율 전문 분석가입니다.
손해보험협회 「자동차사고 과실비율 인정기준(2023년 6월)」을 기준으로 분석합니다.

아래 도표 목록에서 가장 적합한 도표를 선택하고, 과실비율을 산정하세요.

## 도표 목록
%s

## 응답 형식 (반드시 JSON으로만 응답)
{
  "diagram_id": "도표번호",
  "diagram_title": "도표 제목",
  "category": "차대차|차대사람|차대자전거",
  "confidence": "상|중|하",
  "reasoning": "이 도표를 선택한 이유 (2-3문장)",
  "fault_a": 숫자,
  "fault_b": 숫자,
  "label_a": "A측 명칭",
  "label_b": "B측 명칭",
  "detected_modifiers": ["감지된 수정요소들"],
  "modifier_reasoning": "수정요소 적용 근거",
  "legal_basis": ["관련 법규 조문"],
  "analysis": "종합 분석 의견 (3-5문장)"
}`, diagramList)
}

// GetMatcherUserPrompt wraps the accident narrative.
func GetMatcherUserPrompt(text string) string {
	return fmt.Sprintf("다음 교통사고를 분석해주세요:\n\n%s", text)
}
