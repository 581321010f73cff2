package llm

import "fmt"

// evaluationPromptTemplate asks for a structured JSON evaluation of a
// batch of items. The %s slot is the summary language hint.
const evaluationPromptTemplate = `당신은 기술 뉴스 큐레이터입니다. 아래에 여러 개의 뉴스 항목이 ` + "```" + ` 블록으로 주어집니다.
각 항목을 평가하여 JSON 배열로만 응답하세요. 다른 텍스트는 포함하지 마세요.

각 항목마다 다음 필드를 채우세요:
- "title": 기사 제목을 %s로 간결하게 다시 작성
- "link": 입력에 주어진 link 값을 그대로 복사 (수정 금지)
- "tags": 관련 태그 배열 (2~4개)
- "topic": 주제 분류 한 단어 (예: Model, Agent, Infra, Research, Product, Community)
- "impact": 업계 파급력 0~5 숫자
- "novelty": 새로움의 정도 0~5 숫자
- "proof": 근거와 구체성 0~5 숫자
- "summary": 핵심 내용을 %s로 3~5문장 요약
- "why_it_matters": 이 소식이 중요한 이유 한 문장
- "key_evidence": 구체적 근거 한 문장
- "who_should_care": 누구에게 유용한지 한 문장
- "next_action": 독자가 취할 수 있는 다음 행동 한 문장
- "comparison": 기존 기술이나 경쟁 대비 차별점 한 문장

응답 형식: [{"title": ..., "link": ..., ...}, ...]`

// EvaluationPrompt returns the batch evaluation prompt in the
// configured summary language.
func EvaluationPrompt(language string) string {
	if language == "" {
		language = "Korean"
	}
	return fmt.Sprintf(evaluationPromptTemplate, language, language)
}
