package prebuilt

import (
	"context"
	"fmt"

	"github.com/iangithub/langchain-ai-agent/graph"
	"github.com/iangithub/langchain-ai-agent/llm"
)

const textReviewPrompt = `你是一位專業的合約文字審查專家。

你的任務是審查合約內容的文字表達，找出以下問題：
1. 文字表達不清晰的地方
2. 可能產生歧義的用語
3. 模糊不清或定義不明確的條款
4. 潛在的灰色地帶

請以條列方式說明發現的問題，並引用具體的條款內容。
最後給出文字清晰度的整體評分（1-10分）。`

const legalReviewPrompt = `你是一位專業的法律風險評估專家。

你的任務是評估合約內容可能帶來的法律風險：
1. 不平等條款（明顯偏向一方的條款）
2. 責任限制是否合理
3. 可能違反消費者保護法或其他法規的條款
4. 免責條款是否過於廣泛
5. 權利義務是否對等

請針對每個風險項目說明問題條款的具體內容、風險等級（高/中/低）和可能的法律後果。`

const revisionPrompt = `你是一位專業的合約修訂顧問。

根據文字審查和法律風險評估的結果，你需要提出具體的修正建議：
1. 針對每個問題條款提出修改建議
2. 提供修改前後的對照
3. 說明修改的理由
4. 按照優先順序排列建議（從最重要到次要）

請確保修改後的條款文字清晰無歧義、權利義務對等、符合相關法規、保護雙方合法權益。`

// ReviewResult collects the output of each review stage.
type ReviewResult struct {
	TextReview          string
	LegalReview         string
	RevisionSuggestions string
}

// ReviewPipeline reviews a contract in three sequential stages: a wording
// review, a legal risk assessment that reads the wording review, and a
// revision step that reads both. Each stage sees everything the previous
// stages wrote.
type ReviewPipeline struct {
	model    llm.Model
	runnable *graph.Runnable
}

// NewReviewPipeline builds the three-stage graph.
func NewReviewPipeline(model llm.Model) (*ReviewPipeline, error) {
	p := &ReviewPipeline{model: model}

	schema := graph.NewSchema().
		AddField("contract_content", "").
		AddField("text_review", "").
		AddField("legal_review", "").
		AddField("revision_suggestions", "")

	sg := graph.NewStateGraph(schema)
	sg.AddNode("text_review", "review contract wording for ambiguity", p.textReview)
	sg.AddNode("legal_review", "assess legal risk of the contract", p.legalReview)
	sg.AddNode("revision_suggestions", "propose concrete revisions", p.revisionSuggestions)
	sg.SetEntryPoint("text_review")
	sg.AddEdge("text_review", "legal_review")
	sg.AddEdge("legal_review", "revision_suggestions")
	sg.AddEdge("revision_suggestions", graph.END)

	runnable, err := sg.Compile()
	if err != nil {
		return nil, err
	}
	p.runnable = runnable
	return p, nil
}

// Run reviews the given contract text and returns all three stage outputs.
func (p *ReviewPipeline) Run(ctx context.Context, contract string) (*ReviewResult, error) {
	final, err := p.runnable.Invoke(ctx, graph.State{"contract_content": contract})
	if err != nil {
		return nil, err
	}
	return &ReviewResult{
		TextReview:          stringField(final, "text_review"),
		LegalReview:         stringField(final, "legal_review"),
		RevisionSuggestions: stringField(final, "revision_suggestions"),
	}, nil
}

func (p *ReviewPipeline) textReview(ctx context.Context, state graph.State) (graph.State, error) {
	out, err := p.generate(ctx, textReviewPrompt,
		fmt.Sprintf("請審查以下合約內容：\n\n%s", stringField(state, "contract_content")))
	if err != nil {
		return nil, err
	}
	return graph.State{"text_review": out}, nil
}

func (p *ReviewPipeline) legalReview(ctx context.Context, state graph.State) (graph.State, error) {
	out, err := p.generate(ctx, legalReviewPrompt, fmt.Sprintf(
		"合約內容：\n\n%s\n\n文字審查結果：\n\n%s\n\n請評估上述合約的法律風險。",
		stringField(state, "contract_content"), stringField(state, "text_review")))
	if err != nil {
		return nil, err
	}
	return graph.State{"legal_review": out}, nil
}

func (p *ReviewPipeline) revisionSuggestions(ctx context.Context, state graph.State) (graph.State, error) {
	out, err := p.generate(ctx, revisionPrompt, fmt.Sprintf(
		"合約內容：\n\n%s\n\n文字審查結果：\n\n%s\n\n法律風險評估：\n\n%s\n\n請提出具體的修正建議。",
		stringField(state, "contract_content"),
		stringField(state, "text_review"),
		stringField(state, "legal_review")))
	if err != nil {
		return nil, err
	}
	return graph.State{"revision_suggestions": out}, nil
}

func (p *ReviewPipeline) generate(ctx context.Context, system, user string) (string, error) {
	resp, err := p.model.Generate(ctx, []llm.Message{llm.System(system), llm.User(user)})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func stringField(state graph.State, key string) string {
	s, _ := state[key].(string)
	return s
}
