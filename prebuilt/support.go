package prebuilt

import (
	"context"
	"strings"

	"github.com/iangithub/langchain-ai-agent/graph"
	"github.com/iangithub/langchain-ai-agent/llm"
)

const triagePrompt = `你是一個企業內部支援系統的分流代理（Triage Agent）。
你的任務是分析員工的問題，判斷應該轉交給哪個部門處理。

分類規則：
1. hr - 人資相關：薪資、福利、假期、請假、考勤、招聘、培訓、績效考核、員工關係等
2. it - IT 相關：系統使用、帳號管理、密碼重設、軟體安裝、硬體問題、網路連線、VPN、電子郵件等
3. compliance - 合規相關：法規遵循、公司政策、內部稽核、風險管理、資料保護、保密協議等

請只回覆一個單詞：hr、it 或 compliance
不要包含任何其他文字或解釋。`

const hrPrompt = `你是企業內部的人資支援專員（HR Agent）。
你專門負責回答員工關於人資相關的問題，包括薪資與獎金、福利制度、
假期管理、考勤制度、招聘流程和培訓發展。

請以專業、友善的態度回答問題。
如果問題超出你的專業範圍，請建議員工聯繫其他部門。`

const itPrompt = `你是企業內部的 IT 支援專員（IT Agent）。
你專門負責回答員工關於 IT 相關的問題，包括系統使用、帳號管理、
密碼重設、軟體安裝、硬體問題、網路連線、VPN 和電子郵件。

請以專業、友善的態度回答問題，並提供逐步的操作指引。
如果問題超出你的專業範圍，請建議員工聯繫其他部門。`

const compliancePrompt = `你是企業內部的合規支援專員（Compliance Agent）。
你專門負責回答員工關於合規相關的問題，包括法規遵循、公司政策、
內部稽核、風險管理、資料保護和保密協議。

請以專業、嚴謹的態度回答問題，必要時引用相關政策。
如果問題超出你的專業範圍，請建議員工聯繫其他部門。`

// SupportResult is the outcome of one support request.
type SupportResult struct {
	Category string
	Answer   string
}

// SupportWorkflow routes an employee question to a specialist agent. A triage
// node classifies the question as hr, it or compliance, a conditional edge
// hands it to the matching agent, and unrecognized classifications fall back
// to the IT agent as the most common destination.
type SupportWorkflow struct {
	model    llm.Model
	runnable *graph.Runnable
}

// NewSupportWorkflow builds the triage graph.
func NewSupportWorkflow(model llm.Model) (*SupportWorkflow, error) {
	w := &SupportWorkflow{model: model}

	schema := graph.NewSchema().
		AddField("user_question", "").
		AddField("question_category", "").
		AddField("agent_response", "")

	sg := graph.NewStateGraph(schema)
	sg.AddNode("triage_agent", "classify the question by department", w.triage)
	sg.AddNode("hr_agent", "answer HR questions", w.specialist(hrPrompt))
	sg.AddNode("it_agent", "answer IT questions", w.specialist(itPrompt))
	sg.AddNode("compliance_agent", "answer compliance questions", w.specialist(compliancePrompt))

	sg.SetEntryPoint("triage_agent")
	sg.AddConditionalEdges("triage_agent", routeToSpecialist, map[string]string{
		"hr":         "hr_agent",
		"it":         "it_agent",
		"compliance": "compliance_agent",
	}, "it_agent")
	sg.AddEdge("hr_agent", graph.END)
	sg.AddEdge("it_agent", graph.END)
	sg.AddEdge("compliance_agent", graph.END)

	runnable, err := sg.Compile()
	if err != nil {
		return nil, err
	}
	w.runnable = runnable
	return w, nil
}

// Run answers one employee question.
func (w *SupportWorkflow) Run(ctx context.Context, question string) (*SupportResult, error) {
	final, err := w.runnable.Invoke(ctx, graph.State{"user_question": question})
	if err != nil {
		return nil, err
	}
	return &SupportResult{
		Category: stringField(final, "question_category"),
		Answer:   stringField(final, "agent_response"),
	}, nil
}

func (w *SupportWorkflow) triage(ctx context.Context, state graph.State) (graph.State, error) {
	resp, err := w.model.Generate(ctx, []llm.Message{
		llm.System(triagePrompt),
		llm.User("請分類以下問題：" + stringField(state, "user_question")),
	})
	if err != nil {
		return nil, err
	}
	category := strings.ToLower(strings.TrimSpace(resp.Content))
	return graph.State{"question_category": category}, nil
}

func (w *SupportWorkflow) specialist(system string) graph.NodeFunc {
	return func(ctx context.Context, state graph.State) (graph.State, error) {
		resp, err := w.model.Generate(ctx, []llm.Message{
			llm.System(system),
			llm.User(stringField(state, "user_question")),
		})
		if err != nil {
			return nil, err
		}
		return graph.State{"agent_response": resp.Content}, nil
	}
}

func routeToSpecialist(ctx context.Context, state graph.State) string {
	return stringField(state, "question_category")
}
