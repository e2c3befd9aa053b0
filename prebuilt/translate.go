package prebuilt

import (
	"context"
	"fmt"
	"strings"

	"github.com/iangithub/langchain-ai-agent/graph"
	"github.com/iangithub/langchain-ai-agent/llm"
)

const chineseTranslatorPrompt = `你是一位專業的英文到繁體中文翻譯專家。

你的任務是將產品手冊從英文翻譯成繁體中文。

翻譯原則：
1. 保持原文的專業語氣和風格
2. 使用繁體中文，符合台灣用語習慣
3. 技術術語使用業界通用的中文翻譯
4. 確保翻譯流暢自然，易於理解
5. 保留產品名稱的英文原文（可加註中文說明）

請直接輸出翻譯結果，不需要額外說明。`

const japaneseTranslatorPrompt = `あなたはプロの英日翻訳者です。

製品マニュアルを英語から日本語に翻訳することがあなたの任務です。

翻訳の原則：
1. 原文のプロフェッショナルなトーンとスタイルを維持する
2. 自然で読みやすい日本語を使用する
3. 技術用語は業界標準の日本語訳を使用する
4. 敬語を適切に使用し、丁寧な表現を心がける
5. 製品名は英語のまま残す（必要に応じて日本語の説明を追加）

翻訳結果のみを出力してください。追加の説明は不要です。`

const frenchTranslatorPrompt = `Vous êtes un traducteur professionnel de l'anglais vers le français.

Votre mission est de traduire des manuels de produits de l'anglais vers le français.

Principes de traduction :
1. Conserver le ton professionnel et le style du texte original
2. Utiliser un français naturel et fluide
3. Employer la terminologie technique standard du secteur
4. Conserver les noms de produits en anglais (avec explication si nécessaire)

Veuillez produire uniquement la traduction, sans explication supplémentaire.`

// TranslationResult holds each translation and the aggregated report.
type TranslationResult struct {
	Chinese    string
	Japanese   string
	French     string
	Aggregated string
}

// TranslationWorkflow translates a document into three languages at once.
// The three translator nodes fan out from START and run concurrently, each
// writing its own state field; the aggregator joins after all of them and
// composes the combined report.
type TranslationWorkflow struct {
	model    llm.Model
	runnable *graph.Runnable
}

// NewTranslationWorkflow builds the fan-out graph.
func NewTranslationWorkflow(model llm.Model) (*TranslationWorkflow, error) {
	w := &TranslationWorkflow{model: model}

	schema := graph.NewSchema().
		AddField("source_content", "").
		AddField("chinese_translation", "").
		AddField("japanese_translation", "").
		AddField("french_translation", "").
		AddField("aggregated_result", "")

	sg := graph.NewStateGraph(schema)
	sg.AddNode("chinese_translator", "translate into Traditional Chinese",
		w.translator(chineseTranslatorPrompt, "請將以下產品手冊翻譯成繁體中文：", "chinese_translation"))
	sg.AddNode("japanese_translator", "translate into Japanese",
		w.translator(japaneseTranslatorPrompt, "以下の製品マニュアルを日本語に翻訳してください：", "japanese_translation"))
	sg.AddNode("french_translator", "translate into French",
		w.translator(frenchTranslatorPrompt, "Veuillez traduire le manuel de produit suivant en français :", "french_translation"))
	sg.AddNode("aggregator", "compose the combined translation report", aggregate)

	sg.DeclareWrites("chinese_translator", "chinese_translation")
	sg.DeclareWrites("japanese_translator", "japanese_translation")
	sg.DeclareWrites("french_translator", "french_translation")
	sg.DeclareWrites("aggregator", "aggregated_result")

	sg.AddEdge(graph.START, "chinese_translator")
	sg.AddEdge(graph.START, "japanese_translator")
	sg.AddEdge(graph.START, "french_translator")
	sg.AddEdge("chinese_translator", "aggregator")
	sg.AddEdge("japanese_translator", "aggregator")
	sg.AddEdge("french_translator", "aggregator")
	sg.AddEdge("aggregator", graph.END)

	runnable, err := sg.Compile()
	if err != nil {
		return nil, err
	}
	w.runnable = runnable
	return w, nil
}

// Run translates the document and returns all versions.
func (w *TranslationWorkflow) Run(ctx context.Context, source string) (*TranslationResult, error) {
	final, err := w.runnable.Invoke(ctx, graph.State{"source_content": source})
	if err != nil {
		return nil, err
	}
	return &TranslationResult{
		Chinese:    stringField(final, "chinese_translation"),
		Japanese:   stringField(final, "japanese_translation"),
		French:     stringField(final, "french_translation"),
		Aggregated: stringField(final, "aggregated_result"),
	}, nil
}

func (w *TranslationWorkflow) translator(system, instruction, field string) graph.NodeFunc {
	return func(ctx context.Context, state graph.State) (graph.State, error) {
		resp, err := w.model.Generate(ctx, []llm.Message{
			llm.System(system),
			llm.User(fmt.Sprintf("%s\n\n%s", instruction, stringField(state, "source_content"))),
		})
		if err != nil {
			return nil, err
		}
		return graph.State{field: resp.Content}, nil
	}
}

func aggregate(ctx context.Context, state graph.State) (graph.State, error) {
	line := strings.Repeat("=", 60)
	sep := strings.Repeat("─", 60)
	aggregated := fmt.Sprintf(`%s
多語言翻譯結果彙整
%s

【原文 (English)】
%s

%s

【繁體中文翻譯】
%s

%s

【日本語翻訳】
%s

%s

【Traduction française】
%s

%s
翻譯完成！共產生 3 種語言版本。
%s`,
		line, line,
		stringField(state, "source_content"), sep,
		stringField(state, "chinese_translation"), sep,
		stringField(state, "japanese_translation"), sep,
		stringField(state, "french_translation"),
		line, line)

	return graph.State{"aggregated_result": aggregated}, nil
}
