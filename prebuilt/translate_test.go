package prebuilt

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iangithub/langchain-ai-agent/llm"
)

const sampleManual = "Press the power button to start the device."

// translationModel answers per-language so the fan-out's scheduling order
// does not matter.
func translationModel() *llm.MockModel {
	return &llm.MockModel{
		GenerateFunc: func(ctx context.Context, messages []llm.Message, opts llm.CallOptions) (*llm.Response, error) {
			system := messages[0].Content
			switch {
			case system == chineseTranslatorPrompt:
				return &llm.Response{Content: "按下電源鍵以啟動裝置。"}, nil
			case system == japaneseTranslatorPrompt:
				return &llm.Response{Content: "電源ボタンを押してデバイスを起動します。"}, nil
			case system == frenchTranslatorPrompt:
				return &llm.Response{Content: "Appuyez sur le bouton d'alimentation pour démarrer l'appareil."}, nil
			}
			return nil, fmt.Errorf("unexpected system prompt")
		},
	}
}

func TestTranslationWorkflowRun(t *testing.T) {
	model := translationModel()
	w, err := NewTranslationWorkflow(model)
	require.NoError(t, err)

	result, err := w.Run(context.Background(), sampleManual)
	require.NoError(t, err)
	assert.Equal(t, "按下電源鍵以啟動裝置。", result.Chinese)
	assert.Equal(t, "電源ボタンを押してデバイスを起動します。", result.Japanese)
	assert.Equal(t, "Appuyez sur le bouton d'alimentation pour démarrer l'appareil.", result.French)
	assert.Equal(t, 3, model.CallCount())
}

func TestTranslationWorkflowAggregatedReport(t *testing.T) {
	w, err := NewTranslationWorkflow(translationModel())
	require.NoError(t, err)

	result, err := w.Run(context.Background(), sampleManual)
	require.NoError(t, err)

	report := result.Aggregated
	assert.Contains(t, report, "多語言翻譯結果彙整")
	assert.Contains(t, report, sampleManual)
	assert.Contains(t, report, "【繁體中文翻譯】")
	assert.Contains(t, report, result.Chinese)
	assert.Contains(t, report, "【日本語翻訳】")
	assert.Contains(t, report, result.Japanese)
	assert.Contains(t, report, "【Traduction française】")
	assert.Contains(t, report, result.French)
	assert.Contains(t, report, "共產生 3 種語言版本")
	assert.Contains(t, report, strings.Repeat("=", 60))
}

func TestTranslationWorkflowIsDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		w, err := NewTranslationWorkflow(translationModel())
		require.NoError(t, err)

		result, err := w.Run(context.Background(), sampleManual)
		require.NoError(t, err)
		assert.Equal(t, "按下電源鍵以啟動裝置。", result.Chinese)
		assert.Equal(t, "電源ボタンを押してデバイスを起動します。", result.Japanese)
	}
}

func TestTranslationWorkflowTranslatorError(t *testing.T) {
	model := &llm.MockModel{
		GenerateFunc: func(ctx context.Context, messages []llm.Message, opts llm.CallOptions) (*llm.Response, error) {
			if messages[0].Content == japaneseTranslatorPrompt {
				return nil, fmt.Errorf("provider quota exceeded")
			}
			return &llm.Response{Content: "ok"}, nil
		},
	}
	w, err := NewTranslationWorkflow(model)
	require.NoError(t, err)

	result, err := w.Run(context.Background(), sampleManual)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "japanese_translator")
}
