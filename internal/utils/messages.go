package utils

// Static notification text for fixed keys. The original UI shipped Japanese
// strings; both languages are kept as static label text.

var messages = map[string]map[string]string{
	"en": {
		"question.added":   "question added",
		"question.removed": "question removed",
		"survey.saved":     "survey saved",
		"survey.cleared":   "survey design cleared",
		"survey.exported":  "survey exported",
		"survey.imported":  "survey imported",
		"response.saved":   "response submitted, thank you",
		"draft.saved":      "draft saved",
		"responses.clear":  "all responses cleared",
		"storage.failed":   "failed to save data",
	},
	"ja": {
		"question.added":   "質問を追加しました",
		"question.removed": "質問を削除しました",
		"survey.saved":     "アンケートを保存しました",
		"survey.cleared":   "設計をリセットしました",
		"survey.exported":  "エクスポートしました",
		"survey.imported":  "インポートしました",
		"response.saved":   "回答を送信しました。ご協力ありがとうございました",
		"draft.saved":      "下書きを保存しました",
		"responses.clear":  "回答を全削除しました",
		"storage.failed":   "データの保存に失敗しました",
	},
}

// T returns the message for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := messages[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := messages["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
