package i18n

import "sync"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message. "keyword" names
// the schema keyword that failed.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var messages = map[string]map[string]string{
	"en": {
		"invalid_type":     "invalid type",
		"required":         "required property missing",
		"unknown_key":      "property not allowed",
		"invalid_key":      "invalid property name",
		"too_small":        "too small",
		"too_big":          "too big",
		"too_short":        "too short",
		"too_long":         "too long",
		"pattern":          "does not match pattern",
		"invalid_enum":     "not an allowed value",
		"invalid_format":   "invalid format",
		"invalid_encoding": "invalid content encoding",
		"not_multiple":     "not a multiple",
		"not_unique":       "items are not unique",
		"union_ambiguous":  "does not match exactly one schema",
		"union_no_match":   "matches no schema",
		"negation":         "matches a forbidden schema",
		"dependency":       "dependency not satisfied",
		"contains_missing": "no item matches",
		"condition":        "conditional schema not satisfied",
		"schema_false":     "no value is allowed",
		"invalid":          "invalid value",
	},
	"ja": {
		"invalid_type":     "型が不正です",
		"required":         "必須プロパティが不足しています",
		"unknown_key":      "許可されていないプロパティです",
		"invalid_key":      "プロパティ名が不正です",
		"too_small":        "小さすぎます",
		"too_big":          "大きすぎます",
		"too_short":        "短すぎます",
		"too_long":         "長すぎます",
		"pattern":          "パターンに一致しません",
		"invalid_enum":     "許可された値ではありません",
		"invalid_format":   "フォーマットが不正です",
		"invalid_encoding": "エンコーディングが不正です",
		"not_multiple":     "倍数ではありません",
		"not_unique":       "要素が重複しています",
		"union_ambiguous":  "ちょうど一つのスキーマに一致しません",
		"union_no_match":   "どのスキーマにも一致しません",
		"negation":         "禁止されたスキーマに一致します",
		"dependency":       "依存関係を満たしていません",
		"contains_missing": "条件を満たす要素がありません",
		"condition":        "条件付きスキーマを満たしていません",
		"schema_false":     "値は許可されていません",
		"invalid":          "値が不正です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := messages[t.lang][code]
	if !ok {
		msg = code
	}
	if kw := data["keyword"]; kw != "" {
		msg += " (" + kw + ")"
	}
	return msg
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
