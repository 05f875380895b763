package i18n

import (
	"sort"
	"strings"
	"sync"
)

// Translator retrieves localized messages for rule codes.
// data provides placeholder values (for example "min" or "other"); the
// returned message may still contain ":attribute".
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"required":         "The :attribute field is required.",
		"required_if":      "The :attribute field is required when :other is :value.",
		"required_unless":  "The :attribute field is required unless :other is in :values.",
		"required_with":    "The :attribute field is required when :values is present.",
		"required_without": "The :attribute field is required when :values is not present.",
		"prohibited":       "The :attribute field is prohibited.",
		"prohibited_if":    "The :attribute field is prohibited when :other is :value.",
		"filled":           "The :attribute field must have a value.",
		"present":          "The :attribute field must be present.",
		"accepted":         "The :attribute field must be accepted.",
		"string":           "The :attribute field must be a string.",
		"integer":          "The :attribute field must be an integer.",
		"numeric":          "The :attribute field must be a number.",
		"boolean":          "The :attribute field must be true or false.",
		"array":            "The :attribute field must be an array.",
		"email":            "The :attribute field must be a valid email address.",
		"url":              "The :attribute field must be a valid URL.",
		"regex":            "The :attribute field format is invalid.",
		"in":               "The selected :attribute is invalid.",
		"not_in":           "The selected :attribute is invalid.",
		"same":             "The :attribute field must match :other.",
		"different":        "The :attribute field and :other must be different.",
		"min":              "The :attribute field must be at least :min.",
		"max":              "The :attribute field must not be greater than :max.",
		"between":          "The :attribute field must be between :min and :max.",
		"size":             "The :attribute field must be :size.",
		"invalid":          "The :attribute field is invalid.",
	},
	"ja": {
		"required":         ":attributeは必須です。",
		"required_if":      ":otherが:valueの場合、:attributeは必須です。",
		"required_unless":  ":otherが:valuesでない場合、:attributeは必須です。",
		"required_with":    ":valuesがある場合、:attributeは必須です。",
		"required_without": ":valuesがない場合、:attributeは必須です。",
		"prohibited":       ":attributeは入力できません。",
		"prohibited_if":    ":otherが:valueの場合、:attributeは入力できません。",
		"filled":           ":attributeには値が必要です。",
		"present":          ":attributeが存在しません。",
		"accepted":         ":attributeを承認してください。",
		"string":           ":attributeは文字列でなければなりません。",
		"integer":          ":attributeは整数でなければなりません。",
		"numeric":          ":attributeは数値でなければなりません。",
		"boolean":          ":attributeはtrueかfalseでなければなりません。",
		"array":            ":attributeは配列でなければなりません。",
		"email":            ":attributeは有効なメールアドレスではありません。",
		"url":              ":attributeは有効なURLではありません。",
		"regex":            ":attributeの形式が不正です。",
		"in":               "選択された:attributeは不正です。",
		"not_in":           "選択された:attributeは不正です。",
		"same":             ":attributeと:otherが一致しません。",
		"different":        ":attributeと:otherは異なる値でなければなりません。",
		"min":              ":attributeは:min以上でなければなりません。",
		"max":              ":attributeは:max以下でなければなりません。",
		"between":          ":attributeは:minから:maxの間でなければなりません。",
		"size":             ":attributeは:sizeでなければなりません。",
		"invalid":          ":attributeが不正です。",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict, ok := dictionaries[t.lang]
	if !ok {
		dict = dictionaries["en"]
	}
	msg, ok := dict[code]
	if !ok {
		msg, ok = dictionaries["en"][code]
	}
	if !ok {
		return code
	}
	return Replace(msg, data)
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
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

// Replace substitutes ":key" placeholders. Longer keys are replaced first so
// ":values" is not clobbered by ":value".
func Replace(msg string, data map[string]string) string {
	if len(data) == 0 {
		return msg
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	for _, k := range keys {
		msg = strings.ReplaceAll(msg, ":"+k, data[k])
	}
	return msg
}

// Attribute replaces the ":attribute" placeholder with label.
func Attribute(msg, label string) string { return strings.ReplaceAll(msg, ":attribute", label) }
