package report

import "strings"

// Messages is the user-facing text for one locale.
type Messages struct {
	Title          string
	Subtitle       string
	PreviewHeading string
	RulesHeading   string
	RuleCount      string
	HeatHeading    string
	CountLabel     string
	PlanHeading    string
	NoRules        string
	NoSuggestions  string
	Caption        string
	Antecedents    string
	Consequents    string
	Support        string
	Confidence     string
	Lift           string
	MinSupport     string
	MinConfidence  string
	Upload         string
	// Suggest is a format string taking the antecedent and consequent lists.
	Suggest string
}

var catalog = map[string]Messages{
	"en": {
		Title:          "💊 Drug Storage Optimization (interactive prototype)",
		Subtitle:       "Shows how association rules can improve drug placement and picking routes.",
		PreviewHeading: "📋 Prescription preview",
		RulesHeading:   "📈 Association rules",
		RuleCount:      "Number of rules:",
		HeatHeading:    "🔥 Drug usage frequency",
		CountLabel:     "Occurrences",
		PlanHeading:    "🗺️ Storage suggestions (demo)",
		NoRules:        "No association rules met the thresholds; try lowering them.",
		NoSuggestions:  "No storage suggestions available.",
		Caption:        "📌 Demonstration prototype; data and results are simulated.",
		Antecedents:    "antecedents",
		Consequents:    "consequents",
		Support:        "support",
		Confidence:     "confidence",
		Lift:           "lift",
		MinSupport:     "Minimum support",
		MinConfidence:  "Minimum confidence",
		Upload:         "Upload a prescription CSV (column %s, drugs separated by commas)",
		Suggest:        "👉 Place **%s** near **%s**",
	},
	"zh-TW": {
		Title:          "💊 藥品儲位優化系統（模擬互動原型）",
		Subtitle:       "模擬展示關聯規則如何改善藥品儲位配置與取藥動線",
		PreviewHeading: "📋 處方資料預覽",
		RulesHeading:   "📈 關聯規則結果",
		RuleCount:      "關聯規則數量：",
		HeatHeading:    "🔥 藥品使用熱度",
		CountLabel:     "出現次數",
		PlanHeading:    "🗺️ 儲位優化建議（模擬展示）",
		NoRules:        "沒有找到符合條件的關聯規則，請嘗試降低門檻。",
		NoSuggestions:  "無可提供之儲位建議。",
		Caption:        "📌 本系統為展示用原型，資料與分析結果皆為模擬。",
		Antecedents:    "antecedents",
		Consequents:    "consequents",
		Support:        "support",
		Confidence:     "confidence",
		Lift:           "lift",
		MinSupport:     "最小支持度 (support)",
		MinConfidence:  "最小信賴度 (confidence)",
		Upload:         "請上傳處方 CSV 檔（欄位名稱：%s，藥品以逗號分隔）",
		Suggest:        "👉 建議將 **%s** 與 **%s** 擺放在相近儲位",
	},
}

// DefaultLocale is used for unknown or empty locales.
const DefaultLocale = "zh-TW"

// For returns the catalog for locale, matching case-insensitively and
// falling back to the language part ("en-US" → "en").
func For(locale string) Messages {
	l := strings.TrimSpace(locale)
	for k, m := range catalog {
		if strings.EqualFold(k, l) {
			return m
		}
	}
	if i := strings.IndexAny(l, "-_"); i > 0 {
		if m, ok := catalog[strings.ToLower(l[:i])]; ok {
			return m
		}
	}
	return catalog[DefaultLocale]
}

// Locales lists the supported locale names.
func Locales() []string { return []string{"en", "zh-TW"} }
