package ucd

import (
	"strings"
	"sync"
	"unicode"
)

// assignedCategories are the two-letter general categories with code points.
// Cn is everything else.
var assignedCategories = []string{
	"Cc", "Cf", "Co", "Cs",
	"Ll", "Lm", "Lo", "Lt", "Lu",
	"Mc", "Me", "Mn",
	"Nd", "Nl", "No",
	"Pc", "Pd", "Pe", "Pf", "Pi", "Po", "Ps",
	"Sc", "Sk", "Sm", "So",
	"Zl", "Zp", "Zs",
}

// categoryAliases maps long general category names to their short form.
var categoryAliases = map[string]string{
	"Other":                 "C",
	"Control":               "Cc",
	"cntrl":                 "Cc",
	"Format":                "Cf",
	"Unassigned":            "Cn",
	"Private_Use":           "Co",
	"Surrogate":             "Cs",
	"Letter":                "L",
	"Cased_Letter":          "LC",
	"Lowercase_Letter":      "Ll",
	"Modifier_Letter":       "Lm",
	"Other_Letter":          "Lo",
	"Titlecase_Letter":      "Lt",
	"Uppercase_Letter":      "Lu",
	"Mark":                  "M",
	"Combining_Mark":        "M",
	"Spacing_Mark":          "Mc",
	"Enclosing_Mark":        "Me",
	"Nonspacing_Mark":       "Mn",
	"Number":                "N",
	"Decimal_Number":        "Nd",
	"digit":                 "Nd",
	"Letter_Number":         "Nl",
	"Other_Number":          "No",
	"Punctuation":           "P",
	"punct":                 "P",
	"Connector_Punctuation": "Pc",
	"Dash_Punctuation":      "Pd",
	"Close_Punctuation":     "Pe",
	"Final_Punctuation":     "Pf",
	"Initial_Punctuation":   "Pi",
	"Other_Punctuation":     "Po",
	"Open_Punctuation":      "Ps",
	"Symbol":                "S",
	"Currency_Symbol":       "Sc",
	"Modifier_Symbol":       "Sk",
	"Math_Symbol":           "Sm",
	"Other_Symbol":          "So",
	"Separator":             "Z",
	"Line_Separator":        "Zl",
	"Paragraph_Separator":   "Zp",
	"Space_Separator":       "Zs",
}

// scriptAliases maps ISO 15924 codes to the script names used by Go's tables.
var scriptAliases = map[string]string{
	"Adlm": "Adlam", "Arab": "Arabic", "Armn": "Armenian", "Bali": "Balinese",
	"Beng": "Bengali", "Bopo": "Bopomofo", "Brai": "Braille", "Cher": "Cherokee",
	"Copt": "Coptic", "Qaac": "Coptic", "Cyrl": "Cyrillic", "Deva": "Devanagari",
	"Ethi": "Ethiopic", "Geor": "Georgian", "Goth": "Gothic", "Grek": "Greek",
	"Gujr": "Gujarati", "Guru": "Gurmukhi", "Hang": "Hangul", "Hani": "Han",
	"Hebr": "Hebrew", "Hira": "Hiragana", "Kana": "Katakana", "Khmr": "Khmer",
	"Knda": "Kannada", "Laoo": "Lao", "Latn": "Latin", "Mlym": "Malayalam",
	"Mong": "Mongolian", "Mymr": "Myanmar", "Ogam": "Ogham", "Orya": "Oriya",
	"Runr": "Runic", "Sinh": "Sinhala", "Syrc": "Syriac", "Taml": "Tamil",
	"Telu": "Telugu", "Tfng": "Tifinagh", "Thaa": "Thaana", "Thai": "Thai",
	"Tibt": "Tibetan", "Yiii": "Yi", "Zinh": "Inherited", "Qaai": "Inherited",
	"Zyyy": "Common",
}

// binaryAliases maps short binary property names to long ones.
var binaryAliases = map[string]string{
	"AHex":    "ASCII_Hex_Digit",
	"Alpha":   "Alphabetic",
	"Bidi_C":  "Bidi_Control",
	"Dep":     "Deprecated",
	"Dia":     "Diacritic",
	"Ext":     "Extender",
	"Gr_Ext":  "Grapheme_Extend",
	"Hex":     "Hex_Digit",
	"IDC":     "ID_Continue",
	"IDS":     "ID_Start",
	"IDSB":    "IDS_Binary_Operator",
	"IDST":    "IDS_Trinary_Operator",
	"Ideo":    "Ideographic",
	"Join_C":  "Join_Control",
	"LOE":     "Logical_Order_Exception",
	"Lower":   "Lowercase",
	"NChar":   "Noncharacter_Code_Point",
	"Pat_Syn": "Pattern_Syntax",
	"Pat_WS":  "Pattern_White_Space",
	"QMark":   "Quotation_Mark",
	"RI":      "Regional_Indicator",
	"SD":      "Soft_Dotted",
	"STerm":   "Sentence_Terminal",
	"Term":    "Terminal_Punctuation",
	"UIdeo":   "Unified_Ideograph",
	"Upper":   "Uppercase",
	"VS":      "Variation_Selector",
	"space":   "White_Space",
}

// derived are binary properties computed from general categories and the
// contributory Other_* tables.
var derived = map[string]func() []Range{
	"Any":   func() []Range { return []Range{{0, MaxRune}} },
	"ASCII": func() []Range { return []Range{{0, 0x7F}} },
	"Assigned": func() []Range {
		return negate(category("Cn"))
	},
	"Alphabetic": func() []Range {
		return union(category("L"), category("Nl"), fromTable(unicode.Other_Alphabetic))
	},
	"Lowercase": func() []Range {
		return union(category("Ll"), fromTable(unicode.Other_Lowercase))
	},
	"Uppercase": func() []Range {
		return union(category("Lu"), fromTable(unicode.Other_Uppercase))
	},
	"Cased": func() []Range {
		return union(category("LC"), fromTable(unicode.Other_Lowercase), fromTable(unicode.Other_Uppercase))
	},
	"Math": func() []Range {
		return union(category("Sm"), fromTable(unicode.Other_Math))
	},
	"ID_Start": func() []Range {
		return subtract(
			union(category("L"), category("Nl"), fromTable(unicode.Other_ID_Start)),
			union(fromTable(unicode.Pattern_Syntax), fromTable(unicode.Pattern_White_Space)))
	},
	"ID_Continue": func() []Range {
		return subtract(
			union(category("L"), category("Nl"), fromTable(unicode.Other_ID_Start),
				category("Mn"), category("Mc"), category("Nd"), category("Pc"),
				fromTable(unicode.Other_ID_Continue)),
			union(fromTable(unicode.Pattern_Syntax), fromTable(unicode.Pattern_White_Space)))
	},
	"Grapheme_Extend": func() []Range {
		return union(category("Me"), category("Mn"), fromTable(unicode.Other_Grapheme_Extend))
	},
}

// category returns the ranges of a short general category name, or nil.
func category(short string) []Range {
	switch short {
	case "Cn":
		all := make([][]Range, 0, len(assignedCategories))
		for _, c := range assignedCategories {
			all = append(all, fromTable(unicode.Categories[c]))
		}
		return negate(union(all...))
	case "LC":
		return union(category("Lu"), category("Ll"), category("Lt"))
	case "C":
		return union(category("Cc"), category("Cf"), category("Cn"), category("Co"), category("Cs"))
	}
	t, ok := unicode.Categories[short]
	if !ok {
		return nil
	}
	return fromTable(t)
}

func lookupCategory(value string) []Range {
	if short, ok := categoryAliases[value]; ok {
		value = short
	}
	if value == "Cn" || value == "LC" || value == "C" {
		return category(value)
	}
	if _, ok := unicode.Categories[value]; !ok {
		return nil
	}
	return category(value)
}

func lookupScript(value string) []Range {
	if long, ok := scriptAliases[value]; ok {
		value = long
	}
	t, ok := unicode.Scripts[value]
	if !ok {
		return nil
	}
	return fromTable(t)
}

func lookupBinary(name string) []Range {
	if long, ok := binaryAliases[name]; ok {
		name = long
	}
	if f, ok := derived[name]; ok {
		return f()
	}
	if strings.HasPrefix(name, "Other_") {
		return nil
	}
	t, ok := unicode.Properties[name]
	if !ok {
		return nil
	}
	return fromTable(t)
}

var cache sync.Map // string -> []Range

// Lookup resolves the body of a \p{...} escape. With an empty value, name is
// tried as a general category and then as a binary property. Otherwise name
// selects General_Category, Script or Script_Extensions.
//
// The returned slice is shared and must not be modified.
func Lookup(name, value string) ([]Range, bool) {
	key := name + "=" + value
	if v, ok := cache.Load(key); ok {
		return v.([]Range), true
	}
	var rs []Range
	switch {
	case value == "":
		rs = lookupCategory(name)
		if rs == nil {
			rs = lookupBinary(name)
		}
	case name == "General_Category" || name == "gc":
		rs = lookupCategory(value)
	case name == "Script" || name == "sc", name == "Script_Extensions" || name == "scx":
		rs = lookupScript(value)
	}
	if rs == nil {
		return nil, false
	}
	v, _ := cache.LoadOrStore(key, rs)
	return v.([]Range), true
}

// IsIDStart reports whether r may begin a group name.
func IsIDStart(r rune) bool {
	if r == '$' || r == '_' {
		return true
	}
	rs, _ := Lookup("ID_Start", "")
	return Contains(rs, r)
}

// IsIDContinue reports whether r may continue a group name.
func IsIDContinue(r rune) bool {
	if r == '$' || r == 0x200C || r == 0x200D {
		return true
	}
	rs, _ := Lookup("ID_Continue", "")
	return Contains(rs, r)
}
