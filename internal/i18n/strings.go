package i18n

// table holds the localized strings for each language.
var table = map[Language]map[string]string{
	TH: {
		"title":              "MathStep Tutor",
		"subtitle":           "เครื่องมือฝึกวิเคราะห์โจทย์ & สอนวิธีทำทีละขั้นตอน",
		"lang_toggle":        "🇬🇧 English",
		"api_title":          "🔑 ตั้งค่า API Key",
		"api_placeholder":    "วาง API Key ของคุณที่นี่...",
		"api_help":           "รับ API Key ฟรีได้ที่ Google AI Studio (aistudio.google.com)",
		"api_save":           "✅  บันทึก API Key",
		"api_warn":           "กรุณากรอก API Key",
		"sidebar_change_key": "🔄 เปลี่ยน API Key",
		"legend_data":        "ข้อมูลจากโจทย์",
		"legend_op":          "เครื่องหมายคำนวณ",
		"legend_result":      "ผลลัพธ์ขั้นตอน",
		"legend_answer":      "คำตอบสุดท้าย",
		"input_title":        "✏️ ป้อนโจทย์คณิตศาสตร์",
		"input_placeholder":  "เช่น: แม่ค้าซื้อส้ม 5 กิโลกรัม กิโลกรัมละ 40 บาท และซื้อแอปเปิ้ล 3 กิโลกรัม กิโลกรัมละ 75 บาท แม่ค้าต้องจ่ายเงินทั้งหมดเท่าไร?",
		"upload_label":       "📷 หรือระบุไฟล์รูปโจทย์",
		"upload_placeholder": "เช่น ~/Pictures/problem.png",
		"submit":             "🚀  วิเคราะห์โจทย์",
		"warn_empty":         "กรุณาพิมพ์โจทย์หรืออัปโหลดรูปภาพ",
		"warn_result_shown":  "กรุณากด \"โจทย์ใหม่\" ก่อนส่งโจทย์ถัดไป",
		"spinner":            "🤔 กำลังวิเคราะห์โจทย์...",
		"err_json":           "ไม่สามารถอ่านคำตอบจาก AI ได้ กรุณาลองใหม่อีกครั้ง",
		"err_generic":        "เกิดข้อผิดพลาด",
		"err_image":          "ไม่สามารถเปิดไฟล์รูปภาพได้",
		"err_no_key":         "ยังไม่ได้ตั้งค่า API Key",
		"problem_label":      "📝 โจทย์",
		"new_problem":        "🔄 โจทย์ใหม่",
		"analysis_title":     "🔍 การวิเคราะห์โจทย์",
		"topic_label":        "📌 หัวข้อ",
		"given_label":        "📥 สิ่งที่โจทย์บอก",
		"find_label":         "❓ สิ่งที่โจทย์ถาม",
		"keywords_label":     "🔑 คีย์เวิร์ดสำคัญ",
		"logic_label":        "🧠 ตรรกะเบื้องหลัง",
		"equation_label":     "📝 สมการ",
		"step_label":         "ขั้นตอน",
		"next_step":          "👉  ดูขั้นตอนที่",
		"all_done":           "แสดงครบทุกขั้นตอนแล้ว!",
		"all_done_sub":       "ลองทำโจทย์ใหม่เพื่อฝึกฝนเพิ่มเติม",
		"start_new":          "✏️  เริ่มโจทย์ใหม่",
		"image_prompt":       "\n\nช่วยอ่านโจทย์จากรูปภาพนี้แล้ววิเคราะห์ให้หน่อย",
		"extra_text":         "\n\nข้อความเพิ่มเติม: ",
		"image_fallback":     "(โจทย์จากรูปภาพ)",
		"image_attached":     "📎 แนบรูปแล้ว",
		"hint_switch_field":  "สลับช่อง",
		"hint_language":      "ภาษา",
		"hint_change_key":    "เปลี่ยนคีย์",
		"hint_quit":          "ออก",
		"hint_scroll":        "เลื่อน",
		"hint_submit":        "วิเคราะห์",
		"hint_next":          "ขั้นต่อไป",
		"hint_new":           "โจทย์ใหม่",
		"hint_save":          "บันทึก",
		"bot_start":          "ส่งโจทย์คณิตศาสตร์มาเป็นข้อความหรือรูปภาพ แล้วกด \"ดูขั้นตอนที่\" เพื่อดูวิธีทำทีละขั้น\nคำสั่ง: /new /lang /health",
		"bot_busy":           "⏳ กำลังวิเคราะห์โจทย์ก่อนหน้าอยู่ กรุณารอสักครู่",
		"bot_lang_switched":  "เปลี่ยนเป็นภาษาไทยแล้ว",
		"bot_reset":          "เริ่มใหม่แล้ว ส่งโจทย์ถัดไปมาได้เลย",
		"bot_unknown":        "ไม่รู้จักคำสั่งนี้",
	},
	EN: {
		"title":              "MathStep Tutor",
		"subtitle":           "Analyze problems & learn step-by-step solutions",
		"lang_toggle":        "🇹🇭 ภาษาไทย",
		"api_title":          "🔑 Set API Key",
		"api_placeholder":    "Paste your API Key here...",
		"api_help":           "Get a free API Key at Google AI Studio (aistudio.google.com)",
		"api_save":           "✅  Save API Key",
		"api_warn":           "Please enter an API Key",
		"sidebar_change_key": "🔄 Change API Key",
		"legend_data":        "Data from problem",
		"legend_op":          "Operators",
		"legend_result":      "Step result",
		"legend_answer":      "Final answer",
		"input_title":        "✏️ Enter a Math Problem",
		"input_placeholder":  "e.g.: A shopkeeper buys 5 kg of oranges at $2 per kg and 3 kg of apples at $3.50 per kg. How much does she pay in total?",
		"upload_label":       "📷 Or give the path of a problem image",
		"upload_placeholder": "e.g. ~/Pictures/problem.png",
		"submit":             "🚀  Analyze Problem",
		"warn_empty":         "Please type a problem or upload an image",
		"warn_result_shown":  "Start a new problem before sending another one",
		"spinner":            "🤔 Analyzing the problem...",
		"err_json":           "Could not parse AI response. Please try again.",
		"err_generic":        "Error",
		"err_image":          "Could not open the image file",
		"err_no_key":         "API key is not configured",
		"problem_label":      "📝 Problem",
		"new_problem":        "🔄 New Problem",
		"analysis_title":     "🔍 Problem Analysis",
		"topic_label":        "📌 Topic",
		"given_label":        "📥 Given",
		"find_label":         "❓ Find",
		"keywords_label":     "🔑 Keywords",
		"logic_label":        "🧠 Logic Behind",
		"equation_label":     "📝 Equation",
		"step_label":         "Step",
		"next_step":          "👉  Show Step",
		"all_done":           "All steps revealed!",
		"all_done_sub":       "Try a new problem to keep practicing",
		"start_new":          "✏️  Start New Problem",
		"image_prompt":       "\n\nPlease read the problem from this image and analyze it.",
		"extra_text":         "\n\nAdditional context: ",
		"image_fallback":     "(Problem from image)",
		"image_attached":     "📎 Image attached",
		"hint_switch_field":  "Switch field",
		"hint_language":      "Language",
		"hint_change_key":    "Change key",
		"hint_quit":          "Quit",
		"hint_scroll":        "Scroll",
		"hint_submit":        "Analyze",
		"hint_next":          "Next step",
		"hint_new":           "New problem",
		"hint_save":          "Save",
		"bot_start":          "Send a math problem as text or a photo, then tap \"Show Step\" to reveal the solution one step at a time.\nCommands: /new /lang /health",
		"bot_busy":           "⏳ Still analyzing your previous problem, please wait.",
		"bot_lang_switched":  "Switched to English.",
		"bot_reset":          "Cleared. Send the next problem whenever you are ready.",
		"bot_unknown":        "Unknown command",
	},
}

// Lookup returns the text for key in lang. Unknown keys and languages
// return the key itself.
func Lookup(lang Language, key string) string {
	if s, ok := table[lang][key]; ok {
		return s
	}
	return key
}

// Keys returns every key defined for lang.
func Keys(lang Language) []string {
	keys := make([]string, 0, len(table[lang]))
	for k := range table[lang] {
		keys = append(keys, k)
	}
	return keys
}
