// Package i18n holds the user-facing string tables for the supported
// languages. Keys missing for a language fall back to the default language;
// keys missing everywhere resolve to the key itself so a typo surfaces in
// chat instead of crashing the conversation.
package i18n

import (
	"strings"

	"amira/domain/therapy"
)

// Provider resolves localized text. It is stateless; the requested language
// travels with every call.
type Provider struct {
	tables map[therapy.Language]map[string]string
}

// NewProvider builds the provider with the built-in en/ar tables.
func NewProvider() *Provider {
	return &Provider{
		tables: map[therapy.Language]map[string]string{
			therapy.LanguageEnglish: englishTexts,
			therapy.LanguageArabic:  arabicTexts,
		},
	}
}

// Text resolves key for lang, substituting {param} placeholders.
func (p *Provider) Text(lang therapy.Language, key string, params map[string]string) string {
	table, ok := p.tables[lang]
	if !ok {
		table = p.tables[therapy.DefaultLanguage]
	}
	text, ok := table[key]
	if !ok {
		text, ok = p.tables[therapy.DefaultLanguage][key]
		if !ok {
			text = key
		}
	}
	for k, v := range params {
		text = strings.ReplaceAll(text, "{"+k+"}", v)
	}
	return text
}

var englishTexts = map[string]string{
	// Welcome and registration
	"select_language":       "Please select your preferred language / من فضلك اختر لغتك المفضلة",
	"welcome":               "Hello! I'm AMIRA, your AI therapeutic assistant. To get started, please tell me your full name.",
	"welcome_back":          "Welcome back, {name}! What would you like to do today?",
	"ask_nationality":       "Thank you, {name}. Could you please tell me your nationality?",
	"ask_age":               "Thank you. Now, could you please tell me your age?",
	"ask_education":         "Great! Finally, could you share your level of education or what you're currently studying?",
	"ask_condition":         "Thank you for sharing that information. Which of these conditions best describes what you're experiencing?",
	"registration_complete": "Thank you for sharing your information. I'm here to help you with your {condition}. You can talk to me about how you're feeling, and I'll do my best to provide support and guidance. What's been on your mind lately?",

	// Buttons and options
	"view_progress":         "View My Progress",
	"get_report":            "Get Report",
	"continue_conversation": "Continue Conversation",
	"calculate_progress":    "Calculate My Progress",

	// Conditions
	"depression": "Depression",
	"bipolar":    "Bipolar Disorder",
	"ocd":        "OCD",
	"unknown":    "Not sure",

	// Help and session end
	"help_text": "I'm AMIRA, your AI therapeutic assistant. Here's how you can interact with me:\n\n" +
		"/start - Start or resume a conversation\n" +
		"/help - Show this help message\n" +
		"/end - End the current conversation\n\n" +
		"You can talk to me about how you're feeling, and I'll do my best to provide support " +
		"and guidance based on your specific situation.",
	"end_conversation": "Thank you for talking with me today. I hope our conversation was helpful. " +
		"You can start a new conversation anytime by sending /start. Take care!",

	// Progress and reports
	"progress_report_title":    "📊 Your Progress Report",
	"therapeutic_report_title": "📝 Your Therapeutic Report",
	"overall_assessment":       "Overall Assessment:",
	"progress_indicators":      "Progress Indicators:",
	"recommendations":          "Recommendations:",
	"emotional_trends":         "Recent Emotional Trends:",
	"technique_usage":          "Letting Go technique used: {count} times",
	"generating_report":        "Generating your therapeutic report... This may take a moment.",
	"report_error":             "I'm sorry, I couldn't generate a report at this time. Let's continue our conversation instead.",
	"how_feeling_today":        "How are you feeling today, {name}? Tell me what's on your mind.",
	"no_summary_available":     "No summary available for this session.",

	// Letting Go Technique
	"letting_go_intro":  "I'd like to introduce you to the Letting Go technique by David R. Hawkins. This technique helps you release negative emotions by acknowledging and accepting them, rather than suppressing or expressing them.",
	"letting_go_step1":  "Step 1: Identify the emotion you're feeling right now. Can you name it?",
	"letting_go_step2":  "Step 2: Allow yourself to fully feel this emotion without judgment. Where do you feel it in your body?",
	"letting_go_step3":  "Step 3: Ask yourself if you're willing to let go of this feeling, even just a little bit.",
	"letting_go_step4":  "Step 4: Ask yourself when you could let it go. Could you let it go now?",
	"letting_go_prompt": "Would you like to try the Letting Go technique with what you're feeling right now?",
	"letting_go_yes":    "Yes, I'd like to try",
	"letting_go_no":     "Not right now",

	// Error messages
	"error_processing": "I'm having trouble processing that right now. Could you please try expressing that in a different way?",
	"invalid_input":    "Sorry, I didn't understand that. Could you clarify what you mean?",
}

var arabicTexts = map[string]string{
	// Welcome and registration
	"welcome":               "أهلا! أنا أميرة، مساعدتك العلاجية الذكية. للبدء، من فضلك قولي اسمك الكامل.",
	"welcome_back":          "أهلا بعودتك، {name}! ماذا تريد أن تفعل اليوم؟",
	"ask_nationality":       "شكرا، {name}. ممكن تقولي جنسيتك؟",
	"ask_age":               "شكرا. دلوقتي، ممكن تقولي عندك كام سنة؟",
	"ask_education":         "تمام! أخيرا، ممكن تشاركني مستوى تعليمك أو إيه بتدرس حاليا؟",
	"ask_condition":         "شكرا لمشاركة هذه المعلومات. أي من هذه الحالات تصف ما تشعر به؟",
	"registration_complete": "شكرا لمشاركة معلوماتك. أنا هنا لمساعدتك مع {condition}. يمكنك التحدث معي عن شعورك، وسأبذل قصارى جهدي لتقديم الدعم والتوجيه. ما الذي يشغل بالك مؤخرا؟",

	// Buttons and options
	"view_progress":         "عرض تقدمي",
	"get_report":            "الحصول على تقرير",
	"continue_conversation": "متابعة المحادثة",
	"calculate_progress":    "حساب تقدمي",

	// Conditions
	"depression": "الاكتئاب",
	"bipolar":    "الاضطراب ثنائي القطب",
	"ocd":        "الوسواس القهري",
	"unknown":    "مش متأكد",

	// Help and session end
	"help_text": "أنا أميرة، مساعدتك العلاجية الذكية. إليك كيفية التفاعل معي:\n\n" +
		"/start - بدء أو استئناف محادثة\n" +
		"/help - عرض رسالة المساعدة هذه\n" +
		"/end - إنهاء المحادثة الحالية\n\n" +
		"يمكنك التحدث معي عن شعورك، وسأبذل قصارى جهدي لتقديم الدعم " +
		"والتوجيه بناءً على وضعك المحدد.",
	"end_conversation": "شكرا للتحدث معي اليوم. آمل أن تكون محادثتنا مفيدة. " +
		"يمكنك بدء محادثة جديدة في أي وقت بإرسال /start. اعتني بنفسك!",

	// Progress and reports
	"progress_report_title":    "📊 تقرير تقدمك",
	"therapeutic_report_title": "📝 تقريرك العلاجي",
	"overall_assessment":       "التقييم العام:",
	"progress_indicators":      "مؤشرات التقدم:",
	"recommendations":          "التوصيات:",
	"emotional_trends":         "اتجاهات المشاعر الأخيرة:",
	"generating_report":        "جاري إنشاء تقريرك العلاجي... قد يستغرق هذا لحظة.",
	"report_error":             "آسفة، لم أتمكن من إنشاء تقرير في هذا الوقت. دعنا نواصل محادثتنا بدلاً من ذلك.",
	"how_feeling_today":        "كيف تشعر اليوم، {name}؟ أخبرني بما يدور في ذهنك.",
	"no_summary_available":     "لا يوجد ملخص متاح لهذه الجلسة.",

	// Letting Go Technique
	"letting_go_intro":  "أود أن أقدم لك تقنية الترك لديفيد آر هوكينز. تساعدك هذه التقنية على التخلص من المشاعر السلبية من خلال الاعتراف بها وقبولها، بدلاً من قمعها أو التعبير عنها.",
	"letting_go_step1":  "الخطوة 1: حدد المشاعر التي تشعر بها الآن. هل يمكنك تسميتها؟",
	"letting_go_step2":  "الخطوة 2: اسمح لنفسك بالشعور الكامل بهذه العاطفة دون حكم. أين تشعر بها في جسمك؟",
	"letting_go_step3":  "الخطوة 3: اسأل نفسك إذا كنت على استعداد للتخلي عن هذا الشعور، حتى لو قليلاً.",
	"letting_go_step4":  "الخطوة 4: اسأل نفسك متى يمكنك التخلي عنه. هل يمكنك التخلي عنه الآن؟",
	"letting_go_prompt": "هل ترغب في تجربة تقنية الترك مع ما تشعر به الآن؟",
	"letting_go_yes":    "نعم، أود أن أجرب",
	"letting_go_no":     "ليس الآن",

	// Error messages
	"error_processing": "أواجه صعوبة في معالجة ذلك الآن. هل يمكنك محاولة التعبير عن ذلك بطريقة مختلفة؟",
	"invalid_input":    "عذرًا، لم أفهم ذلك. هل يمكنك توضيح ما تعنيه؟",
}
