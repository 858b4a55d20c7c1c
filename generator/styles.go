package generator

import "strings"

// Style is one of the fixed post styles. Key is the canonical Russian name
// used in prompts and logs; ID is the latin identifier the API exposes.
type Style struct {
	Key                string
	ID                 string
	Name               string
	Description        string
	Emoji              string
	SystemPrompt       string
	UserPromptTemplate string
}

// StyleInfo is the API-facing style descriptor.
type StyleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
}

// styles is the full catalog, order fixed. The user prompt templates carry
// a {text} placeholder and the default length phrase that RenderUserPrompt
// rewrites to the requested limit.
var styles = []Style{
	{
		Key:         "ироничный",
		ID:          "ironic",
		Name:        "Ироничный",
		Description: "Легкая ирония и самоирония, умный юмор",
		Emoji:       "😏",
		SystemPrompt: "Ты креативный автор постов для социальных сетей. " +
			"Твой стиль - легкая ирония, самоирония и умный юмор. " +
			"Ты пишешь увлекательно, но не переходишь грань в сарказм. " +
			"Используешь эмодзи умеренно и к месту.",
		UserPromptTemplate: "На основе этого текста напиши короткий ироничный пост " +
			"для социальных сетей (максимум 800 символов). " +
			"Пост должен быть остроумным, интересным и цепляющим внимание.\n\n" +
			"Текст: {text}",
	},
	{
		Key:         "профессиональный",
		ID:          "professional",
		Name:        "Профессиональный",
		Description: "Деловой и информативный стиль",
		Emoji:       "💼",
		SystemPrompt: "Ты профессиональный контент-менеджер. " +
			"Твой стиль - деловой, информативный и структурированный. " +
			"Ты пишешь четко, по существу, подчеркиваешь ключевые моменты. " +
			"Избегаешь лишних эмоций, но остаешься интересным.",
		UserPromptTemplate: "На основе этого текста напиши короткий профессиональный пост " +
			"для социальных сетей (максимум 800 символов). " +
			"Пост должен быть информативным, структурированным и полезным.\n\n" +
			"Текст: {text}",
	},
	{
		Key:         "мотивационный",
		ID:          "motivational",
		Name:        "Мотивационный",
		Description: "Вдохновляющий и побуждающий к действию",
		Emoji:       "🚀",
		SystemPrompt: "Ты вдохновляющий коуч и мотиватор. " +
			"Твой стиль - энергичный, позитивный и побуждающий к действию. " +
			"Ты видишь возможности везде и умеешь заряжать людей энтузиазмом. " +
			"Используешь мощные метафоры и призывы к действию.",
		UserPromptTemplate: "На основе этого текста напиши короткий мотивационный пост " +
			"для социальных сетей (максимум 800 символов). " +
			"Пост должен вдохновлять, мотивировать и побуждать к действию.\n\n" +
			"Текст: {text}",
	},
	{
		Key:         "юмористический",
		ID:          "humorous",
		Name:        "Юмористический",
		Description: "Веселый и развлекательный контент",
		Emoji:       "😄",
		SystemPrompt: "Ты талантливый комедийный автор. " +
			"Твой стиль - легкий юмор, неожиданные повороты и игра слов. " +
			"Ты умеешь рассмешить, не оскорбляя, и развлечь, оставаясь умным. " +
			"Твои шутки всегда уместны и добродушны.",
		UserPromptTemplate: "На основе этого текста напиши короткий юмористический пост " +
			"для социальных сетей (максимум 800 символов). " +
			"Пост должен быть смешным, легким и поднимающим настроение.\n\n" +
			"Текст: {text}",
	},
	{
		Key:         "образовательный",
		ID:          "educational",
		Name:        "Образовательный",
		Description: "Обучающий контент с полезными фактами",
		Emoji:       "📚",
		SystemPrompt: "Ты опытный преподаватель и популяризатор знаний. " +
			"Твой стиль - понятный, структурированный и познавательный. " +
			"Ты умеешь объяснять сложное простыми словами. " +
			"Всегда даешь практическую ценность и конкретные знания.",
		UserPromptTemplate: "На основе этого текста напиши короткий образовательный пост " +
			"для социальных сетей (максимум 800 символов). " +
			"Пост должен учить, объяснять и давать полезную информацию.\n\n" +
			"Текст: {text}",
	},
	{
		Key:         "эмоциональный",
		ID:          "emotional",
		Name:        "Эмоциональный",
		Description: "Трогательный, чувственный и поэтичный стиль",
		Emoji:       "❤️",
		SystemPrompt: "Ты чувствительный автор, умеющий затрагивать душу. " +
			"Твой стиль - эмоциональный, искренний, глубокий и поэтичный. " +
			"Ты пишешь о том, что важно, что трогает сердца и вызывает отклик. " +
			"Используешь образные сравнения, метафоры и эмоциональные триггеры. " +
			"Твои слова вдохновляют и создают эмоциональную связь с читателем.",
		UserPromptTemplate: "На основе этого текста напиши короткий эмоциональный пост " +
			"для социальных сетей (максимум 800 символов). " +
			"Пост должен трогать, вызывать чувства и резонировать с читателем.\n\n" +
			"Текст: {text}",
	},
}

// DefaultStyle returns the style used when the caller names none.
func DefaultStyle() Style {
	return styles[0]
}

// ResolveStyle matches name (case-insensitive, trimmed) against the Russian
// keys, then the latin ids. An unknown name yields the default style and
// false; the caller decides whether to log the fallback.
func ResolveStyle(name string) (Style, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultStyle(), true
	}
	for _, s := range styles {
		if s.Key == name {
			return s, true
		}
	}
	for _, s := range styles {
		if s.ID == name {
			return s, true
		}
	}
	return DefaultStyle(), false
}

// AvailableStyles lists the catalog in its fixed order.
func AvailableStyles() []StyleInfo {
	out := make([]StyleInfo, len(styles))
	for i, s := range styles {
		out[i] = StyleInfo{ID: s.ID, Name: s.Name, Description: s.Description, Emoji: s.Emoji}
	}
	return out
}
