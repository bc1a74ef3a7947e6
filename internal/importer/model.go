package importer

// Content is the root of a content YAML document: a quiz bank plus the
// word lists nicknames are built from.
type Content struct {
	Quizzes   []QuizEntry   `yaml:"quizzes"`
	Nicknames NicknameParts `yaml:"nicknames"`
}

// QuizEntry is one question in the bank. Answer must be "O" or "X".
type QuizEntry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// NicknameParts holds the adjective and noun word lists.
type NicknameParts struct {
	Adjectives []string `yaml:"adjectives"`
	Nouns      []string `yaml:"nouns"`
}
