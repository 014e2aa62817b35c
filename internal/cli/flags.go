package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile        string
	Files          []string
	Debug          bool
	OutputDir      string
	SourceLanguage string

	// Outputs
	GenerateCSV   bool
	GenerateVideo bool
	GenerateAudio bool
	GenerateAnki  bool
	AnkiCSV       bool
	DeckName      string

	// Rendering and speech
	Provider string
	Silence  float64
	Font     string
	KeepTemp bool
	Cache    bool

	// Maintenance
	ListVoices  string // language code, or "all"
	ArchiveTemp bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		OutputDir:      ".",
		SourceLanguage: "jp",
		Provider:       "google",
		Silence:        1.5,
		Font:           "wqy-microhei.ttc",
	}
}

// WantsOutput reports whether any artifact was requested
func (f *Flags) WantsOutput() bool {
	return f.GenerateCSV || f.GenerateVideo || f.GenerateAudio || f.GenerateAnki
}

// InputFiles returns the files named by --file followed by positional arguments
func (f *Flags) InputFiles(args []string) []string {
	files := make([]string, 0, len(f.Files)+len(args))
	files = append(files, f.Files...)
	return append(files, args...)
}

// VoiceLanguage returns the language filter for --list-voices, or "" for
// all languages. The flag's value is optional, so "--list-voices ja-JP"
// leaves the code as a positional argument.
func (f *Flags) VoiceLanguage(args []string) string {
	lang := f.ListVoices
	if lang == "all" && len(args) == 1 {
		lang = args[0]
	}
	if lang == "all" {
		return ""
	}
	return lang
}
