package anki

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Card is one note of the exported deck
type Card struct {
	Source    string // text in the studied language
	Target    string // translation
	Reading   string // phonetic reading, set in the triple layout
	AudioFile string // path to the pair's audio track
	MediaName string // name the audio gets inside the package; defaults to the file's base name
	Notes     string
}

// mediaName returns the name the card's audio is stored under
func (c Card) mediaName() string {
	if c.MediaName != "" {
		return c.MediaName
	}
	return filepath.Base(c.AudioFile)
}

// GeneratorOptions configures the CSV export
type GeneratorOptions struct {
	OutputPath     string
	IncludeHeaders bool
}

// DefaultGeneratorOptions returns the defaults
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{
		OutputPath:     "anki_import.csv",
		IncludeHeaders: true,
	}
}

// Generator collects cards and writes them as CSV or APKG
type Generator struct {
	options *GeneratorOptions
	cards   []Card
}

// NewGenerator creates a new Anki generator
func NewGenerator(options *GeneratorOptions) *Generator {
	if options == nil {
		options = DefaultGeneratorOptions()
	}
	return &Generator{
		options: options,
		cards:   make([]Card, 0),
	}
}

// AddCard adds a card to the collection
func (g *Generator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// Cards returns the collected cards
func (g *Generator) Cards() []Card {
	return g.cards
}

// GenerateCSV writes the cards as an Anki CSV import file
func (g *Generator) GenerateCSV() error {
	if err := os.MkdirAll(filepath.Dir(g.options.OutputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(g.options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if g.options.IncludeHeaders {
		if err := writer.Write([]string{"Source", "Reading", "Target", "Audio", "Notes"}); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, card := range g.cards {
		record := []string{card.Source, card.Reading, card.Target, soundField(card), card.Notes}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// GenerateAPKG writes the cards as a .apkg package
func (g *Generator) GenerateAPKG(outputPath, deckName string) error {
	apkg := NewAPKGGenerator(deckName)
	for _, card := range g.cards {
		apkg.AddCard(card)
	}
	return apkg.GenerateAPKG(outputPath)
}

// Stats returns the number of cards and how many carry audio
func (g *Generator) Stats() (totalCards, withAudio int) {
	totalCards = len(g.cards)
	for _, card := range g.cards {
		if card.AudioFile != "" {
			withAudio++
		}
	}
	return
}

// soundField formats the audio reference the way Anki expects it
func soundField(card Card) string {
	if card.AudioFile == "" {
		return ""
	}
	return fmt.Sprintf("[sound:%s]", card.mediaName())
}
