package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// fieldSeparator joins note fields in the notes table
const fieldSeparator = "\x1f"

// APKGGenerator creates Anki package files (.apkg)
type APKGGenerator struct {
	deckName   string
	deckID     int64
	modelID    int64
	cards      []Card
	mediaFiles map[string]int // media name -> numbered file in the package
}

// NewAPKGGenerator creates a new APKG generator
func NewAPKGGenerator(deckName string) *APKGGenerator {
	now := time.Now().UnixMilli()
	return &APKGGenerator{
		deckName:   deckName,
		deckID:     now,
		modelID:    now + 1,
		cards:      make([]Card, 0),
		mediaFiles: make(map[string]int),
	}
}

// AddCard adds a card to the generator
func (g *APKGGenerator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// GenerateAPKG builds the collection in a scratch directory and zips it
// to outputPath
func (g *APKGGenerator) GenerateAPKG(outputPath string) error {
	if len(g.cards) == 0 {
		return fmt.Errorf("deck %q has no cards", g.deckName)
	}

	tempDir, err := os.MkdirTemp("", "anki_export_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	// Media is numbered first; the notes reference the numbered names.
	if err := g.copyMediaFiles(tempDir); err != nil {
		return fmt.Errorf("failed to copy media files: %w", err)
	}
	if err := g.writeMediaMapping(tempDir); err != nil {
		return fmt.Errorf("failed to create media mapping: %w", err)
	}

	if err := g.createDatabase(filepath.Join(tempDir, "collection.anki2")); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := zipDirectory(tempDir, outputPath); err != nil {
		return fmt.Errorf("failed to create zip package: %w", err)
	}
	return nil
}

func (g *APKGGenerator) createDatabase(dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, query := range schema {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	if err := g.insertCollection(tx); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}
	if err := g.insertNotes(tx); err != nil {
		return fmt.Errorf("failed to insert notes and cards: %w", err)
	}

	return tx.Commit()
}

var schema = []string{
	`CREATE TABLE col (
		id integer PRIMARY KEY, crt integer NOT NULL, mod integer NOT NULL,
		scm integer NOT NULL, ver integer NOT NULL, dty integer NOT NULL,
		usn integer NOT NULL, ls integer NOT NULL, conf text NOT NULL,
		models text NOT NULL, decks text NOT NULL, dconf text NOT NULL,
		tags text NOT NULL
	)`,
	`CREATE TABLE notes (
		id integer PRIMARY KEY, guid text NOT NULL, mid integer NOT NULL,
		mod integer NOT NULL, usn integer NOT NULL, tags text NOT NULL,
		flds text NOT NULL, sfld text NOT NULL, csum integer NOT NULL,
		flags integer NOT NULL, data text NOT NULL
	)`,
	`CREATE TABLE cards (
		id integer PRIMARY KEY, nid integer NOT NULL, did integer NOT NULL,
		ord integer NOT NULL, mod integer NOT NULL, usn integer NOT NULL,
		type integer NOT NULL, queue integer NOT NULL, due integer NOT NULL,
		ivl integer NOT NULL, factor integer NOT NULL, reps integer NOT NULL,
		lapses integer NOT NULL, left integer NOT NULL, odue integer NOT NULL,
		odid integer NOT NULL, flags integer NOT NULL, data text NOT NULL
	)`,
	`CREATE TABLE revlog (
		id integer PRIMARY KEY, cid integer NOT NULL, usn integer NOT NULL,
		ease integer NOT NULL, ivl integer NOT NULL, lastIvl integer NOT NULL,
		factor integer NOT NULL, time integer NOT NULL, type integer NOT NULL
	)`,
	`CREATE TABLE graves (usn integer NOT NULL, oid integer NOT NULL, type integer NOT NULL)`,
	`CREATE INDEX ix_notes_csum ON notes (csum)`,
	`CREATE INDEX ix_notes_usn ON notes (usn)`,
	`CREATE INDEX ix_cards_usn ON cards (usn)`,
	`CREATE INDEX ix_cards_nid ON cards (nid)`,
	`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	`CREATE INDEX ix_revlog_usn ON revlog (usn)`,
	`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
}

func deckEntry(id int64, name, desc string, mod int64) map[string]interface{} {
	return map[string]interface{}{
		"id":               id,
		"name":             name,
		"mod":              mod,
		"desc":             desc,
		"collapsed":        false,
		"dyn":              0,
		"conf":             1,
		"usn":              0,
		"newToday":         []int{0, 0},
		"revToday":         []int{0, 0},
		"lrnToday":         []int{0, 0},
		"timeToday":        []int{0, 0},
		"browserCollapsed": false,
		"extendNew":        10,
		"extendRev":        50,
	}
}

func (g *APKGGenerator) insertCollection(tx *sql.Tx) error {
	now := time.Now().Unix()

	decks, err := json.Marshal(map[string]interface{}{
		"1": deckEntry(1, "Default", "", now),
		strconv.FormatInt(g.deckID, 10): deckEntry(g.deckID, g.deckName, "Listening cards generated by babelfish", now),
	})
	if err != nil {
		return err
	}

	models, err := json.Marshal(map[string]interface{}{
		strconv.FormatInt(g.modelID, 10): g.noteType(now),
	})
	if err != nil {
		return err
	}

	conf, err := json.Marshal(map[string]interface{}{
		"nextPos":       1,
		"estTimes":      true,
		"activeDecks":   []int64{1},
		"sortType":      "noteFld",
		"sortBackwards": false,
		"addToCur":      true,
		"curDeck":       1,
		"newSpread":     0,
		"dueCounts":     true,
		"collapseTime":  1200,
		"timeLim":       0,
		"schedVer":      1,
		"curModel":      strconv.FormatInt(g.modelID, 10),
		"dayLearnFirst": false,
	})
	if err != nil {
		return err
	}

	dconf, err := json.Marshal(map[string]interface{}{
		"1": map[string]interface{}{
			"id":   1,
			"name": "Default",
			"dyn":  0,
			"new": map[string]interface{}{
				"delays": []int{1, 10}, "ints": []int{1, 4, 7}, "initialFactor": 2500,
				"perDay": 20, "order": 1, "bury": true, "separate": true,
			},
			"lapse": map[string]interface{}{
				"delays": []int{10}, "mult": 0, "minInt": 1, "leechFails": 8, "leechAction": 0,
			},
			"rev": map[string]interface{}{
				"perDay": 100, "ease4": 1.3, "fuzz": 0.05, "maxIvl": 36500,
				"ivlFct": 1, "bury": true, "minSpace": 1,
			},
			"timer":    0,
			"maxTaken": 60,
			"usn":      0,
			"mod":      now,
			"autoplay": true,
			"replayq":  true,
		},
	})
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO col VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1, now, now*1000, now*1000, 11, 0, 0, 0,
		string(conf), string(models), string(decks), string(dconf), "{}")
	return err
}

// noteFields are the note type's fields, in storage order
var noteFields = []string{"Source", "Reading", "Target", "Audio", "Notes"}

func (g *APKGGenerator) noteType(mod int64) map[string]interface{} {
	flds := make([]map[string]interface{}, len(noteFields))
	for i, name := range noteFields {
		size := 20
		if name == "Notes" {
			size = 16
		}
		flds[i] = map[string]interface{}{
			"name": name, "ord": i, "sticky": false, "rtl": false,
			"font": "Arial", "size": size, "media": []string{},
		}
	}

	return map[string]interface{}{
		"id":        g.modelID,
		"name":      "babelfish Listening (Basic + Reverse)",
		"type":      0,
		"mod":       mod,
		"usn":       -1,
		"sortf":     0,
		"did":       g.deckID,
		"req":       [][]interface{}{{0, "all", []int{0}}, {1, "all", []int{2}}},
		"vers":      []int{},
		"tags":      []string{},
		"latexPre":  "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}",
		"latexPost": "\\end{document}",
		"flds":      flds,
		"tmpls": []map[string]interface{}{
			{"name": "Listen", "ord": 0, "qfmt": frontTemplate, "afmt": backTemplate, "did": nil, "bqfmt": "", "bafmt": ""},
			{"name": "Recall", "ord": 1, "qfmt": reverseFrontTemplate, "afmt": reverseBackTemplate, "did": nil, "bqfmt": "", "bafmt": ""},
		},
		"css": cardCSS,
	}
}

const frontTemplate = `<div class="front">
<div class="source">{{Source}}</div>
{{#Audio}}<div class="audio">{{Audio}}</div>{{/Audio}}
</div>`

const backTemplate = `{{FrontSide}}

<hr id="answer">

<div class="back">
{{#Reading}}<div class="reading">{{Reading}}</div>{{/Reading}}
<div class="target">{{Target}}</div>
{{#Notes}}<div class="notes">{{Notes}}</div>{{/Notes}}
</div>`

const reverseFrontTemplate = `<div class="front">
<div class="target">{{Target}}</div>
</div>`

const reverseBackTemplate = `{{FrontSide}}

<hr id="answer">

<div class="back">
<div class="source">{{Source}}</div>
{{#Reading}}<div class="reading">{{Reading}}</div>{{/Reading}}
{{#Audio}}<div class="audio">{{Audio}}</div>{{/Audio}}
</div>`

const cardCSS = `.card {
  font-family: Arial, sans-serif;
  font-size: 20px;
  text-align: center;
  color: #333;
  background-color: white;
}

.front, .back { padding: 20px; }
.source { font-size: 36px; font-weight: bold; margin: 20px 0; }
.reading { font-size: 24px; color: #555; margin: 10px 0; }
.target { font-size: 28px; color: #2c3e50; margin: 20px 0; }
.audio { margin: 15px 0; }
.notes { font-size: 16px; color: #7f8c8d; font-style: italic; }
hr#answer { margin: 30px 0; border: 0; border-top: 1px solid #ecf0f1; }`

func (g *APKGGenerator) insertNotes(tx *sql.Tx) error {
	now := time.Now()
	base := now.UnixMilli()

	for i, card := range g.cards {
		// IDs leave room for two cards per note
		noteID := base + int64(i*3)

		audioField := ""
		if _, ok := g.mediaFiles[card.mediaName()]; ok && card.AudioFile != "" {
			audioField = soundField(card)
		}

		fields := strings.Join([]string{card.Source, card.Reading, card.Target, audioField, card.Notes}, fieldSeparator)
		guid := fmt.Sprintf("bf_%d_%d", base, i)

		_, err := tx.Exec(`INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			noteID, guid, g.modelID, now.Unix(), -1, "", fields, card.Source, 0, 0, "")
		if err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}

		for ord := 0; ord < 2; ord++ {
			// id, nid, did, ord, mod, usn, type, queue, due, then zeroed scheduling state
			_, err = tx.Exec(`INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				noteID+int64(ord)+1, noteID, g.deckID, ord, now.Unix(), -1, 0, 0, noteID+int64(ord),
				0, 0, 0, 0, 0, 0, 0, 0, "")
			if err != nil {
				return fmt.Errorf("failed to insert card: %w", err)
			}
		}
	}
	return nil
}

// copyMediaFiles copies each card's audio into dir under a number
func (g *APKGGenerator) copyMediaFiles(dir string) error {
	for _, card := range g.cards {
		if card.AudioFile == "" {
			continue
		}
		name := card.mediaName()
		if _, exists := g.mediaFiles[name]; exists {
			continue
		}

		number := len(g.mediaFiles)
		if err := copyFile(card.AudioFile, filepath.Join(dir, strconv.Itoa(number))); err != nil {
			return fmt.Errorf("failed to copy audio file %s: %w", card.AudioFile, err)
		}
		g.mediaFiles[name] = number
	}
	return nil
}

// writeMediaMapping writes the number -> name map Anki reads on import
func (g *APKGGenerator) writeMediaMapping(dir string) error {
	mapping := make(map[string]string, len(g.mediaFiles))
	for name, number := range g.mediaFiles {
		mapping[strconv.Itoa(number)] = name
	}

	data, err := json.Marshal(mapping)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "media"), data, 0644)
}

func zipDirectory(dir, outputPath string) error {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	archive := zip.NewWriter(zipFile)

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := archive.Create(rel)
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(w, file)
		return err
	})
	if err != nil {
		archive.Close()
		return err
	}
	return archive.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
