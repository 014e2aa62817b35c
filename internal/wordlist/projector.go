package wordlist

// Mode selects how rows are projected into word pairs
type Mode int

const (
	// ModePair reads (source, target) from the first two columns
	ModePair Mode = iota
	// ModeTriple reads (grapheme, phonetic, gloss) and yields two projections
	ModeTriple
)

// Projection names, also used as output directory prefixes
const (
	SourceToTarget = "source_to_target"
	KanaToEnglish  = "kana_to_english"
	KanjiToKana    = "kanji_to_kana"
)

func (m Mode) String() string {
	switch m {
	case ModeTriple:
		return "triple"
	default:
		return "pair"
	}
}

// Fields returns the minimum number of columns a row needs in this mode
func (m Mode) Fields() int {
	if m == ModeTriple {
		return 3
	}
	return 2
}

// WordPair is one source/target translation unit
type WordPair struct {
	Source string
	Target string
}

// Projection is an ordered sequence of pairs derived from one word list
type Projection struct {
	Name  string
	Pairs []WordPair
}

// Entry describes what one row contributes to a video: the pair that is
// spoken and the captions shown, one segment per caption
type Entry struct {
	Pair     WordPair
	Captions []string
}

// Project maps every row into word pairs. Row order is preserved and
// extra columns are ignored. A short row fails the whole list.
func (l *List) Project(mode Mode) ([]Projection, error) {
	want := mode.Fields()
	for _, row := range l.Rows {
		if len(row.Fields) < want {
			return nil, &MalformedRowError{
				Path:   l.Path,
				Row:    row.Index,
				Line:   row.Line,
				Fields: len(row.Fields),
				Want:   want,
			}
		}
	}

	if mode == ModeTriple {
		kanaToEnglish := Projection{Name: KanaToEnglish, Pairs: make([]WordPair, 0, len(l.Rows))}
		kanjiToKana := Projection{Name: KanjiToKana, Pairs: make([]WordPair, 0, len(l.Rows))}
		for _, row := range l.Rows {
			kanaToEnglish.Pairs = append(kanaToEnglish.Pairs, WordPair{Source: row.Fields[1], Target: row.Fields[2]})
			kanjiToKana.Pairs = append(kanjiToKana.Pairs, WordPair{Source: row.Fields[0], Target: row.Fields[1]})
		}
		return []Projection{kanaToEnglish, kanjiToKana}, nil
	}

	pairs := Projection{Name: SourceToTarget, Pairs: make([]WordPair, 0, len(l.Rows))}
	for _, row := range l.Rows {
		pairs.Pairs = append(pairs.Pairs, WordPair{Source: row.Fields[0], Target: row.Fields[1]})
	}
	return []Projection{pairs}, nil
}

// Entries lines up projections into per-row entries.
// In pair mode the source text is the caption. In triple mode the phonetic
// reading and gloss are spoken while the grapheme and then the phonetic
// reading are shown.
func Entries(mode Mode, projections []Projection) []Entry {
	if len(projections) == 0 {
		return nil
	}

	spoken := projections[0].Pairs
	entries := make([]Entry, len(spoken))
	for i, pair := range spoken {
		entries[i] = Entry{Pair: pair, Captions: []string{pair.Source}}
		if mode == ModeTriple && len(projections) > 1 && i < len(projections[1].Pairs) {
			written := projections[1].Pairs[i]
			entries[i].Captions = []string{written.Source, written.Target}
		}
	}
	return entries
}
