package corpus

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
)

// JSONToken is a parser token as emitted by spaCy-style pipelines. Head
// refers to another token's ID; the root is its own head.
type JSONToken struct {
	ID       int               `json:"id"`
	Head     int               `json:"head"`
	Pos      string            `json:"pos"`
	Tag      string            `json:"tag"`
	Dep      string            `json:"dep"`
	Text     string            `json:"text"`
	Lemma    string            `json:"lemma"`
	Features map[string]string `json:"features,omitempty"`
}

// JSONSentence is one line of a JSONL corpus.
type JSONSentence struct {
	Focus  *int        `json:"focus,omitempty"`
	Label  string      `json:"label,omitempty"`
	Tokens []JSONToken `json:"tokens"`
}

// LoadJSONL loads sentences from a JSONL file, one sentence per line.
// Malformed lines are logged and skipped.
func LoadJSONL(path string) ([]Sentence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var sentences []Sentence
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var js JSONSentence
		if err := json.Unmarshal([]byte(line), &js); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}
		s, err := js.sentence()
		if err != nil {
			log.Printf("Warning: skipping malformed sentence at line %d in %s: %v", i+1, path, err)
			continue
		}
		sentences = append(sentences, s)
	}

	if len(sentences) == 0 {
		return nil, fmt.Errorf("no valid sentences found in %s", path)
	}

	return sentences, nil
}

func (js JSONSentence) sentence() (Sentence, error) {
	s := Sentence{Focus: NoFocus, Label: js.Label}
	if len(js.Tokens) == 0 {
		return s, fmt.Errorf("%w: no tokens", internalerr.ErrInvalidInput)
	}

	position := make(map[int]int, len(js.Tokens))
	for i, tok := range js.Tokens {
		if _, dup := position[tok.ID]; dup {
			return s, fmt.Errorf("%w: duplicate token id %d", internalerr.ErrInvalidInput, tok.ID)
		}
		position[tok.ID] = i
	}

	b := nlp.NewTreeBuilder()
	for i, tok := range js.Tokens {
		features := map[string]any{}
		for k, v := range tok.Features {
			setColumn(features, k, v)
		}
		setColumn(features, nlp.Text, tok.Text)
		setColumn(features, nlp.Lemma, tok.Lemma)
		setColumn(features, nlp.Pos, tok.Pos)
		setColumn(features, nlp.Tag, tok.Tag)
		setColumn(features, nlp.Dep, tok.Dep)
		b.Add(features)

		if tok.Head == tok.ID {
			continue
		}
		head, ok := position[tok.Head]
		if !ok {
			return s, fmt.Errorf("%w: token %d has unknown head %d", internalerr.ErrInvalidInput, tok.ID, tok.Head)
		}
		b.SetHead(i, head)
	}

	tree, err := b.Build()
	if err != nil {
		return s, err
	}
	if js.Focus != nil {
		if *js.Focus < 0 || *js.Focus >= tree.Len() {
			return s, fmt.Errorf("%w: focus %d outside sentence of %d tokens", internalerr.ErrInvalidInput, *js.Focus, tree.Len())
		}
		s.Focus = *js.Focus
	}
	s.Tree = tree
	return s, nil
}

// Load reads a corpus file, choosing JSONL for .jsonl files and CoNLL-U
// otherwise.
func Load(path string) ([]Sentence, error) {
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return LoadJSONL(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSentences(f)
}
